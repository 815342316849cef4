package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ISO-8601 duration subset as emitted by the YouTube Data API:
// P[nD]T[nH][nM][nS]. Weeks/months/years never appear in contentDetails.
var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration parses a YouTube contentDetails duration string.
// Absent units are zero; "P0D" and "PT0S" are valid zero durations.
func ParseISODuration(s string) (time.Duration, error) {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		d += time.Duration(n) * unit
	}
	return d, nil
}

// FormatTimedelta renders a duration as "H:MM:SS", with a "N day[s], " prefix
// past 24 hours. The video table stores durations in this exact form, so the
// format must stay byte-stable across runs.
func FormatTimedelta(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	days := total / 86400
	rem := total % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, (rem%3600)/60, rem%60)
	switch {
	case days == 1:
		return "1 day, " + clock
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, clock)
	default:
		return clock
	}
}
