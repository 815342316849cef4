package engine

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second, false},
		{"PT15M33S", 15*time.Minute + 33*time.Second, false},
		{"PT45S", 45 * time.Second, false},
		{"PT2H", 2 * time.Hour, false},
		{"P1DT2H3M4S", 26*time.Hour + 3*time.Minute + 4*time.Second, false},
		{"P0D", 0, false},
		{"PT0S", 0, false},
		{"", 0, true},
		{"1H2M", 0, true},
		{"PT1X", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISODuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseISODuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseISODuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatTimedelta(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{15*time.Minute + 33*time.Second, "0:15:33"},
		{45 * time.Second, "0:00:45"},
		{26 * time.Hour, "1 day, 2:00:00"},
		{48*time.Hour + 5*time.Second, "2 days, 0:00:05"},
		{0, "0:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTimedelta(tt.in); got != tt.want {
			t.Errorf("FormatTimedelta(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDurationRoundTrip(t *testing.T) {
	// The formatted value is what gets persisted; parsing then formatting
	// the API string must always produce the same cell content.
	d, err := ParseISODuration("PT1H5M9S")
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatTimedelta(d); got != "1:05:09" {
		t.Errorf("got %q, want %q", got, "1:05:09")
	}
}
