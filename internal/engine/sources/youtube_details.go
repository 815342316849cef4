package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

// Per-video detail lookup via /videos?part=snippet,statistics,contentDetails.

type ytVideosResp struct {
	Items []ytVideoItem `json:"items"`
}

type ytVideoItem struct {
	Snippet struct {
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
		CategoryID  string   `json:"categoryId"`
	} `json:"snippet"`
	Statistics struct {
		// The Data API renders all counters as JSON strings.
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

// VideoDetails fetches statistics, snippet metadata, and the formatted
// duration for one video. Requires a Data API key.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (*engine.VideoDetails, error) {
	engine.IncrDetailRequests()
	if c.cfg.YouTubeAPIKey == "" {
		return nil, errors.New("video details require a YouTube Data API key")
	}

	keys := []string{c.cfg.YouTubeAPIKey}
	if c.cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, c.cfg.YouTubeAPIKeyFallback)
	}
	var lastErr error
	for _, key := range keys {
		details, err := c.doVideoDetails(ctx, videoID, key)
		if err == nil {
			return details, nil
		}
		lastErr = err
		slog.Debug("youtube details key failed, trying fallback",
			slog.String("id", videoID), slog.Any("err", err))
	}
	return nil, lastErr
}

func (c *Client) doVideoDetails(ctx context.Context, videoID, apiKey string) (*engine.VideoDetails, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", videoID)
	params.Set("key", apiKey)

	apiURL := ytDataAPIBase + "/videos?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultBackoff, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return c.cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube videos API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube videos API %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read youtube videos response: %w", err)
	}
	return parseVideoDetails(data)
}

// parseVideoDetails extracts a VideoDetails from a raw /videos JSON response.
// Absent or unparseable counters default to 0.
func parseVideoDetails(data []byte) (*engine.VideoDetails, error) {
	var result ytVideosResp
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode youtube videos API: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, errors.New("video not found")
	}
	item := result.Items[0]

	duration := ""
	if item.ContentDetails.Duration != "" {
		d, err := engine.ParseISODuration(item.ContentDetails.Duration)
		if err != nil {
			slog.Warn("youtube: unparseable duration",
				slog.String("raw", item.ContentDetails.Duration), slog.Any("err", err))
		} else {
			duration = engine.FormatTimedelta(d)
		}
	}

	return &engine.VideoDetails{
		CommentCount: atoiDefault(item.Statistics.CommentCount),
		LikeCount:    atoiDefault(item.Statistics.LikeCount),
		ViewCount:    atoiDefault(item.Statistics.ViewCount),
		Duration:     duration,
		Description:  item.Snippet.Description,
		Tags:         strings.Join(item.Snippet.Tags, ", "),
		CategoryID:   item.Snippet.CategoryID,
	}, nil
}

func atoiDefault(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
