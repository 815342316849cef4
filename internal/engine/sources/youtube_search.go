package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

// YouTube search — Data API v3 with paging, falling back to ytInitialData
// scraping when no API key is configured.

const (
	ytDataAPIBase       = "https://www.googleapis.com/youtube/v3"
	ytDataPageSize      = 50 // API maximum per request
	ytInitialDataMarker = "var ytInitialData = "
	ytSearchFilter      = "EgIQAQ%3D%3D" // videos-only filter param
)

// --- YouTube Data API v3 types ---

type ytDataSearchResp struct {
	NextPageToken string       `json:"nextPageToken"`
	Items         []ytDataItem `json:"items"`
}

type ytDataItem struct {
	ID      ytDataItemID      `json:"id"`
	Snippet ytDataItemSnippet `json:"snippet"`
}

type ytDataItemID struct {
	VideoID string `json:"videoId"`
}

type ytDataItemSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
}

// --- ytInitialData scraping types ---

type ytSearchResult struct {
	VideoRenderer *struct {
		VideoID string `json:"videoId"`
		Title   struct {
			Runs []struct{ Text string } `json:"runs"`
		} `json:"title"`
	} `json:"videoRenderer"`
}

// Search returns one page of video results for a keyword plus the token for
// the next page. Uses the Data API when a key is configured; otherwise scrapes
// ytInitialData (single page, empty next token).
func (c *Client) Search(ctx context.Context, query, pageToken string, limit int) ([]engine.SearchItem, string, error) {
	engine.IncrSearchRequests()
	if limit <= 0 || limit > ytDataPageSize {
		limit = ytDataPageSize
	}
	if c.cfg.YouTubeAPIKey != "" {
		return c.searchDataAPI(ctx, query, pageToken, limit)
	}
	items, err := c.searchInitialData(ctx, query, limit)
	return items, "", err
}

// searchDataAPI searches via YouTube Data API v3.
// Automatically falls back to the secondary key on quota errors (403).
func (c *Client) searchDataAPI(ctx context.Context, query, pageToken string, limit int) ([]engine.SearchItem, string, error) {
	keys := []string{c.cfg.YouTubeAPIKey}
	if c.cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, c.cfg.YouTubeAPIKeyFallback)
	}
	var lastErr error
	for _, key := range keys {
		items, next, err := c.doDataSearch(ctx, query, pageToken, limit, key)
		if err == nil {
			return items, next, nil
		}
		lastErr = err
		slog.Debug("youtube data API key failed, trying fallback", slog.Any("err", err))
	}
	return nil, "", lastErr
}

func (c *Client) doDataSearch(ctx context.Context, query, pageToken string, limit int, apiKey string) ([]engine.SearchItem, string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	params.Set("key", apiKey)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	apiURL := ytDataAPIBase + "/search?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultBackoff, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return c.cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, "", fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("youtube data API %d: %s", resp.StatusCode, string(body))
	}

	var result ytDataSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("decode youtube data API: %w", err)
	}

	items := make([]engine.SearchItem, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		items = append(items, engine.SearchItem{
			ID:    item.ID.VideoID,
			Title: item.Snippet.Title,
			URL:   WatchURL(item.ID.VideoID),
		})
	}
	return items, result.NextPageToken, nil
}

// searchInitialData scrapes YouTube search results by parsing ytInitialData.
func (c *Client) searchInitialData(ctx context.Context, query string, limit int) ([]engine.SearchItem, error) {
	searchURL := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytSearchFilter

	resp, err := engine.RetryHTTP(ctx, engine.DefaultBackoff, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return c.cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube search page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read youtube search response: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, fmt.Errorf("ytInitialData not found in YouTube search response")
	}
	jsonData := extractJSON(body[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil, fmt.Errorf("failed to extract ytInitialData JSON")
	}
	return extractItemsFromInitialData(jsonData, limit), nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// extractItemsFromInitialData recursively walks ytInitialData JSON for videoRenderer entries.
func extractItemsFromInitialData(data []byte, limit int) []engine.SearchItem {
	var results []engine.SearchItem
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytSearchResult
				if err := json.Unmarshal(raw, &vr.VideoRenderer); err == nil &&
					vr.VideoRenderer != nil && vr.VideoRenderer.VideoID != "" {
					title := ""
					if len(vr.VideoRenderer.Title.Runs) > 0 {
						title = vr.VideoRenderer.Title.Runs[0].Text
					}
					results = append(results, engine.SearchItem{
						ID:    vr.VideoRenderer.VideoID,
						Title: title,
						URL:   WatchURL(vr.VideoRenderer.VideoID),
					})
					return
				}
			}
			for _, child := range obj {
				if len(results) >= limit {
					return
				}
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				if len(results) >= limit {
					return
				}
				walk(item)
			}
		}
	}
	walk(data)
	return results
}
