package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt with the given system message and returns the
// fence-stripped response text.
func CallLLM(ctx context.Context, cfg *Config, system, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := cfg.LLMClient.Complete(ctx, system, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// AnalyzeTranscript sends one transcript through the structured-extraction
// prompt and parses the four-category response.
func AnalyzeTranscript(ctx context.Context, cfg *Config, transcript string) (*Analysis, error) {
	prompt := fmt.Sprintf(analysisPrompt, transcript)
	raw, err := CallLLM(ctx, cfg, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return ParseAnalysis(raw)
}

// ParseAnalysis parses the LLM response into an Analysis. The response must
// be a JSON object with the four list fields; anything else is an error the
// caller turns into a sentinel row.
func ParseAnalysis(raw string) (*Analysis, error) {
	raw = stripFences(raw)
	var out Analysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	return &out, nil
}

// JoinItems renders one analysis category as a CSV cell value.
func JoinItems(items []string) string {
	return strings.Join(items, ", ")
}
