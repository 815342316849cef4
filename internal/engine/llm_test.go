package engine

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	raw := `{
		"Electrical_Terms": ["conduit", "EMT"],
		"Problems_Challenges": ["bending radius too tight"],
		"Tools_Equipment": ["bender (manual)"],
		"Educational_Content": ["use a level"]
	}`
	got, err := ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.ElectricalTerms) != 2 || got.ElectricalTerms[0] != "conduit" {
		t.Errorf("ElectricalTerms = %v", got.ElectricalTerms)
	}
	if JoinItems(got.ElectricalTerms) != "conduit, EMT" {
		t.Errorf("JoinItems = %q", JoinItems(got.ElectricalTerms))
	}
}

func TestParseAnalysisFenced(t *testing.T) {
	raw := "```json\n{\"Electrical_Terms\":[\"breaker\"],\"Problems_Challenges\":[],\"Tools_Equipment\":[],\"Educational_Content\":[]}\n```"
	got, err := ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.ElectricalTerms) != 1 || got.ElectricalTerms[0] != "breaker" {
		t.Errorf("ElectricalTerms = %v", got.ElectricalTerms)
	}
}

func TestParseAnalysisInvalid(t *testing.T) {
	for _, raw := range []string{"", "not json", `["a","b"]`} {
		if _, err := ParseAnalysis(raw); err == nil {
			t.Errorf("ParseAnalysis(%q) expected error", raw)
		}
	}
}

func TestJoinItemsEmpty(t *testing.T) {
	if got := JoinItems(nil); got != "" {
		t.Errorf("JoinItems(nil) = %q, want empty", got)
	}
}
