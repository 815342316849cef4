package engine

// SearchItem is one video hit returned by a search call, before detail lookup.
type SearchItem struct {
	ID    string
	Title string
	URL   string
}

// VideoDetails holds the per-video metadata from a detail lookup.
// Counters default to 0 when the API omits them.
type VideoDetails struct {
	CommentCount int
	LikeCount    int
	ViewCount    int
	Duration     string // pre-formatted, see FormatTimedelta
	Description  string
	Tags         string // comma-joined tag list
	CategoryID   string
}

// Analysis is the structured extraction expected from the LLM for one transcript.
type Analysis struct {
	ElectricalTerms    []string `json:"Electrical_Terms"`
	ProblemsChallenges []string `json:"Problems_Challenges"`
	ToolsEquipment     []string `json:"Tools_Equipment"`
	EducationalContent []string `json:"Educational_Content"`
}
