package entity

// Importance bounds used by highlight extraction.
// Providers score highlights on a 1-5 scale; normalized scores in [0,1] are also accepted.
const (
	MinImportance = 0.0
	MaxImportance = 5.0
)

// NewsHighlight is one key point extracted from a news article.
type NewsHighlight struct {
	Text       string  `json:"text"`
	Importance float64 `json:"importance"`
	Category   string  `json:"category"`
}

// ClampImportance keeps an importance score inside [MinImportance, MaxImportance].
func ClampImportance(v float64) float64 {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}
