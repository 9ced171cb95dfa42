package model

// Report verdict buckets, mapped from the 0-100 score.
const (
	VerdictStrongBuy = "Strong Buy"
	VerdictBullish   = "Bullish"
	VerdictNeutral   = "Neutral"
	VerdictBearish   = "Bearish"
)

// Report is the analysis result attached to a dashboard response. Both the
// rule engine and the generative strategy return this shape.
type Report struct {
	Score   int    `json:"score"`
	Verdict string `json:"verdict"`
	Report  string `json:"report"` // markdown narrative
}
