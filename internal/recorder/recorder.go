package recorder

// RunEvent is one pipeline execution, recorded whether or not the candidate
// snapshot passed the gate.
type RunEvent struct {
	Kind         string // "stock", "macro", "global"
	Records      int
	ChipTickers  int
	QuoteTickers int
	Accepted     bool
	Reason       string // gate rejection reason, empty when accepted
	DurationMS   int64
}

// ReportEvent is one generated analysis report.
type ReportEvent struct {
	Ticker   string
	Score    int
	Verdict  string
	Strategy string // "rules" or "generative"
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordReport(evt *ReportEvent) error
	Close() error
}
