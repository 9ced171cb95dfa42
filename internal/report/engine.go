package report

import (
	"context"
	"time"

	"MarketRadar/internal/model"
)

// Engine dispatches to the generative strategy when an API key is
// configured, and to the rule engine otherwise.
type Engine struct {
	gemini *GeminiEngine
	rules  RuleEngine
}

// NewEngine creates the dispatcher. An empty apiKey selects the rule engine.
func NewEngine(apiKey, modelName string, timeout time.Duration) *Engine {
	e := &Engine{}
	if apiKey != "" {
		e.gemini = NewGeminiEngine(apiKey, modelName, timeout)
	}
	return e
}

// Strategy names the engine that will serve the next request.
func (e *Engine) Strategy() string {
	if e.gemini != nil {
		return e.gemini.Name()
	}
	return e.rules.Name()
}

// Generate produces a report for the record.
func (e *Engine) Generate(ctx context.Context, rec *model.MergedRecord) model.Report {
	if e.gemini != nil {
		return e.gemini.Generate(ctx, rec)
	}
	return e.rules.Generate(rec)
}
