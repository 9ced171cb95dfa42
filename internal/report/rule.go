// Package report turns one merged record into a scored analysis. Two
// strategies share the same output shape: a deterministic rule engine and a
// generative one backed by Gemini, which falls back to the rules on any
// failure.
package report

import (
	"fmt"
	"strings"

	"MarketRadar/internal/model"
)

const baselineScore = 50

// RuleEngine is the deterministic expert-system strategy.
type RuleEngine struct{}

func (RuleEngine) Name() string { return "rules" }

// Generate scores the record from a fixed factor table and renders a
// markdown narrative listing the factors that fired.
func (RuleEngine) Generate(rec *model.MergedRecord) model.Report {
	pe := rec.Valuation.CurrentPE
	yoy := rec.Revenue.YoY
	foreign := rec.Chips.ForeignNet
	trust := rec.Chips.TrustNet

	score := baselineScore
	var bull, bear []string

	switch {
	case foreign > 1000:
		score += 15
		bull = append(bull, fmt.Sprintf("外資強力買超 (%d張)。", foreign))
	case foreign > 0:
		score += 5
		bull = append(bull, "外資站在買方。")
	case foreign < -1000:
		score -= 15
		bear = append(bear, fmt.Sprintf("外資調節 (%d張)。", foreign))
	}
	if trust > 100 {
		score += 10
		bull = append(bull, "投信進場佈局。")
	}

	switch {
	case yoy > 20:
		score += 15
		bull = append(bull, fmt.Sprintf("營收年增爆發 (+%g%%)。", yoy))
	case yoy < -20:
		score -= 15
		bear = append(bear, fmt.Sprintf("營收明顯衰退 (%g%%)。", yoy))
	}

	switch {
	case pe > 0 && pe < 15:
		score += 10
		bull = append(bull, fmt.Sprintf("本益比 (%gx) 低廉。", pe))
	case pe > 40:
		score -= 10
		bear = append(bear, fmt.Sprintf("本益比 (%gx) 偏高。", pe))
	}

	verdict := verdictForScore(score)

	var b strings.Builder
	fmt.Fprintf(&b, "### 🤖 Rules AI 診斷: %s (%s)\n\n", rec.StockName, rec.StockID)
	fmt.Fprintf(&b, "**總和評分**: %d分 - **%s**\n\n", score, verdict)
	for _, f := range bull {
		fmt.Fprintf(&b, "- 📈 %s\n", f)
	}
	for _, f := range bear {
		fmt.Fprintf(&b, "- 📉 %s\n", f)
	}
	if len(bull) == 0 && len(bear) == 0 {
		b.WriteString("數據平穩，無顯著訊號。\n")
	}
	b.WriteString("\n> *此報告由專家規則系統生成 (Rule-Based)*")

	return model.Report{Score: score, Verdict: verdict, Report: b.String()}
}

func verdictForScore(score int) string {
	switch {
	case score >= 80:
		return model.VerdictStrongBuy
	case score >= 60:
		return model.VerdictBullish
	case score <= 30:
		return model.VerdictBearish
	default:
		return model.VerdictNeutral
	}
}
