package report

import (
	"strings"
	"testing"

	"MarketRadar/internal/model"
)

func record(foreign, trust int64, yoy, pe float64) *model.MergedRecord {
	return &model.MergedRecord{
		StockID:   "2330",
		StockName: "台積電",
		Valuation: model.Valuation{StockID: "2330", CurrentPE: pe, SectorPE: 20, Price: 1050},
		Revenue:   model.RevenueSummary{YoY: yoy},
		Chips:     model.InstitutionalFlow{Name: "台積電", ForeignNet: foreign, TrustNet: trust},
	}
}

func TestRuleEngine_StrongBuy(t *testing.T) {
	// Heavy foreign buying, trust onboard, explosive YoY, elevated P/E:
	// 50 + 15 + 10 + 15 = 90.
	rpt := RuleEngine{}.Generate(record(12500, 3500, 35.5, 28.5))

	if rpt.Score != 90 {
		t.Errorf("score = %d, want 90", rpt.Score)
	}
	if rpt.Verdict != model.VerdictStrongBuy {
		t.Errorf("verdict = %q, want %q", rpt.Verdict, model.VerdictStrongBuy)
	}
	if !strings.Contains(rpt.Report, "外資強力買超") {
		t.Error("narrative should mention the foreign buying factor")
	}
	if !strings.Contains(rpt.Report, "台積電 (2330)") {
		t.Error("narrative should name the stock")
	}
}

func TestRuleEngine_Bearish(t *testing.T) {
	// Foreign dumping, revenue collapsing, stretched P/E:
	// 50 - 15 - 15 - 10 = 10.
	rpt := RuleEngine{}.Generate(record(-5000, 0, -30, 55))

	if rpt.Score != 10 {
		t.Errorf("score = %d, want 10", rpt.Score)
	}
	if rpt.Verdict != model.VerdictBearish {
		t.Errorf("verdict = %q, want %q", rpt.Verdict, model.VerdictBearish)
	}
	if !strings.Contains(rpt.Report, "📉") {
		t.Error("narrative should list bear factors")
	}
}

func TestRuleEngine_QuietDataIsNeutral(t *testing.T) {
	rpt := RuleEngine{}.Generate(record(0, 0, 0, 20))

	if rpt.Score != 50 {
		t.Errorf("score = %d, want baseline 50", rpt.Score)
	}
	if rpt.Verdict != model.VerdictNeutral {
		t.Errorf("verdict = %q, want %q", rpt.Verdict, model.VerdictNeutral)
	}
	if !strings.Contains(rpt.Report, "數據平穩") {
		t.Error("narrative should state the absence of signals")
	}
}

func TestRuleEngine_ModestForeignBuying(t *testing.T) {
	// +5 for foreign on the buy side, +10 for cheap P/E: 65, Bullish.
	rpt := RuleEngine{}.Generate(record(300, 0, 0, 12))

	if rpt.Score != 65 {
		t.Errorf("score = %d, want 65", rpt.Score)
	}
	if rpt.Verdict != model.VerdictBullish {
		t.Errorf("verdict = %q, want %q", rpt.Verdict, model.VerdictBullish)
	}
}

func TestVerdictForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score   int
		verdict string
	}{
		{100, model.VerdictStrongBuy},
		{80, model.VerdictStrongBuy},
		{79, model.VerdictBullish},
		{60, model.VerdictBullish},
		{59, model.VerdictNeutral},
		{31, model.VerdictNeutral},
		{30, model.VerdictBearish},
		{0, model.VerdictBearish},
	}
	for _, tt := range tests {
		if got := verdictForScore(tt.score); got != tt.verdict {
			t.Errorf("score %d: verdict = %q, want %q", tt.score, got, tt.verdict)
		}
	}
}

func TestEngine_DispatchesToRulesWithoutKey(t *testing.T) {
	e := NewEngine("", "gemini-2.5-flash", 0)
	if e.Strategy() != "rules" {
		t.Errorf("strategy = %q, want rules", e.Strategy())
	}
}

func TestEngine_DispatchesToGenerativeWithKey(t *testing.T) {
	e := NewEngine("test-key", "gemini-2.5-flash", 0)
	if e.Strategy() != "generative" {
		t.Errorf("strategy = %q, want generative", e.Strategy())
	}
}

func TestScoreExtraction(t *testing.T) {
	content := "### 🤖 Gemini Pro 深度剖析: 台積電\nAI 評分: 88分 - **Strong Buy**\n\n#### 關鍵洞察"
	m := scoreRe.FindStringSubmatch(content)
	if m == nil || m[1] != "88" {
		t.Fatalf("score extraction failed: %v", m)
	}
	v := verdictRe.FindStringSubmatch(content)
	if v == nil || v[1] != "Strong Buy" {
		t.Fatalf("verdict extraction failed: %v", v)
	}
}
