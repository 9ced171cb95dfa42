package report

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"MarketRadar/internal/model"
)

var (
	scoreRe   = regexp.MustCompile(`AI 評分.*?:.*?(\d+)`)
	verdictRe = regexp.MustCompile(`AI 評分.*?- \*\*(.*?)\*\*`)
)

// GeminiEngine is the generative strategy. Any failure, from client
// construction to an unparseable response, falls back to the rule engine so
// a dashboard request always gets a report.
type GeminiEngine struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	fallback RuleEngine
}

// NewGeminiEngine creates the generative strategy.
func NewGeminiEngine(apiKey, modelName string, timeout time.Duration) *GeminiEngine {
	return &GeminiEngine{APIKey: apiKey, Model: modelName, Timeout: timeout}
}

func (g *GeminiEngine) Name() string { return "generative" }

// Generate asks Gemini for a markdown analysis and extracts score and
// verdict from the expected header line.
func (g *GeminiEngine) Generate(ctx context.Context, rec *model.MergedRecord) model.Report {
	rpt, err := g.generate(ctx, rec)
	if err != nil {
		log.Printf("[WARN] gemini report %s: %v, falling back to rules", rec.StockID, err)
		return g.fallback.Generate(rec)
	}
	return rpt
}

func (g *GeminiEngine) generate(ctx context.Context, rec *model.MergedRecord) (model.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return model.Report{}, fmt.Errorf("create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.Model, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				genai.NewPartFromText(buildPrompt(rec)),
			},
		},
	}, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.7)),
	})
	if err != nil {
		return model.Report{}, fmt.Errorf("generate content: %w", err)
	}

	content := extractText(resp)
	if content == "" {
		return model.Report{}, fmt.Errorf("empty response")
	}

	// Defaults when the model strays from the requested header format.
	score := 75
	if m := scoreRe.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			score = n
		}
	}
	verdict := "AI 分析"
	if m := verdictRe.FindStringSubmatch(content); m != nil {
		verdict = m[1]
	}

	return model.Report{Score: score, Verdict: verdict, Report: content}, nil
}

func buildPrompt(rec *model.MergedRecord) string {
	return fmt.Sprintf(`你是專業的主力操盤手，請根據提供的台股數據進行犀利的分析。

[股票資訊]
代號: %s
名稱: %s

[基本面]
本益比: %gx (同業: %gx)
營收月增: %g%%
營收年增: %g%%

[籌碼面]
外資買賣超: %d張
投信買賣超: %d張

請直接輸出以下 Markdown 格式 (不要解釋，直接給內容)：

### 🤖 Gemini Pro 深度剖析: %s
AI 評分: <根據好壞給0-100分>分 - **<Strong Buy/Bullish/Neutral/Bearish>**

#### 關鍵洞察
- <Point 1>
- <Point 2>

#### 操作建議
<一段精簡犀利的建議>`,
		rec.StockID, rec.StockName,
		rec.Valuation.CurrentPE, rec.Valuation.SectorPE,
		rec.Revenue.MoM, rec.Revenue.YoY,
		rec.Chips.ForeignNet, rec.Chips.TrustNet,
		rec.StockName)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
