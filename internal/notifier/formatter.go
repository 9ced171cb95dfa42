package notifier

import (
	"fmt"
	"strings"
	"time"

	"MarketRadar/internal/recorder"
)

// FormatRunSummary formats a completed pipeline run into a Telegram message.
func FormatRunSummary(evt *recorder.RunEvent) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>MarketRadar %s 更新</b> | %s\n\n", evt.Kind, time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("快照筆數: %d\n", evt.Records))
	if evt.ChipTickers > 0 || evt.QuoteTickers > 0 {
		b.WriteString(fmt.Sprintf("籌碼: %d 檔 | 報價: %d 檔\n", evt.ChipTickers, evt.QuoteTickers))
	}
	b.WriteString(fmt.Sprintf("耗時: %.1fs\n", float64(evt.DurationMS)/1000))

	if evt.Accepted {
		b.WriteString("\n寫入完成 ✅")
	} else {
		b.WriteString(fmt.Sprintf("\n❌ <b>快照被攔截</b>: %s\n保留前次資料", evt.Reason))
	}
	return b.String()
}

// FormatGateAlert formats a rejected candidate snapshot into an alert.
func FormatGateAlert(reason string, records int) string {
	var b strings.Builder
	b.WriteString("⚠️ <b>資料完整性警報</b>\n\n")
	b.WriteString(fmt.Sprintf("候選快照未通過檢查: %s\n", reason))
	b.WriteString(fmt.Sprintf("候選筆數: %d\n", records))
	b.WriteString("前次快照維持不變")
	return b.String()
}
