// Package global builds the event-intelligence document: a curated calendar
// of tech events, each linked to US anchor stocks and their Taiwan supply
// chains, enriched with live prices and a sympathy signal per ticker.
package global

import "MarketRadar/internal/model"

// eventCalendar is the curated 2026 calendar. Static data maintained by
// hand, the closest thing this system has to a research database.
var eventCalendar = []model.TechEvent{
	{
		Event:       "MWC 世界行動通訊大會 2026",
		Date:        "2026-02-26",
		EndDate:     "2026-03-01",
		Theme:       "6G / Wi-Fi 7 / 邊緣 AI",
		Description: "全球最大通訊展。聚焦非地面網路 (NTN) 與終端 AI 應用。觀察網通設備升級潮。",
		SupplyChain: []model.SupplyChainGroup{
			{USSymbol: "QCOM", USName: "高通", TWTickers: []string{"2454", "2379", "3105"}, TWSector: "IC 設計"},
			{USSymbol: "AVGO", USName: "博通", TWTickers: []string{"5388", "6285"}, TWSector: "網通設備"},
		},
	},
	{
		Event:       "NVIDIA GTC 大會 2026",
		Date:        "2026-03-18",
		EndDate:     "2026-03-21",
		Theme:       "Blackwell Ultra / Rubin GPU",
		Description: "AI 界的伍茲塔克。黃仁勳將揭曉下一代 AI 推論晶片與 Sovereign AI 戰略。",
		SupplyChain: []model.SupplyChainGroup{
			{USSymbol: "NVDA", USName: "輝達", TWTickers: []string{"2330", "2382", "3231", "6669"}, TWSector: "AI 伺服器"},
			{USSymbol: "SMCI", USName: "美超微", TWTickers: []string{"2376", "2324"}, TWSector: "伺服器代工"},
		},
	},
	{
		Event:       "Google I/O 開發者大會",
		Date:        "2026-05-14",
		EndDate:     "2026-05-15",
		Theme:       "Gemini 2.0 / Android 17",
		Description: "Google 軟體火力展示。關注 Pixel 手機的 AI 整合與各種 Agent 應用。",
		SupplyChain: []model.SupplyChainGroup{
			{USSymbol: "GOOGL", USName: "Alphabet", TWTickers: []string{"2357", "2498"}, TWSector: "安卓生態系"},
		},
	},
	{
		Event:       "Computex 台北國際電腦展",
		Date:        "2026-06-02",
		EndDate:     "2026-06-06",
		Theme:       "AI PC / Copilot+",
		Description: "台灣主場優勢。AMD, Intel, Qualcomm 執行長將齊聚台北，發布 AI PC 新品。",
		SupplyChain: []model.SupplyChainGroup{
			{USSymbol: "MSFT", USName: "微軟", TWTickers: []string{"2353", "2357", "2301"}, TWSector: "AI PC 供應鏈"},
			{USSymbol: "AMD", USName: "超微", TWTickers: []string{"2330", "3711"}, TWSector: "HPC 運算"},
		},
	},
	{
		Event:       "Apple WWDC 開發者大會",
		Date:        "2026-06-10",
		EndDate:     "2026-06-14",
		Theme:       "iOS 20 / Siri LLM",
		Description: "蘋果 AI 戰略關鍵時刻。預期發布裝置端 (On-device) AI 新功能。",
		SupplyChain: []model.SupplyChainGroup{
			{USSymbol: "AAPL", USName: "蘋果", TWTickers: []string{"2317", "3008", "4938"}, TWSector: "蘋果供應鏈"},
		},
	},
}
