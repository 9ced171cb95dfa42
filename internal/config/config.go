package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Store struct {
		StockPath      string  `yaml:"stock_path"`
		MacroPath      string  `yaml:"macro_path"`
		GlobalPath     string  `yaml:"global_path"`
		FreshnessHours float64 `yaml:"freshness_hours"`
	} `yaml:"store"`
	Pipeline struct {
		MinRecords      int      `yaml:"min_records"`
		CanaryTicker    string   `yaml:"canary_ticker"`
		SectorPE        float64  `yaml:"sector_pe"`
		ChipFloor       int      `yaml:"chip_floor"` // below this many chip tickers the feed counts as degraded
		FallbackTickers []string `yaml:"fallback_tickers"`
	} `yaml:"pipeline"`
	Sources struct {
		TWSEBaseURL   string `yaml:"twse_base_url"`
		TPEXBaseURL   string `yaml:"tpex_base_url"`
		MOPSBaseURL   string `yaml:"mops_base_url"`
		QuoteBaseURL  string `yaml:"quote_base_url"`
		TaifexBaseURL string `yaml:"taifex_base_url"`
		ProbeDays     int    `yaml:"probe_days"`
		AnchorMonths  int    `yaml:"anchor_months"`
		HistoryMonths int    `yaml:"history_months"`
		BatchSize     int    `yaml:"batch_size"`
		// Positional fallbacks for the TPEX 3itrade table. The feed's column
		// layout has drifted across revisions; these are operator-verified
		// values, not ground truth.
		TPEXForeignCol int `yaml:"tpex_foreign_col"`
		TPEXTrustCol   int `yaml:"tpex_trust_col"`
		// Net open-interest lots column in the TAIFEX futures report, same
		// caveat as the TPEX offsets above.
		TaifexOICol    int `yaml:"taifex_oi_col"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"sources"`
	Report struct {
		GeminiAPIKey   string `yaml:"-"` // env GEMINI_API_KEY only, never from file
		GeminiModel    string `yaml:"gemini_model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"report"`
	Schedule struct {
		UpdateCron string `yaml:"update_cron"`
		MacroCron  string `yaml:"macro_cron"`
		GlobalCron string `yaml:"global_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	cfg.Report.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("STOCK_DATA_PATH"); v != "" {
		cfg.Store.StockPath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FRESHNESS_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Store.FreshnessHours = f
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8000"
	}
	if cfg.Store.StockPath == "" {
		cfg.Store.StockPath = "data/stock_data.json"
	}
	if cfg.Store.MacroPath == "" {
		cfg.Store.MacroPath = "data/macro_data.json"
	}
	if cfg.Store.GlobalPath == "" {
		cfg.Store.GlobalPath = "data/global_data.json"
	}
	if cfg.Store.FreshnessHours == 0 {
		cfg.Store.FreshnessHours = 12
	}
	if cfg.Pipeline.MinRecords == 0 {
		cfg.Pipeline.MinRecords = 5
	}
	if cfg.Pipeline.CanaryTicker == "" {
		cfg.Pipeline.CanaryTicker = "2330"
	}
	if cfg.Pipeline.SectorPE == 0 {
		cfg.Pipeline.SectorPE = 20.0
	}
	if cfg.Pipeline.ChipFloor == 0 {
		cfg.Pipeline.ChipFloor = 10
	}
	if len(cfg.Pipeline.FallbackTickers) == 0 {
		cfg.Pipeline.FallbackTickers = []string{
			"2330", "2317", "2454", "2603", "2881", "8069", "3293", "5347", "2365",
		}
	}
	if cfg.Sources.TWSEBaseURL == "" {
		cfg.Sources.TWSEBaseURL = "https://www.twse.com.tw"
	}
	if cfg.Sources.TPEXBaseURL == "" {
		cfg.Sources.TPEXBaseURL = "https://www.tpex.org.tw"
	}
	if cfg.Sources.MOPSBaseURL == "" {
		cfg.Sources.MOPSBaseURL = "https://mopsov.twse.com.tw"
	}
	if cfg.Sources.QuoteBaseURL == "" {
		cfg.Sources.QuoteBaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Sources.TaifexBaseURL == "" {
		cfg.Sources.TaifexBaseURL = "https://www.taifex.com.tw"
	}
	if cfg.Sources.ProbeDays == 0 {
		cfg.Sources.ProbeDays = 5
	}
	if cfg.Sources.AnchorMonths == 0 {
		cfg.Sources.AnchorMonths = 24
	}
	if cfg.Sources.HistoryMonths == 0 {
		cfg.Sources.HistoryMonths = 12
	}
	if cfg.Sources.BatchSize == 0 {
		cfg.Sources.BatchSize = 50
	}
	if cfg.Sources.TPEXForeignCol == 0 {
		cfg.Sources.TPEXForeignCol = 4
	}
	if cfg.Sources.TPEXTrustCol == 0 {
		cfg.Sources.TPEXTrustCol = 13
	}
	if cfg.Sources.TaifexOICol == 0 {
		cfg.Sources.TaifexOICol = 13
	}
	if cfg.Sources.TimeoutSeconds == 0 {
		cfg.Sources.TimeoutSeconds = 10
	}
	if cfg.Report.GeminiModel == "" {
		cfg.Report.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.Report.TimeoutSeconds == 0 {
		cfg.Report.TimeoutSeconds = 30
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/market_radar.db"
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Pipeline.MinRecords < 1 {
		return fmt.Errorf("pipeline.min_records must be >= 1")
	}
	if len(c.Pipeline.CanaryTicker) != 4 {
		return fmt.Errorf("pipeline.canary_ticker must be a 4-character ticker, got %q", c.Pipeline.CanaryTicker)
	}
	if c.Pipeline.SectorPE <= 0 {
		return fmt.Errorf("pipeline.sector_pe must be positive")
	}
	if c.Sources.BatchSize < 1 {
		return fmt.Errorf("sources.batch_size must be >= 1")
	}
	if c.Store.FreshnessHours < 0 {
		return fmt.Errorf("store.freshness_hours must not be negative")
	}
	return nil
}
