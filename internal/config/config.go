package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"NovaInsights/internal/analysis"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// CronParser accepts six-field specs with seconds, and descriptors.
var CronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config holds all application configuration.
type Config struct {
	Indicators analysis.Config `yaml:"indicators"`
	DataSource struct {
		Provider    string   `yaml:"provider" validate:"oneof=csv yahoo rest mock"`
		PriceDir    string   `yaml:"price_dir" validate:"required_if=Provider csv"`
		BaseURL     string   `yaml:"base_url" validate:"required_if=Provider rest"`
		APIKey      string   `yaml:"api_key"`
		Tickers     []string `yaml:"tickers" validate:"dive,required"`
		HistoryDays int      `yaml:"history_days" validate:"min=0"`
	} `yaml:"data_source"`
	Output struct {
		TechnicalDir string `yaml:"technical_dir" validate:"required"`
		EDADir       string `yaml:"eda_dir" validate:"required"`
		XLSX         bool   `yaml:"xlsx"`
		Precision    int32  `yaml:"precision" validate:"min=0,max=12"`
	} `yaml:"output"`
	News struct {
		RawPath string `yaml:"raw_path"`
	} `yaml:"news"`
	Schedule struct {
		BatchCron  string `yaml:"batch_cron" validate:"required"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Batch struct {
		Workers int `yaml:"workers" validate:"min=1,max=64"`
	} `yaml:"batch"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token" validate:"required_with=ChatID"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr" validate:"omitempty,hostname_port"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	cfg := &Config{Indicators: analysis.DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("PRICE_DIR"); v != "" {
		c.DataSource.PriceDir = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.DataSource.Tickers = splitAndTrim(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("TECHNICAL_DIR"); v != "" {
		c.Output.TechnicalDir = v
	}
	if v := os.Getenv("EDA_DIR"); v != "" {
		c.Output.EDADir = v
	}
	if v := os.Getenv("NEWS_PATH"); v != "" {
		c.News.RawPath = v
	}
	if v := os.Getenv("CRON_BATCH"); v != "" {
		c.Schedule.BatchCron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.Schedule.RunOnStart = v == "true" || v == "1"
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.ListenAddr = v
	}
	if v := os.Getenv("BATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BATCH_WORKERS: %w", err)
		}
		c.Batch.Workers = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "csv"
	}
	if c.DataSource.PriceDir == "" && c.DataSource.Provider == "csv" {
		c.DataSource.PriceDir = "data/yfinance_data"
	}
	if c.Output.TechnicalDir == "" {
		c.Output.TechnicalDir = "outputs/technical"
	}
	if c.Output.EDADir == "" {
		c.Output.EDADir = "outputs/eda"
	}
	if c.Output.Precision == 0 {
		c.Output.Precision = 6
	}
	if c.News.RawPath == "" {
		c.News.RawPath = "data/raw_analyst_ratings.csv"
	}
	if c.Schedule.BatchCron == "" {
		c.Schedule.BatchCron = "0 30 22 * * 1-5"
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = 4
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/nova_insights.db"
	}
}

// TelegramEnabled reports whether both bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks struct tags, indicator windows and the cron spec.
func (c *Config) Validate() error {
	v := validator.New()
	// Use yaml tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if _, err := CronParser.Parse(c.Schedule.BatchCron); err != nil {
		return fmt.Errorf("schedule.batch_cron %q: %w", c.Schedule.BatchCron, err)
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
