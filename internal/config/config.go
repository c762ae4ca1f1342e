package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceURL = "https://web.archive.org/web/20230908091635/https://en.wikipedia.org/wiki/List_of_largest_banks"
	DefaultTable     = "Largest_banks"
)

// Config holds all pipeline configuration. It is built once at start-up and
// handed to each stage.
type Config struct {
	Source struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
		Proxy   string        `yaml:"proxy"`
		Columns []string      `yaml:"columns"`
	} `yaml:"source"`
	Rates struct {
		Path     string   `yaml:"path"`
		Required []string `yaml:"required"`
	} `yaml:"rates"`
	Output struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"output"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Table  string `yaml:"table"`
	} `yaml:"database"`
	Queries  []string `yaml:"queries"`
	Progress struct {
		LogPath string `yaml:"log_path"`
	} `yaml:"progress"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file or overrides are given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BANKS_SOURCE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Source.Proxy = v
	}
	if v := os.Getenv("BANKS_RATES_PATH"); v != "" {
		c.Rates.Path = v
	}
	if v := os.Getenv("BANKS_CSV_PATH"); v != "" {
		c.Output.CSVPath = v
	}
	if v := os.Getenv("BANKS_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("BANKS_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("BANKS_TABLE"); v != "" {
		c.Database.Table = v
	}
	if v := os.Getenv("BANKS_LOG_FILE"); v != "" {
		c.Progress.LogPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BANKS_CRON"); v != "" {
		c.Schedule.Cron = v
	}
}

func (c *Config) applyDefaults() {
	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	// zero means unset
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if len(c.Source.Columns) == 0 {
		c.Source.Columns = []string{"Name", "MC_USD_Billion"}
	}
	if c.Rates.Path == "" {
		c.Rates.Path = "./exchange_rate.csv"
	}
	if len(c.Rates.Required) == 0 {
		c.Rates.Required = []string{"GBP", "EUR", "INR"}
	}
	if c.Output.CSVPath == "" {
		c.Output.CSVPath = "./Largest_banks_data.csv"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "Banks.db"
	}
	if c.Database.Table == "" {
		c.Database.Table = DefaultTable
	}
	if len(c.Queries) == 0 {
		c.Queries = DefaultQueries(c.Database.Table)
	}
	if c.Progress.LogPath == "" {
		c.Progress.LogPath = "code_log.txt"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// DefaultQueries returns the three fixed report queries against table.
func DefaultQueries(table string) []string {
	return []string{
		fmt.Sprintf("SELECT * FROM %s", table),
		fmt.Sprintf("SELECT AVG(MC_GBP_Billion) FROM %s", table),
		fmt.Sprintf("SELECT Name from %s LIMIT 5", table),
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if len(c.Source.Columns) == 0 {
		return fmt.Errorf("source.columns is required")
	}
	if c.Rates.Path == "" {
		return fmt.Errorf("rates.path is required")
	}
	if c.Output.CSVPath == "" {
		return fmt.Errorf("output.csv_path is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("database.driver must be one of sqlite, postgres, mysql; got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for driver %s", c.Database.Driver)
	}
	if c.Database.Table == "" {
		return fmt.Errorf("database.table is required")
	}
	if c.Progress.LogPath == "" {
		return fmt.Errorf("progress.log_path is required")
	}
	return nil
}
