// Package config provides Viper-based hierarchical configuration for the
// import engine: defaults, then an optional YAML config file, then
// KONTIR_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LogConfig controls the logger level and format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig controls CSV output.
type CSVConfig struct {
	Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
	IncludeHeaders bool   `mapstructure:"include_headers" yaml:"include_headers"`
}

// LedgerConfig points at the accounting backend.
type LedgerConfig struct {
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey         string `mapstructure:"api_key" yaml:"-"` // never serialized
	CompanyID      int    `mapstructure:"company_id" yaml:"company_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	PageSize       int    `mapstructure:"page_size" yaml:"page_size"`
}

// AIConfig controls the invoice extraction model.
type AIConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	APIKey         string `mapstructure:"api_key" yaml:"-"` // never serialized
}

// BankConfig names the accounts bank statement lines are posted against.
type BankConfig struct {
	BankAccountCode       string `mapstructure:"bank_account_code" yaml:"bank_account_code"`
	SettlementAccountCode string `mapstructure:"settlement_account_code" yaml:"settlement_account_code"`
}

// MappingConfig locates the account and counterpart mapping files.
type MappingConfig struct {
	AccountsFile     string `mapstructure:"accounts_file" yaml:"accounts_file"`
	CounterpartsFile string `mapstructure:"counterparts_file" yaml:"counterparts_file"`
}

// Config is the complete application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	CSV     CSVConfig     `mapstructure:"csv" yaml:"csv"`
	Ledger  LedgerConfig  `mapstructure:"ledger" yaml:"ledger"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	Bank    BankConfig    `mapstructure:"bank" yaml:"bank"`
	Mapping MappingConfig `mapstructure:"mapping" yaml:"mapping"`
}

// InitializeConfig loads configuration with hierarchical precedence.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.kontir")
	v.AddConfigPath(".kontir")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KONTIR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file present but unreadable: keep going with defaults
			// and environment variables.
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// API keys always come from unprefixed env vars.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}
	if err := v.BindEnv("ledger.api_key", "LEDGER_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind LEDGER_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.include_headers", true)

	v.SetDefault("ledger.endpoint", "http://localhost:8080/api")
	v.SetDefault("ledger.company_id", 0)
	v.SetDefault("ledger.timeout_seconds", 30)
	v.SetDefault("ledger.page_size", 100)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 60)

	v.SetDefault("bank.bank_account_code", "503")
	v.SetDefault("bank.settlement_account_code", "499")

	v.SetDefault("mapping.accounts_file", "account-mappings.yaml")
	v.SetDefault("mapping.counterparts_file", "counterparts.yaml")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Ledger.PageSize < 1 || config.Ledger.PageSize > 1000 {
		return fmt.Errorf("ledger.page_size must be between 1 and 1000, got: %d", config.Ledger.PageSize)
	}

	if config.Ledger.TimeoutSeconds < 1 || config.Ledger.TimeoutSeconds > 300 {
		return fmt.Errorf("ledger.timeout_seconds must be between 1 and 300, got: %d", config.Ledger.TimeoutSeconds)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// ConfigureLoggingFromConfig builds a logrus logger from the Log section.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
