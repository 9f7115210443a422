// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment           string `mapstructure:"ENVIRONMENT" validate:"omitempty,oneof=development production test"`
	SnapshotPath          string `mapstructure:"SNAPSHOT_PATH" validate:"required"`
	MiniStatementSize     int    `mapstructure:"MINI_STATEMENT_SIZE" validate:"min=1,max=1000"`
	MinPinLength          int    `mapstructure:"MIN_PIN_LENGTH" validate:"min=1"`
	MaxPinLength          int    `mapstructure:"MAX_PIN_LENGTH" validate:"gtefield=MinPinLength"`
	AccountNumberAttempts int    `mapstructure:"ACCOUNT_NUMBER_ATTEMPTS" validate:"min=1"`
	SeedDemoAccount       bool   `mapstructure:"SEED_DEMO_ACCOUNT"`
	DemoHolderName        string `mapstructure:"DEMO_HOLDER_NAME"`
	DemoInitialDeposit    string `mapstructure:"DEMO_INITIAL_DEPOSIT" validate:"omitempty,numeric"`
	DemoPin               string `mapstructure:"DEMO_PIN" validate:"omitempty,numeric"`
}

// Load reads configuration from file or environment variables.
//
// Keys missing from both fall back to the defaults below.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("SNAPSHOT_PATH", "accounts.json")
	v.SetDefault("MINI_STATEMENT_SIZE", 10)
	v.SetDefault("MIN_PIN_LENGTH", 3)
	v.SetDefault("MAX_PIN_LENGTH", 12)
	v.SetDefault("ACCOUNT_NUMBER_ATTEMPTS", 100)
	v.SetDefault("SEED_DEMO_ACCOUNT", false)
	v.SetDefault("DEMO_HOLDER_NAME", "Demo User")
	v.SetDefault("DEMO_INITIAL_DEPOSIT", "5000")
	v.SetDefault("DEMO_PIN", "1234")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	if err := validator.New().Struct(c); err != nil {
		return c, err
	}

	return c, nil
}
