package gemini

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	APIKey string `mapstructure:"api_key" validate:"required"`
	Model  string `mapstructure:"model"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse gemini config: %w", err)
	}
	return &cfg, nil
}
