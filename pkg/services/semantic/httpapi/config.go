package httpapi

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	URL     string        `mapstructure:"url" validate:"required"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse classifier config: %w", err)
	}
	return &cfg, nil
}
