package detect

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/de-tools/trade-sentinel/pkg/services/rules"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
	"github.com/de-tools/trade-sentinel/pkg/services/stats"
)

// Config collects the settings of all three layers into one document.
type Config struct {
	Rules    rules.Settings    `mapstructure:"rules"`
	Stats    stats.Settings    `mapstructure:"stats"`
	Semantic semantic.Settings `mapstructure:"semantic"`
}

func DefaultConfig() Config {
	return Config{
		Rules:    rules.DefaultSettings(),
		Stats:    stats.DefaultSettings(),
		Semantic: semantic.DefaultSettings(),
	}
}

// LoadConfig reads a pipeline config file; keys absent from the file keep
// their defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}
	return &cfg, nil
}
