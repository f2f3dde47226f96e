package fealty

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a config with the economy tunables pre-filled so a
// partial config.toml still yields a working bot.
func DefaultConfig() *Config {
	return &Config{
		Economy: EconomyConfig{
			InactivityTaxFloor:    10,
			InactivityTaxRate:     0.05,
			DebtInterestPercent:   3,
			ClaimMin:              50,
			ClaimMax:              5000,
			GarnishPercent:        10,
			DebtDemotionThreshold: 1000,
		},
	}
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Bot     BotConfig     `toml:"bot"`
	DB      DBConfig      `toml:"db"`
	Economy EconomyConfig `toml:"economy"`
	Spaces  SpacesConfig  `toml:"spaces"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// SpacesConfig holds the object-store credentials used when legacy dumps are
// fetched from a Spaces/S3 bucket instead of a local directory.
type SpacesConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
}

type EconomyConfig struct {
	InactivityTaxFloor    int64   `toml:"inactivity_tax_floor"`
	InactivityTaxRate     float64 `toml:"inactivity_tax_rate"`
	DebtInterestPercent   int64   `toml:"debt_interest_percent"`
	ClaimMin              int64   `toml:"claim_min"`
	ClaimMax              int64   `toml:"claim_max"`
	GarnishPercent        int64   `toml:"garnish_percent"`
	DebtDemotionThreshold int64   `toml:"debt_demotion_threshold"`
}
