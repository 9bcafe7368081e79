package shiftbot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	// Secrets may come from the environment instead of the config file.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Web.JWTSecret = secret
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.DB.Password = pass
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Web.AdminPassword = pass
	}

	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log       LogConfig       `toml:"log"`
	Bot       BotConfig       `toml:"bot"`
	DB        DBConfig        `toml:"db"`
	Web       WebConfig       `toml:"web"`
	Timeclock TimeclockConfig `toml:"timeclock"`
	Quiz      QuizConfig      `toml:"quiz"`
}

type BotConfig struct {
	Token         string `toml:"token"`
	AdminPanelURL string `toml:"admin_panel_url"`
	UpdateTimeout int    `toml:"update_timeout"`
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

type WebConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	JWTSecret     string `toml:"jwt_secret"`
	AdminPassword string `toml:"admin_password"`
	AllowOrigins  string `toml:"allow_origins"`
}

type TimeclockConfig struct {
	// StaleThresholdHours separates "still on shift across midnight" from
	// "forgot to clock out"; sessions older than this block new clock-ins.
	StaleThresholdHours float64 `toml:"stale_threshold_hours"`
	// TimezoneOffsets maps timezone identifiers to fixed UTC offsets in
	// minutes. Identifiers not in the table resolve as UTC.
	TimezoneOffsets map[string]int `toml:"timezone_offsets"`
}

type QuizConfig struct {
	DefaultTimezone string `toml:"default_timezone"`
}

func (c *Config) applyDefaults() {
	if c.Bot.UpdateTimeout <= 0 {
		c.Bot.UpdateTimeout = 30
	}
	if c.Timeclock.StaleThresholdHours <= 0 {
		c.Timeclock.StaleThresholdHours = 14
	}
	if len(c.Timeclock.TimezoneOffsets) == 0 {
		c.Timeclock.TimezoneOffsets = map[string]int{
			"UTC":            0,
			"Asia/Shanghai":  480,
			"Asia/Singapore": 480,
			"Asia/Manila":    480,
		}
	}
	if c.Quiz.DefaultTimezone == "" {
		c.Quiz.DefaultTimezone = "Asia/Shanghai"
	}
	if c.Web.AllowOrigins == "" {
		c.Web.AllowOrigins = "http://localhost:3000,http://localhost:8080"
	}
}
