package config

import (
	"time"

	"github.com/shiftwise/shiftbot/shiftbot"
)

// WebAppConfig contains web-specific configuration
type WebAppConfig struct {
	Config      *shiftbot.Config
	Debug       bool
	Environment string
	TokenTTL    time.Duration
}

// NewWebAppConfig creates a new web app configuration
func NewWebAppConfig(cfg *shiftbot.Config, debug bool) *WebAppConfig {
	environment := "production"
	if debug {
		environment = "development"
	}

	return &WebAppConfig{
		Config:      cfg,
		Debug:       debug,
		Environment: environment,
		TokenTTL:    24 * time.Hour,
	}
}

// JWTSecret returns the signing key for panel tokens.
func (w *WebAppConfig) JWTSecret() []byte {
	return []byte(w.Config.Web.JWTSecret)
}

// GetWebConfig returns the web configuration
func (w *WebAppConfig) GetWebConfig() shiftbot.WebConfig {
	return w.Config.Web
}
