package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath        string `envconfig:"DB_PATH" default:"./data/routine.db"`
	BotTZ         string `envconfig:"BOT_TZ" default:"Asia/Taipei"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"` // healthz + reminder trigger
	ReminderToken string `envconfig:"REMINDER_TOKEN" required:"true"`
	CronEnabled   bool   `envconfig:"CRON_ENABLED" default:"true"` // off when an external scheduler drives the HTTP trigger
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
