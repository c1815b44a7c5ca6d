package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Webhook struct {
		Secret string `yaml:"secret"`
	} `yaml:"webhook"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		SessionTTL string `yaml:"sessionTTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Trivia struct {
		URL        string `yaml:"url"`
		Cooldown   string `yaml:"cooldown"`
		MaxRetries int    `yaml:"maxRetries"`
	} `yaml:"trivia"`
	Jobs struct {
		ResetCheckInterval   string `yaml:"resetCheckInterval"`
		CacheRefreshInterval string `yaml:"cacheRefreshInterval"`
		DailyCheckInterval   string `yaml:"dailyCheckInterval"`
		WeeklyCycle          string `yaml:"weeklyCycle"`
	} `yaml:"jobs"`
}

// Load reads YAML config from path. Secrets may be overridden by
// environment variables so they never need to live in the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if secret := os.Getenv("WEBHOOK_SECRET"); secret != "" {
		cfg.Webhook.Secret = secret
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		cfg.Postgres.URL = url
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
