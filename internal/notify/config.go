package notify

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config defines WhatsApp gateway and reminder settings.
type Config struct {
	GatewayURL   string `yaml:"gateway_url"`
	Token        string `yaml:"token"`
	ReminderCron string `yaml:"reminder_cron"`
}

// LoadConfig loads config from yaml (NOTIFY_CONFIG path) or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		GatewayURL:   os.Getenv("WHATSAPP_GATEWAY_URL"),
		Token:        os.Getenv("WHATSAPP_GATEWAY_TOKEN"),
		ReminderCron: getenvDefault("RECORD_REMINDER_CRON", "0 17 * * *"),
	}

	if path := os.Getenv("NOTIFY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.ReminderCron == "" {
		cfg.ReminderCron = "0 17 * * *"
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
