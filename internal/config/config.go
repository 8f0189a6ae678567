package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hray3182/daybook/internal/models"
)

type Config struct {
	DatabaseURI   string
	ListenAddr    string
	JWTSecret     string
	Timezone      string
	CacheTTL      time.Duration
	TelegramToken string
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string

	ICSCacheDir          string
	ICSSubscriptionsFile string
	ICSRefreshCron       string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	ttl, err := time.ParseDuration(getEnvOrDefault("CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg := &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		ListenAddr:    getEnvOrDefault("LISTEN_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Timezone:      getEnvOrDefault("TIMEZONE", "Asia/Seoul"),
		CacheTTL:      ttl,
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIBaseURL:     getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:       getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),

		ICSCacheDir:          getEnvOrDefault("ICS_CACHE_DIR", "~/.cache/daybook/ics"),
		ICSSubscriptionsFile: os.Getenv("ICS_SUBSCRIPTIONS_FILE"),
		ICSRefreshCron:       getEnvOrDefault("ICS_REFRESH_CRON", "*/30 * * * *"),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type subscriptionsFile struct {
	Subscriptions []models.ICSSubscription `yaml:"subscriptions"`
}

// LoadSubscriptions reads the calendar subscriptions from a YAML file. An
// empty path means no subscriptions.
func LoadSubscriptions(path string) ([]models.ICSSubscription, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscriptions: %w", err)
	}

	var file subscriptionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse subscriptions: %w", err)
	}

	seen := make(map[string]bool, len(file.Subscriptions))
	out := make([]models.ICSSubscription, 0, len(file.Subscriptions))
	for i, s := range file.Subscriptions {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" || s.UserID == 0 {
			return nil, fmt.Errorf("subscription %d needs url and user_id", i+1)
		}
		if s.Name == "" {
			s.Name = s.URL
		}
		key := fmt.Sprintf("%d/%s", s.UserID, s.Name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate subscription %q for user %d", s.Name, s.UserID)
		}
		seen[key] = true
		out = append(out, s)
	}
	return out, nil
}
