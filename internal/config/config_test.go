package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "TIMEZONE", "CACHE_TTL", "ICS_REFRESH_CRON", "AI_MODEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.Timezone != "Asia/Seoul" || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ICSRefreshCron != "*/30 * * * *" || cfg.AIModel != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a bad CACHE_TTL")
	}

	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for an unknown timezone")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subscriptions.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSubscriptions(t *testing.T) {
	path := writeFile(t, `
subscriptions:
  - name: work
    user_id: 42
    url: https://calendar.example.com/work.ics
    plan: true
  - user_id: 42
    url: " https://calendar.example.com/gym.ics "
`)

	subs, err := LoadSubscriptions(path)
	if err != nil {
		t.Fatalf("LoadSubscriptions: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(subs))
	}
	if subs[0].Name != "work" || subs[0].UserID != 42 || !subs[0].IsPlan {
		t.Fatalf("unexpected first subscription: %+v", subs[0])
	}
	if subs[1].Name != "https://calendar.example.com/gym.ics" || subs[1].IsPlan {
		t.Fatalf("unexpected second subscription: %+v", subs[1])
	}
}

func TestLoadSubscriptionsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing url":  "subscriptions:\n  - name: a\n    user_id: 1\n",
		"missing user": "subscriptions:\n  - url: https://x/a.ics\n",
		"duplicate":    "subscriptions:\n  - {name: a, user_id: 1, url: https://x/a.ics}\n  - {name: a, user_id: 1, url: https://x/b.ics}\n",
		"not yaml":     "subscriptions: [",
	}
	for name, body := range tests {
		if _, err := LoadSubscriptions(writeFile(t, body)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}

	if subs, err := LoadSubscriptions(""); err != nil || subs != nil {
		t.Fatalf("expected no subscriptions without a file, got %v %v", subs, err)
	}
}
