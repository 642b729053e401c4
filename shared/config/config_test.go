package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"YOUTUBE_API_KEY", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "EMAIL_USERNAME", "EMAIL_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "tracker:\n  channels: [UC_x5XG1OV2P6uZZ5FSM9Ttw]\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"youtube source", cfg.YouTube.Source, "api"},
		{"ai provider", cfg.AI.Provider, "gemini"},
		{"ai model", cfg.AI.Model, "gemini-2.5-flash"},
		{"openai model", cfg.AI.OpenAIModel, "gpt-4o-mini"},
		{"niche", cfg.Tracker.Niche, "Technology & Innovation"},
		{"videos per channel", cfg.Tracker.VideosPerChannel, 3},
		{"rate limit", cfg.Tracker.RateLimitSeconds, 5},
		{"window", cfg.Tracker.WindowHours, 48},
		{"include old", cfg.Tracker.IncludeOld, false},
		{"data dir", cfg.Tracker.DataDir, "data"},
		{"schedule", cfg.Schedule, "0 0 9 * * *"},
		{"health port", cfg.Monitoring.HealthPort, 8080},
		{"channels", len(cfg.Tracker.Channels), 1},
		{"temperature", cfg.AI.ModelTemperature(), DefaultTemperature},
		{"run on start", cfg.RunOnStart, false},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadTemperature(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want float32
	}{
		{"Unset uses default", "ai:\n  provider: gemini\n", DefaultTemperature},
		{"Explicit zero is kept", "ai:\n  temperature: 0\n", 0},
		{"Explicit value", "ai:\n  temperature: 0.9\n", 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)
			t.Setenv("CONFIG_FILE", writeConfig(t, tt.yaml))

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got := cfg.AI.ModelTemperature(); got != tt.want {
				t.Errorf("ModelTemperature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "ai:\n  gemini_api_key: from-file\n"))
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.YouTube.APIKey != "yt-key" {
		t.Errorf("YouTube.APIKey = %q, want env value", cfg.YouTube.APIKey)
	}
	if cfg.AI.GeminiAPIKey != "from-file" {
		t.Errorf("GeminiAPIKey = %q, file value should win over env", cfg.AI.GeminiAPIKey)
	}
}

func TestLoadErrors(t *testing.T) {
	clearCredentialEnv(t)

	t.Run("ExplicitMissingFile", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := Load(); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", writeConfig(t, "tracker: [unclosed"))
		if _, err := Load(); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("UnknownSource", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", writeConfig(t, "youtube:\n  source: scraping\n"))
		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "youtube.source") {
			t.Errorf("expected youtube.source error, got %v", err)
		}
	})
}

func TestValidateIngest(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		cfg.AI.GeminiAPIKey = "gemini"
		cfg.YouTube.APIKey = "yt"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Complete", func(*Config) {}, false},
		{"RSS needs no YouTube credentials", func(c *Config) { c.YouTube.Source = "rss"; c.YouTube.APIKey = "" }, false},
		{"OAuth instead of key", func(c *Config) {
			c.YouTube.APIKey = ""
			c.YouTube.ClientID = "id"
			c.YouTube.ClientSecret = "secret"
		}, false},
		{"No YouTube credentials", func(c *Config) { c.YouTube.APIKey = "" }, true},
		{"No Gemini key", func(c *Config) { c.AI.GeminiAPIKey = "" }, true},
		{"OpenAI without key", func(c *Config) { c.AI.Provider = "openai" }, true},
		{"Email without credentials", func(c *Config) {
			c.Email.SMTPServer = "smtp.test.com"
			c.Email.ToEmail = "to@test.com"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.ValidateIngest()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIngest() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestPromptsFor(t *testing.T) {
	prompts := PromptsConfig{Templates: map[string]PromptTemplate{
		"Fashion": {Role: "You are a fashion analyst.", SummaryFocus: "on styles", TrendFocus: "style trends"},
	}}.withDefaults()

	tests := []struct {
		niche    string
		wantRole string
	}{
		{"gaming", builtinPrompts["gaming"].Role},
		{"GAMING ", builtinPrompts["gaming"].Role},
		{"fashion", "You are a fashion analyst."},
		{"Technology & Innovation", builtinPrompts[DefaultPromptKey].Role},
	}

	for _, tt := range tests {
		t.Run(tt.niche, func(t *testing.T) {
			if got := prompts.For(tt.niche).Role; got != tt.wantRole {
				t.Errorf("For(%q).Role = %q, want %q", tt.niche, got, tt.wantRole)
			}
		})
	}

	t.Run("EmptyConfigUsesBuiltinDefault", func(t *testing.T) {
		if got := (PromptsConfig{}).For("anything"); got != builtinPrompts[DefaultPromptKey] {
			t.Errorf("For() on empty config = %+v", got)
		}
	})
}
