package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.yaml"

	// DefaultTemperature applies when ai.temperature is not set.
	DefaultTemperature float32 = 0.3
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	Email      EmailConfig      `yaml:"email"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
	// RunOnStart runs one cycle as soon as the scheduler starts.
	RunOnStart bool `yaml:"run_on_start"`
}

// YouTubeConfig selects how channel videos are fetched. Source "api" uses the
// Data API with either an API key or OAuth client credentials; "rss" reads the
// public channel feeds and needs no credentials.
type YouTubeConfig struct {
	Source       string `yaml:"source"`
	APIKey       string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile    string `yaml:"token_file"`
	FeedURL      string `yaml:"feed_url"`
}

type AIConfig struct {
	Provider     string `yaml:"provider"`
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
	OpenAIAPIKey string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIModel  string `yaml:"openai_model"`
	// Temperature is nil when unset so that an explicit 0 is kept.
	Temperature *float32 `yaml:"temperature"`
}

// ModelTemperature returns the configured sampling temperature or the default.
func (a AIConfig) ModelTemperature() float32 {
	if a.Temperature == nil {
		return DefaultTemperature
	}
	return *a.Temperature
}

type TrackerConfig struct {
	Channels         []string `yaml:"channels"`
	Niche            string   `yaml:"niche"`
	VideosPerChannel int      `yaml:"videos_per_channel"`
	RateLimitSeconds int      `yaml:"rate_limit_seconds"`
	// IncludeOld keeps posts older than seven days on upsert.
	IncludeOld  bool   `yaml:"include_old"`
	WindowHours int    `yaml:"window_hours"`
	DataDir     string `yaml:"data_dir"`
	ExportDir   string `yaml:"export_dir"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether enough is configured to send the brief by email.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.ToEmail != ""
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if !explicit {
		configFile = defaultConfigFile
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case os.IsNotExist(err) && !explicit:
		log.Printf("No %s found, using defaults and environment", configFile)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	if c.YouTube.Source == "" {
		c.YouTube.Source = "api"
	}
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.FeedURL == "" {
		c.YouTube.FeedURL = "https://www.youtube.com/feeds/videos.xml"
	}

	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.OpenAIModel == "" {
		c.AI.OpenAIModel = "gpt-4o-mini"
	}
	if c.AI.Temperature == nil {
		temperature := DefaultTemperature
		c.AI.Temperature = &temperature
	}

	if c.Tracker.Niche == "" {
		c.Tracker.Niche = "Technology & Innovation"
	}
	if c.Tracker.VideosPerChannel <= 0 {
		c.Tracker.VideosPerChannel = 3
	}
	if c.Tracker.RateLimitSeconds <= 0 {
		c.Tracker.RateLimitSeconds = 5
	}
	if c.Tracker.WindowHours <= 0 {
		c.Tracker.WindowHours = 48
	}
	if c.Tracker.DataDir == "" {
		c.Tracker.DataDir = "data"
	}
	if c.Tracker.ExportDir == "" {
		c.Tracker.ExportDir = "."
	}

	c.Prompts = c.Prompts.withDefaults()

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 0 9 * * *" // Daily at 9 AM
	}
}

func (c *Config) validate() error {
	switch c.YouTube.Source {
	case "api", "rss":
	default:
		return fmt.Errorf("unknown youtube.source %q (use api or rss)", c.YouTube.Source)
	}
	switch strings.ToLower(c.AI.Provider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown ai.provider %q (use gemini or openai)", c.AI.Provider)
	}
	return nil
}

// ValidateIngest checks the credentials an ingestion run needs. Read-only
// commands such as brief or export work without them.
func (c *Config) ValidateIngest() error {
	if c.YouTube.Source == "api" && c.YouTube.APIKey == "" && (c.YouTube.ClientID == "" || c.YouTube.ClientSecret == "") {
		return fmt.Errorf("YouTube API key or OAuth client is required (set YOUTUBE_API_KEY, or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET, or use youtube.source: rss)")
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	if strings.ToLower(c.AI.Provider) == "openai" && c.AI.OpenAIAPIKey == "" {
		return fmt.Errorf("OpenAI API key is required when ai.provider is openai (set OPENAI_API_KEY or ai.openai_api_key)")
	}
	if c.Email.Enabled() && (c.Email.Username == "" || c.Email.Password == "") {
		return fmt.Errorf("Email credentials are required when email is configured (set EMAIL_USERNAME and EMAIL_PASSWORD)")
	}
	return nil
}
