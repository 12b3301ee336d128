package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// ElevenLabs agent
	AgentID      string `env:"AGENT_ID,required,notEmpty"`
	APIKey       string `env:"API_KEY,required,notEmpty"`
	RequiresAuth bool   `env:"REQUIRES_AUTH" envDefault:"true"`
	BaseURL      string `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io"`

	// Audio (optional WAV files; without input the session runs text-only)
	AudioInputPath  string `env:"AUDIO_INPUT_PATH"`
	AudioOutputPath string `env:"AUDIO_OUTPUT_PATH"`

	// Storage
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"assistant_log.json"`

	// Display. The scheduler ticks in whole seconds, so at least 1s.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	HTTPPort     int           `env:"HTTP_PORT" envDefault:"8501"`

	// Telegram (optional second UI)
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`
}

// Load parses the environment. Missing AGENT_ID or API_KEY is an error.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PollInterval < time.Second {
		return nil, fmt.Errorf("POLL_INTERVAL must be at least 1s, got %s", cfg.PollInterval)
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	return cfg
}
