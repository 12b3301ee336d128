package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingAgentID(t *testing.T) {
	t.Setenv("AGENT_ID", "")
	t.Setenv("API_KEY", "key")
	if _, err := Load(); err == nil {
		t.Fatalf("want error when AGENT_ID is empty")
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("AGENT_ID", "agent")
	t.Setenv("API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("want error when API_KEY is empty")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AGENT_ID", "agent")
	t.Setenv("API_KEY", "key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogFilePath != "assistant_log.json" {
		t.Fatalf("unexpected log path: %q", cfg.LogFilePath)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval)
	}
	if !cfg.RequiresAuth {
		t.Fatalf("requires auth should default to true")
	}
	if cfg.BaseURL != "https://api.elevenlabs.io" {
		t.Fatalf("unexpected base url: %q", cfg.BaseURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AGENT_ID", "agent")
	t.Setenv("API_KEY", "key")
	t.Setenv("LOG_FILE_PATH", "data/log.json")
	t.Setenv("POLL_INTERVAL", "3s")
	t.Setenv("ALLOWED_USERS", "1:2")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogFilePath != "data/log.json" || cfg.PollInterval != 3*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.AllowedUsers) != 2 || cfg.AllowedUsers[1] != 2 {
		t.Fatalf("allowed users not parsed: %v", cfg.AllowedUsers)
	}
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("AGENT_ID", "agent")
	t.Setenv("API_KEY", "key")
	t.Setenv("POLL_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatalf("want error for zero poll interval")
	}
}

func TestLoad_RejectsSubSecondInterval(t *testing.T) {
	t.Setenv("AGENT_ID", "agent")
	t.Setenv("API_KEY", "key")
	t.Setenv("POLL_INTERVAL", "500ms")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "POLL_INTERVAL") {
		t.Fatalf("want sub-second interval rejected, got %v", err)
	}
}

func TestLoad_MalformedValueNamesField(t *testing.T) {
	t.Setenv("AGENT_ID", "agent")
	t.Setenv("API_KEY", "key")
	t.Setenv("ALLOWED_USERS", "1:abc")
	_, err := Load()
	if err == nil {
		t.Fatalf("want error for non-numeric ALLOWED_USERS")
	}
	if strings.Contains(err.Error(), "AGENT_ID or API_KEY") || !strings.Contains(err.Error(), "AllowedUsers") {
		t.Fatalf("error should name the malformed field: %v", err)
	}
}
