package config

import (
	"strings"
	"testing"
	"time"
)

// setEnv sets a valid baseline and then applies overrides.
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	base := map[string]string{
		"PORT":      "8002",
		"ADDRESS":   "127.0.0.1",
		"ENV":       "dev",
		"LOG_LEVEL": "info",
	}
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
	for k, v := range overrides {
		t.Setenv(k, v)
	}
}

func TestLoadValidConfig(t *testing.T) {
	setEnv(t, map[string]string{"API_KEY": "  secret  ", "CORPUS_PATH": "/tmp/corpus.csv"})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.APIKey != "secret" || !cfg.AssistantEnabled() {
		t.Errorf("Expected trimmed API key and assistant enabled, got %q", cfg.APIKey)
	}
	if cfg.CorpusPath != "/tmp/corpus.csv" {
		t.Errorf("Expected corpus path, got %q", cfg.CorpusPath)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	setEnv(t, map[string]string{"PORT": "", "ADDRESS": "", "ENV": "", "LOG_LEVEL": ""})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"port", cfg.Port, "8000"},
		{"address", cfg.Address, "127.0.0.1"},
		{"env", cfg.Env, EnvDevelopment},
		{"log level", cfg.LogLevel, "info"},
		{"data dir", cfg.DataDir, "./data"},
		{"corpus path", cfg.CorpusPath, ""},
		{"model", cfg.AssistantModel, "gemini-2.5-flash"},
		{"timeout", cfg.AssistantTimeout, 60 * time.Second},
		{"session ttl", cfg.SessionTTL, 2 * time.Hour},
		{"max sessions", cfg.MaxSessions, 256},
		{"retention", cfg.LogRetentionWeeks, 4},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}

	if cfg.AssistantEnabled() {
		t.Error("Assistant should be disabled without API_KEY")
	}
}

func TestInvalidValues(t *testing.T) {
	testCases := []struct {
		key      string
		value    string
		expected string
	}{
		{"PORT", "abc", "PORT must be a valid number"},
		{"PORT", "0", "PORT must be between 1 and 65535"},
		{"PORT", "65536", "PORT must be between 1 and 65535"},
		{"PORT", "80", "PORT 80 is privileged"},
		{"ADDRESS", "invalid", "ADDRESS must be a valid IP address"},
		{"ADDRESS", "8.8.8.8", "is a public IP"},
		{"ENV", "invalid", "ENV must be one of"},
		{"LOG_LEVEL", "invalid", "LOG_LEVEL must be one of"},
		{"MAX_REQUEST_BODY", "-1", "must be positive"},
		{"LOG_RETENTION_WEEKS", "60", "too large"},
		{"MAX_LOG_FILE_SIZE", "1000", "too small"},
		{"ASSISTANT_BASE_URL", "ftp://example.com", "scheme must be http or https"},
		{"ASSISTANT_TIMEOUT", "soon", "ASSISTANT_TIMEOUT must be a positive duration"},
		{"SESSION_TTL", "-5m", "SESSION_TTL must be a positive duration"},
		{"MAX_SESSIONS", "0", "MAX_SESSIONS"},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			setEnv(t, map[string]string{tc.key: tc.value})

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestValidAddresses(t *testing.T) {
	for _, address := range []string{"localhost", "::1", "10.0.0.5", "192.168.1.10", "0.0.0.0"} {
		t.Run(address, func(t *testing.T) {
			setEnv(t, map[string]string{"ADDRESS": address})
			if _, err := Load(); err != nil {
				t.Errorf("Expected %s to be accepted, got %v", address, err)
			}
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"STAGING", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{"test", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.input, err)
			}
			if env != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, env)
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}
