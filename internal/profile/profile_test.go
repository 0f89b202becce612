package profile

import (
	"os"
	"testing"
)

func clearLLMEnvVars() {
	for _, suffix := range []string{
		"PROVIDER",
		"API_KEY",
		"BASE_URL",
		"MODEL",
		"TIMEOUT_SECONDS",
	} {
		os.Unsetenv("GRAMSATHI_LLM_" + suffix)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearLLMEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"provider defaults to ollama", "ollama", profile.LLMProvider},
		{"base URL defaults to local ollama", "http://localhost:11434/v1", profile.LLMBaseURL},
		{"model defaults to llama3.1", "llama3.1", profile.LLMModel},
		{"API key empty for local ollama", "", profile.LLMAPIKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.actual)
			}
		})
	}

	if profile.LLMTimeout != 300 {
		t.Errorf("expected timeout 300, got %d", profile.LLMTimeout)
	}
}

func TestFromEnvProviderDefaults(t *testing.T) {
	tests := []struct {
		provider string
		baseURL  string
		model    string
	}{
		{"openai", "https://api.openai.com/v1", "gpt-4o"},
		{"deepseek", "https://api.deepseek.com", "deepseek-chat"},
		{"siliconflow", "https://api.siliconflow.cn/v1", "Qwen/Qwen2.5-72B-Instruct"},
		{"openrouter", "https://openrouter.ai/api/v1", "deepseek/deepseek-chat"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			clearLLMEnvVars()
			os.Setenv("GRAMSATHI_LLM_PROVIDER", tt.provider)

			profile := &Profile{}
			profile.FromEnv()

			if profile.LLMBaseURL != tt.baseURL {
				t.Errorf("base URL: expected %q, got %q", tt.baseURL, profile.LLMBaseURL)
			}
			if profile.LLMModel != tt.model {
				t.Errorf("model: expected %q, got %q", tt.model, profile.LLMModel)
			}
		})
	}
}

func TestFromEnvUnknownProviderFallsBack(t *testing.T) {
	clearLLMEnvVars()
	os.Setenv("GRAMSATHI_LLM_PROVIDER", "mystery")
	defer clearLLMEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	if profile.LLMProvider != "ollama" {
		t.Errorf("expected fallback to ollama, got %q", profile.LLMProvider)
	}
}

func TestFromEnvExplicitValuesWin(t *testing.T) {
	clearLLMEnvVars()
	os.Setenv("GRAMSATHI_LLM_PROVIDER", "ollama")
	os.Setenv("GRAMSATHI_LLM_BASE_URL", "http://gpu-box:11434/v1")
	os.Setenv("GRAMSATHI_LLM_MODEL", "qwen2.5:14b")
	os.Setenv("GRAMSATHI_LLM_TIMEOUT_SECONDS", "60")
	defer clearLLMEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	if profile.LLMBaseURL != "http://gpu-box:11434/v1" {
		t.Errorf("base URL override lost, got %q", profile.LLMBaseURL)
	}
	if profile.LLMModel != "qwen2.5:14b" {
		t.Errorf("model override lost, got %q", profile.LLMModel)
	}
	if profile.LLMTimeout != 60 {
		t.Errorf("timeout override lost, got %d", profile.LLMTimeout)
	}
}

func TestValidateModeFallback(t *testing.T) {
	profile := &Profile{Mode: "staging", Data: t.TempDir()}
	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if profile.Mode != "demo" {
		t.Errorf("expected mode fallback to demo, got %q", profile.Mode)
	}
}

func TestIsDev(t *testing.T) {
	if (&Profile{Mode: "prod"}).IsDev() {
		t.Error("prod mode should not be dev")
	}
	if !(&Profile{Mode: "dev"}).IsDev() {
		t.Error("dev mode should be dev")
	}
	if !(&Profile{Mode: "demo"}).IsDev() {
		t.Error("demo mode should be dev")
	}
}
