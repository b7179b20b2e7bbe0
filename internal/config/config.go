package config

import (
	"fmt"
	"os"
)

type Config struct {
	Server    ServerConfig
	Ollama    OllamaConfig
	Proxy     ProxyConfig
	Storage   StorageConfig
	Companion CompanionConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type ProxyConfig struct {
	OpenRouterAPIKey string
	Model            string
	MaxTokens        int
}

type StorageConfig struct {
	DataDir string
}

type CompanionConfig struct {
	// TablesPath points at a YAML override for the profiler's curated
	// lists, keyword buckets, and scoring weights. Empty uses the
	// embedded defaults.
	TablesPath string

	// ContextTokens bounds the prior-conversation block spliced into
	// generation prompts.
	ContextTokens int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
		},
		Proxy: ProxyConfig{
			Model:     "anthropic/claude-opus-4",
			MaxTokens: 400,
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Companion: CompanionConfig{
			ContextTokens: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and the platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.lector.app) and secrets
// fall back to macOS Keychain. On Linux the backend is a JSON file at
// $XDG_CONFIG_HOME/lector/config.json and secrets live in a 0600 secrets
// file under the data directory structure.
//
// Environment variables (LECTOR_*) override backend values on all
// platforms. A missing OpenRouter API key is not an error: the cloud
// generation tier is simply skipped and the local/static fallbacks carry
// the chain.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), NewKeychain())
}

func loadWith(b ConfigBackend, kc Keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for the API key if still empty.
	if cfg.Proxy.OpenRouterAPIKey == "" {
		if key, err := kc.Get(keychainService, "openrouter_api_key"); err == nil && key != "" {
			cfg.Proxy.OpenRouterAPIKey = key
		}
	}

	if cfg.Proxy.OpenRouterAPIKey == "" {
		fmt.Fprintf(os.Stderr,
			"note: no OpenRouter API key configured; set LECTOR_OPENROUTER_API_KEY%s. "+
				"Companion responses will use the local model or built-in text.\n", apiKeyHint())
	}

	return cfg, nil
}
