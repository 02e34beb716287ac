package assistant

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration, constructed once at startup and passed
// by reference into the components that need it. Nothing reads the process
// environment after Load returns.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Context ContextConfig `yaml:"context"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig points at the completion service.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	TurnTimeout time.Duration `yaml:"turn_timeout"`
}

// StoreConfig locates the household database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ContextConfig bounds the grounding digest injected into prompts.
type ContextConfig struct {
	MaxItemsPerSection int `yaml:"max_items_per_section"`
	MaxHistoryTurns    int `yaml:"max_history_turns"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
}

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   1024,
			Timeout:     90 * time.Second,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			TurnTimeout: 2 * time.Minute,
		},
		Store: StoreConfig{Path: "hogar.db"},
		Context: ContextConfig{
			MaxItemsPerSection: 4,
			MaxHistoryTurns:    12,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads the yaml file at path, falling back to defaults when the
// file is absent, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HOGAR_LLM_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("HOGAR_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("HOGAR_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("HOGAR_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("HOGAR_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}
