package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/ebook-organizer/internal/core/domain"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	// Provider selects the oracle transport: "ollama" or "openai".
	Provider string `yaml:"provider"`

	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`

	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`

	BatchSize     int `yaml:"batch_size"`
	MaxTextSample int `yaml:"max_text_sample"`
	OracleRPM     int `yaml:"oracle_rpm"`
	RetryAttempts int `yaml:"retry_attempts"`

	InstructionsPath string `yaml:"instructions_path"`
	ReportPath       string `yaml:"report_path"`
	MetricsPort      string `yaml:"metrics_port"`

	// Categories replaces the built-in taxonomy when non-empty.
	Categories []domain.Category `yaml:"categories"`
}

// Load reads the environment with defaults, then merges the YAML file named
// by ORGANIZER_CONFIG when set.
func Load() (Config, error) {
	cfg := Config{
		LogLevel: env("LOG_LEVEL", "info"),

		Provider: env("ORACLE_PROVIDER", "ollama"),

		OllamaURL:   env("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: env("OLLAMA_MODEL", "llama3.1:8b"),

		OpenAIBaseURL: env("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:  env("OPENAI_API_KEY", ""),
		OpenAIModel:   env("OPENAI_MODEL", "gpt-4o-mini"),

		BatchSize:     envInt("BATCH_SIZE", 10),
		MaxTextSample: envInt("MAX_TEXT_SAMPLE", 4000),
		OracleRPM:     envInt("ORACLE_RPM", 0),
		RetryAttempts: envInt("RETRY_ATTEMPTS", 3),

		InstructionsPath: env("INSTRUCTIONS_PATH", ""),
		ReportPath:       env("REPORT_PATH", ""),
		MetricsPort:      env("METRICS_PORT", ""),
	}

	if path := os.Getenv("ORGANIZER_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return domain.WrapError(domain.ErrConfig, "parse config file", err)
	}
	return nil
}

// BasePolicy builds the pre-instruction policy: the default one, with the
// taxonomy replaced when the config file carries categories.
func (c Config) BasePolicy() (domain.PolicyConfig, error) {
	policy := domain.DefaultPolicy()
	if len(c.Categories) == 0 {
		return policy, nil
	}
	taxonomy, err := domain.NewTaxonomy(c.Categories)
	if err != nil {
		return domain.PolicyConfig{}, domain.WrapError(domain.ErrConfig, "build taxonomy", err)
	}
	policy.Taxonomy = taxonomy
	return policy, nil
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
