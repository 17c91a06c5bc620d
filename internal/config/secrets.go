package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names for provider API keys.
const (
	EnvTavilyAPIKey    = "TAVILY_API_KEY"
	EnvBraveAPIKey     = "BRAVE_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Variables that are already set are not
// overwritten. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// SearchKeyEnv returns the environment variable holding the key for the
// configured search provider.
func (c *Config) SearchKeyEnv() string {
	if c.SearchProvider == SearchProviderBrave {
		return EnvBraveAPIKey
	}
	return EnvTavilyAPIKey
}

// CompletionKeyEnv returns the environment variable holding the key for the
// configured completion provider.
func (c *Config) CompletionKeyEnv() string {
	if c.CompletionProvider == CompletionProviderAnthropic {
		return EnvAnthropicAPIKey
	}
	return EnvOpenAIAPIKey
}

// LoadSecrets reads both provider keys through lookup (os.LookupEnv when nil)
// and validates them. It is called once at process start.
func (c *Config) LoadSecrets(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(c.SearchKeyEnv()); ok {
		c.SearchAPIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(c.CompletionKeyEnv()); ok {
		c.CompletionAPIKey = strings.TrimSpace(v)
	}
	return c.ValidateSecrets()
}

// ValidateSecrets reports a missing provider key.
func (c *Config) ValidateSecrets() error {
	if c.SearchAPIKey == "" {
		return fmt.Errorf("%w (set %s)", ErrMissingSearchKey, c.SearchKeyEnv())
	}
	if c.CompletionAPIKey == "" {
		return fmt.Errorf("%w (set %s)", ErrMissingCompletionKey, c.CompletionKeyEnv())
	}
	return nil
}
