package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/riskbrief/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default search provider is tavily", func(t *testing.T) {
		t.Parallel()
		if cfg.SearchProvider != "tavily" {
			t.Errorf("expected tavily, got %q", cfg.SearchProvider)
		}
	})

	t.Run("default completion provider is openai", func(t *testing.T) {
		t.Parallel()
		if cfg.CompletionProvider != "openai" {
			t.Errorf("expected openai, got %q", cfg.CompletionProvider)
		}
	})

	t.Run("default timeouts are 30s and 120s", func(t *testing.T) {
		t.Parallel()
		if cfg.SearchTimeout != 30*time.Second {
			t.Errorf("expected SearchTimeout 30s, got %v", cfg.SearchTimeout)
		}
		if cfg.CompletionTimeout != 120*time.Second {
			t.Errorf("expected CompletionTimeout 120s, got %v", cfg.CompletionTimeout)
		}
	})

	t.Run("default result ceiling is 20 and default count is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxResultsCeiling != 20 {
			t.Errorf("expected ceiling 20, got %d", cfg.MaxResultsCeiling)
		}
		if cfg.Defaults.MaxResults != 5 {
			t.Errorf("expected default max results 5, got %d", cfg.Defaults.MaxResults)
		}
	})

	t.Run("default trusted domains are the first three sources", func(t *testing.T) {
		t.Parallel()
		want := []string{"insurancejournal.com", "artemis.bm", "reuters.com"}
		if len(cfg.Defaults.TrustedDomains) != len(want) {
			t.Fatalf("expected %v, got %v", want, cfg.Defaults.TrustedDomains)
		}
		for i := range want {
			if cfg.Defaults.TrustedDomains[i] != want[i] {
				t.Errorf("domain %d: expected %q, got %q", i, want[i], cfg.Defaults.TrustedDomains[i])
			}
		}
		if len(cfg.TrustedSources) != 10 {
			t.Errorf("expected 10 trusted sources, got %d", len(cfg.TrustedSources))
		}
	})

	t.Run("default enums", func(t *testing.T) {
		t.Parallel()
		if cfg.Defaults.FocusArea != model.FocusPhysicalRisks {
			t.Errorf("unexpected focus area %v", cfg.Defaults.FocusArea)
		}
		if cfg.Defaults.ReportStyle != model.StyleExecutive {
			t.Errorf("unexpected report style %v", cfg.Defaults.ReportStyle)
		}
		if cfg.Defaults.SearchDepth != model.DepthAdvanced {
			t.Errorf("unexpected search depth %v", cfg.Defaults.SearchDepth)
		}
	})

	t.Run("defaults do not share the catalog slice", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.TrustedSources[0] = "changed.example"
		if DefaultTrustedSources[0] != "insurancejournal.com" {
			t.Error("NewConfig leaked the package-level catalog")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("expected valid default config, got %v", err)
		}
	})
}

// TestConfigModel tests the provider-specific model fallback.
func TestConfigModel(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.Model() != DefaultOpenAIModel {
		t.Errorf("expected %q, got %q", DefaultOpenAIModel, cfg.Model())
	}

	cfg.CompletionProvider = CompletionProviderAnthropic
	if cfg.Model() != DefaultAnthropicModel {
		t.Errorf("expected %q, got %q", DefaultAnthropicModel, cfg.Model())
	}

	cfg.CompletionModel = "  custom-model "
	if cfg.Model() != "custom-model" {
		t.Errorf("expected explicit model, got %q", cfg.Model())
	}
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{name: "unknown search provider", modify: func(c *Config) { c.SearchProvider = "bing" }, want: ErrUnknownSearchProvider},
		{name: "unknown completion provider", modify: func(c *Config) { c.CompletionProvider = "llama" }, want: ErrUnknownCompletionProvider},
		{name: "zero search timeout", modify: func(c *Config) { c.SearchTimeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative completion timeout", modify: func(c *Config) { c.CompletionTimeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero ceiling", modify: func(c *Config) { c.MaxResultsCeiling = 0 }, want: ErrInvalidMaxResultsCeiling},
		{name: "default above ceiling", modify: func(c *Config) { c.MaxResultsCeiling = 3 }, want: ErrInvalidDefaultMaxResults},
		{name: "zero default", modify: func(c *Config) { c.Defaults.MaxResults = 0 }, want: ErrInvalidDefaultMaxResults},
		{name: "zero prompt budget", modify: func(c *Config) { c.PromptEvidenceBudget = 0 }, want: ErrInvalidPromptBudget},
		{name: "zero max tokens", modify: func(c *Config) { c.CompletionMaxTokens = 0 }, want: ErrInvalidMaxTokens},
		{name: "temperature too high", modify: func(c *Config) { c.Temperature = 2.5 }, want: ErrInvalidTemperature},
		{name: "bad proxy", modify: func(c *Config) { c.ProxyAddress = "localhost" }, want: ErrInvalidProxyAddress},
		{name: "bad listen address", modify: func(c *Config) { c.ListenAddress = "127.0.0.1:99999" }, want: ErrInvalidListenAddress},
		{name: "brave and anthropic are valid", modify: func(c *Config) {
			c.SearchProvider = SearchProviderBrave
			c.CompletionProvider = CompletionProviderAnthropic
		}, want: nil},
		{name: "listen on all interfaces is valid", modify: func(c *Config) { c.ListenAddress = ":8501" }, want: nil},
		{name: "proxy is valid", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1:9050" }, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestIsValidHostPort tests host:port validation.
func TestIsValidHostPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:8501", true},
		{":8501", true},
		{"[::1]:8080", true},
		{"localhost", false},
		{"localhost:0", false},
		{"localhost:65536", false},
		{"localhost:abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			t.Parallel()
			if got := IsValidHostPort(tt.addr); got != tt.want {
				t.Errorf("IsValidHostPort(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

// TestXDGConfigDir tests that the XDG directory ends with the app name.
func TestXDGConfigDir(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("expected XDG config dir to end with %q, got %q", AppName, XDGConfigDir())
	}
}
