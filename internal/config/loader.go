package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/riskbrief/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name looked up in the
// current and home directories.
const DefaultConfigFile = ".riskbrief"

// xdgConfigFile is the file name inside the XDG config directory.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the YAML configuration file.
// Zero values mean "keep the built-in default".
type File struct {
	Search         SearchSection     `yaml:"search,omitempty"`
	Completion     CompletionSection `yaml:"completion,omitempty"`
	Limits         LimitsSection     `yaml:"limits,omitempty"`
	Server         ServerSection     `yaml:"server,omitempty"`
	Defaults       DefaultsSection   `yaml:"defaults,omitempty"`
	TrustedSources []string          `yaml:"trustedSources,omitempty"`

	// Proxy is an optional SOCKS5 proxy for outbound provider traffic.
	Proxy string `yaml:"proxy,omitempty"`
}

// SearchSection configures the search provider.
type SearchSection struct {
	Provider string        `yaml:"provider,omitempty"`
	BaseURL  string        `yaml:"baseURL,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// CompletionSection configures the completion provider.
type CompletionSection struct {
	Provider  string        `yaml:"provider,omitempty"`
	BaseURL   string        `yaml:"baseURL,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	MaxTokens int           `yaml:"maxTokens,omitempty"`

	// Temperature is a pointer so that an explicit 0 can be told apart
	// from "not set".
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// LimitsSection configures cost ceilings.
type LimitsSection struct {
	MaxResultsCeiling    int `yaml:"maxResultsCeiling,omitempty"`
	PromptEvidenceBudget int `yaml:"promptEvidenceBudget,omitempty"`
}

// ServerSection configures the web form server.
type ServerSection struct {
	Listen string `yaml:"listen,omitempty"`
}

// DefaultsSection holds preselected form values.
type DefaultsSection struct {
	TrustedDomains []string `yaml:"trustedDomains,omitempty"`
	FocusArea      string   `yaml:"focusArea,omitempty"`
	MaxResults     int      `yaml:"maxResults,omitempty"`
	ReportStyle    string   `yaml:"reportStyle,omitempty"`
	SearchDepth    string   `yaml:"searchDepth,omitempty"`
}

// LoadConfigFile loads a configuration file from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .riskbrief in the current directory
// 3. config.yaml in the XDG config directory
// 4. .riskbrief in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Apply overlays the non-zero values of the file onto the configuration.
// Enum values in the defaults section are parsed and rejected if unknown.
func (c *Config) Apply(f *File) error {
	if f == nil {
		return nil
	}

	if v := strings.ToLower(strings.TrimSpace(f.Search.Provider)); v != "" {
		c.SearchProvider = v
	}
	if f.Search.BaseURL != "" {
		c.SearchBaseURL = f.Search.BaseURL
	}
	if f.Search.Timeout != 0 {
		c.SearchTimeout = f.Search.Timeout
	}

	if v := strings.ToLower(strings.TrimSpace(f.Completion.Provider)); v != "" {
		c.CompletionProvider = v
	}
	if f.Completion.BaseURL != "" {
		c.CompletionBaseURL = f.Completion.BaseURL
	}
	if f.Completion.Model != "" {
		c.CompletionModel = f.Completion.Model
	}
	if f.Completion.Timeout != 0 {
		c.CompletionTimeout = f.Completion.Timeout
	}
	if f.Completion.MaxTokens != 0 {
		c.CompletionMaxTokens = f.Completion.MaxTokens
	}
	if f.Completion.Temperature != nil {
		c.Temperature = *f.Completion.Temperature
	}

	if f.Limits.MaxResultsCeiling != 0 {
		c.MaxResultsCeiling = f.Limits.MaxResultsCeiling
	}
	if f.Limits.PromptEvidenceBudget != 0 {
		c.PromptEvidenceBudget = f.Limits.PromptEvidenceBudget
	}

	if f.Server.Listen != "" {
		c.ListenAddress = f.Server.Listen
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}

	if len(f.TrustedSources) > 0 {
		c.TrustedSources = append([]string(nil), f.TrustedSources...)
	}

	return c.applyDefaults(f.Defaults)
}

// applyDefaults overlays the defaults section.
func (c *Config) applyDefaults(d DefaultsSection) error {
	if d.TrustedDomains != nil {
		c.Defaults.TrustedDomains = append([]string(nil), d.TrustedDomains...)
	}
	if d.MaxResults != 0 {
		c.Defaults.MaxResults = d.MaxResults
	}
	if d.FocusArea != "" {
		focus, err := model.ParseFocusArea(d.FocusArea)
		if err != nil {
			return fmt.Errorf("defaults.focusArea: %w", err)
		}
		c.Defaults.FocusArea = focus
	}
	if d.ReportStyle != "" {
		style, err := model.ParseReportStyle(d.ReportStyle)
		if err != nil {
			return fmt.Errorf("defaults.reportStyle: %w", err)
		}
		c.Defaults.ReportStyle = style
	}
	if d.SearchDepth != "" {
		depth, err := model.ParseSearchDepth(d.SearchDepth)
		if err != nil {
			return fmt.Errorf("defaults.searchDepth: %w", err)
		}
		c.Defaults.SearchDepth = depth
	}
	return nil
}

// Load finds, reads and applies the configuration file. When configPath was
// given explicitly and does not exist, it is an error; otherwise a missing
// file leaves the defaults untouched.
func (c *Config) Load(configPath string) error {
	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if err := c.Apply(f); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	c.ConfigFilePath = path
	return nil
}
