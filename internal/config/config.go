package config

import (
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/riskbrief/internal/model"
)

// Search and completion provider identifiers.
const (
	// SearchProviderTavily selects the Tavily search API.
	SearchProviderTavily = "tavily"

	// SearchProviderBrave selects the Brave web search API.
	SearchProviderBrave = "brave"

	// CompletionProviderOpenAI selects the OpenAI chat completions API.
	CompletionProviderOpenAI = "openai"

	// CompletionProviderAnthropic selects the Anthropic messages API.
	CompletionProviderAnthropic = "anthropic"
)

// Default configuration values.
const (
	// DefaultSearchTimeout bounds the single search call of a run.
	// Advanced Tavily searches regularly take 5-15 seconds.
	DefaultSearchTimeout = 30 * time.Second

	// DefaultCompletionTimeout bounds the single completion call of a run.
	// A long report from a large model can take over a minute.
	DefaultCompletionTimeout = 120 * time.Second

	// DefaultMaxResultsCeiling is the largest result count a user may request.
	// It caps the search provider's billable work per run.
	DefaultMaxResultsCeiling = 20

	// DefaultMaxResults is the result count preselected in the form.
	DefaultMaxResults = 5

	// DefaultPromptEvidenceBudget is the number of evidence runes (titles,
	// URLs and snippets combined) that may be embedded into the prompt.
	DefaultPromptEvidenceBudget = 24000

	// DefaultCompletionMaxTokens bounds the length of the generated report.
	DefaultCompletionMaxTokens = 4096

	// DefaultOpenAIModel is the chat model used with the openai provider.
	DefaultOpenAIModel = "gpt-4o"

	// DefaultAnthropicModel is the model used with the anthropic provider.
	DefaultAnthropicModel = "claude-sonnet-4-5"

	// DefaultListenAddress is where the web form is served.
	DefaultListenAddress = "127.0.0.1:8501"

	// AppName is the application name used for XDG directory paths.
	AppName = "riskbrief"

	// DefaultUserAgent identifies riskbrief in search provider requests.
	DefaultUserAgent = "riskbrief/1.0 (+https://github.com/nao1215/riskbrief)"
)

// DefaultTrustedSources is the catalog of climate risk and insurance sources
// offered in the form.
var DefaultTrustedSources = []string{
	"insurancejournal.com",
	"artemis.bm",
	"reuters.com",
	"tnfd.global",
	"swissre.com",
	"munichre.com",
	"lloyds.com",
	"genevaassociation.org",
	"naic.gov",
	"abi.org.uk",
}

// FormDefaults holds the values preselected in the research form and used by
// the research command when a flag is not given.
type FormDefaults struct {
	// TrustedDomains is the preselected allow-list.
	TrustedDomains []string

	// FocusArea is the preselected focus area.
	FocusArea model.FocusArea

	// MaxResults is the preselected result count.
	MaxResults int

	// ReportStyle is the preselected report style.
	ReportStyle model.ReportStyle

	// SearchDepth is the preselected search depth.
	SearchDepth model.SearchDepth
}

// Config holds all configuration options for riskbrief.
// It is populated from defaults, the configuration file, CLI flags and the
// environment, in that order, and passed explicitly to every component.
type Config struct {
	// SearchProvider is SearchProviderTavily or SearchProviderBrave.
	SearchProvider string

	// SearchBaseURL overrides the search provider endpoint. Empty means the
	// provider's public endpoint.
	SearchBaseURL string

	// SearchTimeout bounds the search call. When it expires the run fails
	// with a retrieval error.
	SearchTimeout time.Duration

	// SearchAPIKey is the search provider secret, read from the environment.
	SearchAPIKey string

	// CompletionProvider is CompletionProviderOpenAI or CompletionProviderAnthropic.
	CompletionProvider string

	// CompletionBaseURL overrides the completion provider endpoint.
	CompletionBaseURL string

	// CompletionModel is the model identifier. Empty means the provider default.
	CompletionModel string

	// CompletionTimeout bounds the completion call. When it expires the run
	// fails with a synthesis error.
	CompletionTimeout time.Duration

	// CompletionMaxTokens bounds the generated report length.
	CompletionMaxTokens int

	// Temperature is the sampling temperature. Zero keeps reports reproducible.
	Temperature float64

	// CompletionAPIKey is the completion provider secret, read from the environment.
	CompletionAPIKey string

	// MaxResultsCeiling is the largest accepted result count.
	MaxResultsCeiling int

	// PromptEvidenceBudget is the rune budget for evidence in the prompt.
	PromptEvidenceBudget int

	// Defaults holds preselected form values.
	Defaults FormDefaults

	// TrustedSources is the catalog of domains offered in the form.
	TrustedSources []string

	// ListenAddress is the host:port the web form is served on.
	ListenAddress string

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") for all
	// outbound provider traffic. Empty means direct connections.
	ProxyAddress string

	// UserAgent is sent with search provider requests.
	UserAgent string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the configuration file that was loaded, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	domains := make([]string, 3)
	copy(domains, DefaultTrustedSources[:3])
	sources := make([]string, len(DefaultTrustedSources))
	copy(sources, DefaultTrustedSources)

	return &Config{
		SearchProvider:       SearchProviderTavily,
		SearchTimeout:        DefaultSearchTimeout,
		CompletionProvider:   CompletionProviderOpenAI,
		CompletionTimeout:    DefaultCompletionTimeout,
		CompletionMaxTokens:  DefaultCompletionMaxTokens,
		MaxResultsCeiling:    DefaultMaxResultsCeiling,
		PromptEvidenceBudget: DefaultPromptEvidenceBudget,
		Defaults: FormDefaults{
			TrustedDomains: domains,
			FocusArea:      model.FocusPhysicalRisks,
			MaxResults:     DefaultMaxResults,
			ReportStyle:    model.StyleExecutive,
			SearchDepth:    model.DepthAdvanced,
		},
		TrustedSources: sources,
		ListenAddress:  DefaultListenAddress,
		UserAgent:      DefaultUserAgent,
	}
}

// Model returns the completion model to use, falling back to the default of
// the selected provider.
func (c *Config) Model() string {
	if m := strings.TrimSpace(c.CompletionModel); m != "" {
		return m
	}
	if c.CompletionProvider == CompletionProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}

// XDGConfigDir returns the XDG config directory for riskbrief.
// On Linux: ~/.config/riskbrief
// On macOS: ~/Library/Application Support/riskbrief
// On Windows: %APPDATA%\riskbrief
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found as one of the sentinel errors in errors.go.
// Secrets are checked separately by ValidateSecrets.
func (c *Config) Validate() error {
	switch c.SearchProvider {
	case SearchProviderTavily, SearchProviderBrave:
	default:
		return ErrUnknownSearchProvider
	}

	switch c.CompletionProvider {
	case CompletionProviderOpenAI, CompletionProviderAnthropic:
	default:
		return ErrUnknownCompletionProvider
	}

	if c.SearchTimeout <= 0 || c.CompletionTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxResultsCeiling <= 0 {
		return ErrInvalidMaxResultsCeiling
	}

	if c.Defaults.MaxResults <= 0 || c.Defaults.MaxResults > c.MaxResultsCeiling {
		return ErrInvalidDefaultMaxResults
	}

	if c.PromptEvidenceBudget <= 0 {
		return ErrInvalidPromptBudget
	}

	if c.CompletionMaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return ErrInvalidTemperature
	}

	if c.ProxyAddress != "" && !IsValidHostPort(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	if c.ListenAddress != "" && !IsValidHostPort(c.ListenAddress) {
		return ErrInvalidListenAddress
	}

	return nil
}

// IsValidHostPort checks if address is in "host:port" form with a port
// between 1 and 65535. The host may be empty only for listen addresses
// like ":8501".
func IsValidHostPort(address string) bool {
	_, port, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
