package collector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/model"
	"golang.org/x/net/idna"
)

// Input is the raw, unvalidated submission.
type Input struct {
	// Query is the research question.
	Query string

	// TrustedDomains holds domain entries. Each entry may itself be a comma
	// or newline separated list, as typed into a text area. A nil slice
	// selects the configured default domains; a non-nil empty slice means
	// the search is unrestricted.
	TrustedDomains []string

	// FocusArea is a focus area slug or label. Empty selects the default.
	FocusArea string

	// MaxResults is the requested result count in decimal. Empty selects
	// the default.
	MaxResults string

	// ReportStyle is a report style slug or label. Empty selects the default.
	ReportStyle string

	// SearchDepth is "basic" or "advanced". Empty selects the default.
	SearchDepth string
}

// Limits are the process-level bounds and defaults applied to every input.
type Limits struct {
	// MaxResultsCeiling is the largest accepted result count.
	MaxResultsCeiling int

	// Defaults fill in the fields the input leaves empty.
	Defaults config.FormDefaults
}

// LimitsFromConfig extracts the collection limits from the configuration.
func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		MaxResultsCeiling: cfg.MaxResultsCeiling,
		Defaults:          cfg.Defaults,
	}
}

// Collect validates in and builds the settings for one run.
func Collect(in Input, limits Limits) (model.ResearchSettings, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return model.ResearchSettings{}, model.NewConfigurationError("please enter a research query", nil)
	}

	maxResults, err := parseMaxResults(in.MaxResults, limits)
	if err != nil {
		return model.ResearchSettings{}, err
	}

	focus := limits.Defaults.FocusArea
	if strings.TrimSpace(in.FocusArea) != "" {
		focus, err = model.ParseFocusArea(in.FocusArea)
		if err != nil {
			return model.ResearchSettings{}, model.NewConfigurationError(
				fmt.Sprintf("unknown focus area %q", strings.TrimSpace(in.FocusArea)), err)
		}
	}

	style := limits.Defaults.ReportStyle
	if strings.TrimSpace(in.ReportStyle) != "" {
		style, err = model.ParseReportStyle(in.ReportStyle)
		if err != nil {
			return model.ResearchSettings{}, model.NewConfigurationError(
				fmt.Sprintf("unknown report style %q", strings.TrimSpace(in.ReportStyle)), err)
		}
	}

	depth := limits.Defaults.SearchDepth
	if strings.TrimSpace(in.SearchDepth) != "" {
		depth, err = model.ParseSearchDepth(in.SearchDepth)
		if err != nil {
			return model.ResearchSettings{}, model.NewConfigurationError(
				fmt.Sprintf("unknown search depth %q", strings.TrimSpace(in.SearchDepth)), err)
		}
	}

	raw := in.TrustedDomains
	if raw == nil {
		raw = limits.Defaults.TrustedDomains
	}
	domains, err := NormalizeDomains(raw)
	if err != nil {
		return model.ResearchSettings{}, err
	}

	return model.NewResearchSettings(query, domains, focus, maxResults, style, depth), nil
}

// parseMaxResults parses the requested count and checks it against the ceiling.
func parseMaxResults(raw string, limits Limits) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return limits.Defaults.MaxResults, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewConfigurationError(fmt.Sprintf("max results %q is not a whole number", raw), err)
	}
	if n < 1 || n > limits.MaxResultsCeiling {
		return 0, model.NewConfigurationError(
			fmt.Sprintf("max results must be between 1 and %d, got %d", limits.MaxResultsCeiling, n), nil)
	}
	return n, nil
}

// NormalizeDomains splits, cleans and validates domain entries.
// The result is lower-case ASCII (IDNA), free of schemes, paths and ports,
// and de-duplicated in first-seen order.
func NormalizeDomains(entries []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		for _, field := range splitDomainList(entry) {
			d, err := normalizeDomain(field)
			if err != nil {
				return nil, model.NewConfigurationError(fmt.Sprintf("invalid trusted domain %q", field), err)
			}
			if seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out, nil
}

// splitDomainList splits on commas, semicolons and any whitespace.
func splitDomainList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\t', '\r', '\n':
			return true
		}
		return false
	})
}

// normalizeDomain reduces a single entry such as "https://www.Reuters.com/world"
// to "www.reuters.com".
func normalizeDomain(s string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, "@"); i >= 0 {
		d = d[i+1:]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimPrefix(d, "*.")
	d = strings.TrimSuffix(d, ".")

	if d == "" {
		return "", errors.New("empty domain")
	}
	ascii, err := idna.Lookup.ToASCII(d)
	if err != nil {
		return "", err
	}
	if !strings.Contains(ascii, ".") {
		return "", fmt.Errorf("domain %q has no top-level domain", ascii)
	}
	return ascii, nil
}
