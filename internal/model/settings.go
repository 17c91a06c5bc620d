package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FocusArea is the research theme that frames the report.
// The set of values is fixed; any other value is a configuration error.
type FocusArea int

const (
	// FocusPhysicalRisks covers acute and chronic physical climate hazards.
	FocusPhysicalRisks FocusArea = iota

	// FocusTransitionRisks covers policy, technology and market shifts
	// driven by the move to a low-carbon economy.
	FocusTransitionRisks

	// FocusInsurTechSolutions covers technology products for underwriting,
	// claims and risk transfer.
	FocusInsurTechSolutions

	// FocusRegulatoryPolicies covers supervisory and disclosure regimes.
	FocusRegulatoryPolicies

	// FocusMarketTrends covers pricing, capacity and capital flows.
	FocusMarketTrends
)

// focusAreaInfo holds the wire slug, display label and Go-style name for a focus area.
type focusAreaInfo struct {
	slug  string
	label string
	name  string
}

var focusAreas = []focusAreaInfo{
	FocusPhysicalRisks:      {slug: "physical-risks", label: "Climate Physical Risks", name: "PhysicalRisks"},
	FocusTransitionRisks:    {slug: "transition-risks", label: "Transition Risks", name: "TransitionRisks"},
	FocusInsurTechSolutions: {slug: "insurtech-solutions", label: "InsurTech Solutions", name: "InsurTechSolutions"},
	FocusRegulatoryPolicies: {slug: "regulatory-policies", label: "Regulatory Policies", name: "RegulatoryPolicies"},
	FocusMarketTrends:       {slug: "market-trends", label: "Market Trends", name: "MarketTrends"},
}

// FocusAreas returns every focus area in display order.
func FocusAreas() []FocusArea {
	out := make([]FocusArea, len(focusAreas))
	for i := range focusAreas {
		out[i] = FocusArea(i)
	}
	return out
}

// Valid reports whether f is one of the enumerated focus areas.
func (f FocusArea) Valid() bool {
	return f >= 0 && int(f) < len(focusAreas)
}

// String returns the wire slug, e.g. "physical-risks".
func (f FocusArea) String() string {
	if !f.Valid() {
		return "unknown"
	}
	return focusAreas[f].slug
}

// Label returns the human-readable name shown in forms and reports.
func (f FocusArea) Label() string {
	if !f.Valid() {
		return "Unknown"
	}
	return focusAreas[f].label
}

// MarshalText encodes the focus area as its slug.
func (f FocusArea) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid focus area %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a focus area using ParseFocusArea.
func (f *FocusArea) UnmarshalText(text []byte) error {
	parsed, err := ParseFocusArea(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFocusArea accepts the slug, the display label, or the Go-style name,
// ignoring case and surrounding whitespace.
func ParseFocusArea(s string) (FocusArea, error) {
	key := normalizeEnumKey(s)
	for i, info := range focusAreas {
		if key == normalizeEnumKey(info.slug) ||
			key == normalizeEnumKey(info.label) ||
			key == normalizeEnumKey(info.name) {
			return FocusArea(i), nil
		}
	}
	return 0, fmt.Errorf("unknown focus area %q", s)
}

// ReportStyle controls the shape and length of the generated report.
type ReportStyle int

const (
	// StyleExecutive asks for a short brief aimed at senior readers.
	StyleExecutive ReportStyle = iota

	// StyleDetailed asks for a long-form analysis with more context per finding.
	StyleDetailed

	// StyleBullet asks for terse bullet points under each section.
	StyleBullet
)

type reportStyleInfo struct {
	slug        string
	label       string
	instruction string
}

var reportStyles = []reportStyleInfo{
	StyleExecutive: {
		slug:        "executive",
		label:       "Executive Brief",
		instruction: "Write a concise executive brief of at most 500 words. Lead with the conclusion and keep each section to a short paragraph.",
	},
	StyleDetailed: {
		slug:        "detailed",
		label:       "Detailed Analysis",
		instruction: "Write a detailed analysis. Explain the reasoning behind each finding, quantify exposure where the evidence allows, and note uncertainties.",
	},
	StyleBullet: {
		slug:        "bullet",
		label:       "Key Points",
		instruction: "Write every section as terse bullet points. Avoid prose paragraphs.",
	},
}

// ReportStyles returns every report style in display order.
func ReportStyles() []ReportStyle {
	out := make([]ReportStyle, len(reportStyles))
	for i := range reportStyles {
		out[i] = ReportStyle(i)
	}
	return out
}

// Valid reports whether s is one of the enumerated report styles.
func (s ReportStyle) Valid() bool {
	return s >= 0 && int(s) < len(reportStyles)
}

// String returns the wire slug, e.g. "executive".
func (s ReportStyle) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return reportStyles[s].slug
}

// Label returns the human-readable name.
func (s ReportStyle) Label() string {
	if !s.Valid() {
		return "Unknown"
	}
	return reportStyles[s].label
}

// Instruction returns the formatting instruction given to the completion model.
func (s ReportStyle) Instruction() string {
	if !s.Valid() {
		return ""
	}
	return reportStyles[s].instruction
}

// MarshalText encodes the style as its slug.
func (s ReportStyle) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid report style %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a style using ParseReportStyle.
func (s *ReportStyle) UnmarshalText(text []byte) error {
	parsed, err := ParseReportStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseReportStyle accepts the slug or the display label, ignoring case.
func ParseReportStyle(v string) (ReportStyle, error) {
	key := normalizeEnumKey(v)
	for i, info := range reportStyles {
		if key == normalizeEnumKey(info.slug) || key == normalizeEnumKey(info.label) {
			return ReportStyle(i), nil
		}
	}
	return 0, fmt.Errorf("unknown report style %q", v)
}

// SearchDepth is the search provider's effort level.
type SearchDepth int

const (
	// DepthBasic is a fast, shallow search.
	DepthBasic SearchDepth = iota

	// DepthAdvanced is a slower search that returns more relevant snippets.
	DepthAdvanced
)

// String returns "basic" or "advanced".
func (d SearchDepth) String() string {
	switch d {
	case DepthBasic:
		return "basic"
	case DepthAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// MarshalText encodes the depth as its name.
func (d SearchDepth) MarshalText() ([]byte, error) {
	if d != DepthBasic && d != DepthAdvanced {
		return nil, fmt.Errorf("invalid search depth %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a depth using ParseSearchDepth.
func (d *SearchDepth) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchDepth(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseSearchDepth parses "basic" or "advanced", ignoring case.
func ParseSearchDepth(s string) (SearchDepth, error) {
	switch normalizeEnumKey(s) {
	case "basic":
		return DepthBasic, nil
	case "advanced":
		return DepthAdvanced, nil
	default:
		return 0, fmt.Errorf("unknown search depth %q", s)
	}
}

// normalizeEnumKey folds case and drops separators so that "Physical Risks",
// "physical-risks" and "PhysicalRisks" compare equal.
func normalizeEnumKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ResearchSettings is the validated configuration of one run.
// Values are only constructed by NewResearchSettings (normally via the
// collector) and cannot be modified afterwards.
type ResearchSettings struct {
	query          string
	trustedDomains []string
	focusArea      FocusArea
	maxResults     int
	reportStyle    ReportStyle
	searchDepth    SearchDepth
}

// NewResearchSettings builds a settings value from already-validated parts.
// The domain slice is copied. Callers that accept user input should go
// through the collector, which performs the validation.
func NewResearchSettings(query string, domains []string, focus FocusArea, maxResults int, style ReportStyle, depth SearchDepth) ResearchSettings {
	var copied []string
	if len(domains) > 0 {
		copied = make([]string, len(domains))
		copy(copied, domains)
	}
	return ResearchSettings{
		query:          query,
		trustedDomains: copied,
		focusArea:      focus,
		maxResults:     maxResults,
		reportStyle:    style,
		searchDepth:    depth,
	}
}

// Query returns the research question.
func (s ResearchSettings) Query() string { return s.query }

// TrustedDomains returns a copy of the domain allow-list.
// An empty result means the search is unrestricted.
func (s ResearchSettings) TrustedDomains() []string {
	if len(s.trustedDomains) == 0 {
		return nil
	}
	out := make([]string, len(s.trustedDomains))
	copy(out, s.trustedDomains)
	return out
}

// Restricted reports whether the search is constrained to an allow-list.
func (s ResearchSettings) Restricted() bool { return len(s.trustedDomains) > 0 }

// FocusArea returns the research theme.
func (s ResearchSettings) FocusArea() FocusArea { return s.focusArea }

// MaxResults returns the upper bound on evidence items.
func (s ResearchSettings) MaxResults() int { return s.maxResults }

// ReportStyle returns the requested report style.
func (s ResearchSettings) ReportStyle() ReportStyle { return s.reportStyle }

// SearchDepth returns the requested search depth.
func (s ResearchSettings) SearchDepth() SearchDepth { return s.searchDepth }

// settingsJSON is the serialized form of ResearchSettings.
type settingsJSON struct {
	Query          string      `json:"query"`
	TrustedDomains []string    `json:"trusted_domains"`
	FocusArea      FocusArea   `json:"focus_area"`
	MaxResults     int         `json:"max_results"`
	ReportStyle    ReportStyle `json:"report_style"`
	SearchDepth    SearchDepth `json:"search_depth"`
}

// MarshalJSON exposes the unexported fields for JSON reports.
func (s ResearchSettings) MarshalJSON() ([]byte, error) {
	domains := s.TrustedDomains()
	if domains == nil {
		domains = []string{}
	}
	return json.Marshal(settingsJSON{
		Query:          s.query,
		TrustedDomains: domains,
		FocusArea:      s.focusArea,
		MaxResults:     s.maxResults,
		ReportStyle:    s.reportStyle,
		SearchDepth:    s.searchDepth,
	})
}
