package collector

import (
	"errors"
	"slices"
	"testing"

	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/model"
)

func testLimits() Limits {
	return LimitsFromConfig(config.NewConfig())
}

// TestCollect tests building settings from raw input.
func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("empty input takes every default", func(t *testing.T) {
		t.Parallel()

		got, err := Collect(Input{Query: "  parametric flood insurance  "}, testLimits())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Query() != "parametric flood insurance" {
			t.Errorf("expected trimmed query, got %q", got.Query())
		}
		if got.MaxResults() != config.DefaultMaxResults {
			t.Errorf("expected default max results, got %d", got.MaxResults())
		}
		if got.FocusArea() != model.FocusPhysicalRisks {
			t.Errorf("expected default focus area, got %v", got.FocusArea())
		}
		if got.ReportStyle() != model.StyleExecutive {
			t.Errorf("expected default style, got %v", got.ReportStyle())
		}
		if got.SearchDepth() != model.DepthAdvanced {
			t.Errorf("expected default depth, got %v", got.SearchDepth())
		}
		want := []string{"insurancejournal.com", "artemis.bm", "reuters.com"}
		if !slices.Equal(got.TrustedDomains(), want) {
			t.Errorf("expected default domains %v, got %v", want, got.TrustedDomains())
		}
	})

	t.Run("explicit values are used", func(t *testing.T) {
		t.Parallel()

		got, err := Collect(Input{
			Query:          "cat bond spreads",
			TrustedDomains: []string{"artemis.bm, swissre.com"},
			FocusArea:      "Market Trends",
			MaxResults:     "12",
			ReportStyle:    "bullet",
			SearchDepth:    "basic",
		}, testLimits())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.FocusArea() != model.FocusMarketTrends || got.ReportStyle() != model.StyleBullet ||
			got.SearchDepth() != model.DepthBasic || got.MaxResults() != 12 {
			t.Errorf("unexpected settings: %+v", got)
		}
		if !slices.Equal(got.TrustedDomains(), []string{"artemis.bm", "swissre.com"}) {
			t.Errorf("unexpected domains %v", got.TrustedDomains())
		}
	})

	t.Run("empty non-nil domain list is unrestricted", func(t *testing.T) {
		t.Parallel()

		got, err := Collect(Input{Query: "q", TrustedDomains: []string{}}, testLimits())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Restricted() {
			t.Errorf("expected unrestricted settings, got %v", got.TrustedDomains())
		}
	})

	t.Run("max results at the bounds are accepted", func(t *testing.T) {
		t.Parallel()

		for _, n := range []string{"1", "20"} {
			if _, err := Collect(Input{Query: "q", MaxResults: n}, testLimits()); err != nil {
				t.Errorf("max results %s: unexpected error: %v", n, err)
			}
		}
	})

	errorCases := []struct {
		name  string
		input Input
	}{
		{name: "empty query", input: Input{Query: ""}},
		{name: "whitespace query", input: Input{Query: " \t\n "}},
		{name: "zero max results", input: Input{Query: "q", MaxResults: "0"}},
		{name: "negative max results", input: Input{Query: "q", MaxResults: "-3"}},
		{name: "max results above ceiling", input: Input{Query: "q", MaxResults: "21"}},
		{name: "non-numeric max results", input: Input{Query: "q", MaxResults: "five"}},
		{name: "unknown focus area", input: Input{Query: "q", FocusArea: "astrology"}},
		{name: "unknown report style", input: Input{Query: "q", ReportStyle: "haiku"}},
		{name: "unknown search depth", input: Input{Query: "q", SearchDepth: "deep"}},
		{name: "invalid domain", input: Input{Query: "q", TrustedDomains: []string{"not a_domain"}}},
		{name: "domain without tld", input: Input{Query: "q", TrustedDomains: []string{"localhost"}}},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Collect(tc.input, testLimits())
			if !errors.Is(err, model.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			var re *model.RunError
			if !errors.As(err, &re) || re.Reason == "" {
				t.Errorf("expected a RunError with a reason, got %#v", err)
			}
		})
	}
}

// TestNormalizeDomains tests domain cleaning.
func TestNormalizeDomains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil input", in: nil, want: nil},
		{name: "lower-cased and trimmed", in: []string{"  Reuters.COM "}, want: []string{"reuters.com"}},
		{name: "scheme and path stripped", in: []string{"https://www.artemis.bm/news/?page=2"}, want: []string{"www.artemis.bm"}},
		{name: "port stripped", in: []string{"naic.gov:443"}, want: []string{"naic.gov"}},
		{name: "wildcard and trailing dot stripped", in: []string{"*.lloyds.com."}, want: []string{"lloyds.com"}},
		{name: "comma and newline lists", in: []string{"a.com,b.com\nc.com;d.com"}, want: []string{"a.com", "b.com", "c.com", "d.com"}},
		{name: "duplicates removed in order", in: []string{"b.com", "a.com", "B.com", "https://a.com"}, want: []string{"b.com", "a.com"}},
		{name: "unicode domain converted", in: []string{"münchen.de"}, want: []string{"xn--mnchen-3ya.de"}},
		{name: "blank entries skipped", in: []string{"", " , ", "tnfd.global"}, want: []string{"tnfd.global"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeDomains(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("NormalizeDomains(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestCollectDoesNotAliasInput tests that later changes to the input slice
// do not leak into the settings.
func TestCollectDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	domains := []string{"artemis.bm"}
	got, err := Collect(Input{Query: "q", TrustedDomains: domains}, testLimits())
	if err != nil {
		t.Fatal(err)
	}
	domains[0] = "evil.example"
	if got.TrustedDomains()[0] != "artemis.bm" {
		t.Error("settings changed after the input slice was modified")
	}
}
