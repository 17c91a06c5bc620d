package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nao1215/riskbrief/internal/collector"
	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/report"
	"github.com/spf13/cobra"
)

// errRunFailed is returned when a research run ends in its error state.
var errRunFailed = errors.New("research failed")

// researchOptions holds the research command flags.
type researchOptions struct {
	domains      []string
	unrestricted bool
	focus        string
	maxResults   string
	style        string
	depth        string
	provider     string
	jsonReport   bool
	markdown     bool
	output       string
}

// NewResearchCmd creates the research command.
func NewResearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research <query...>",
		Short: "Research a question and print the report",
		Long: `Research runs one search and one completion for the query and prints the
report. Words after the command are joined into the query.

Without --domain the configured default trusted domains are used.
Use --any-domain to search the whole web.

Examples:
  # Research with the default trusted sources
  riskbrief research "How are insurers pricing wildfire risk in California?"

  # Restrict the search to two domains and ask for key points
  riskbrief research -d artemis.bm -d swissre.com --style bullet "cat bond issuance 2025"

  # Save a Markdown report
  riskbrief research --markdown -o reports/flood.md "flood protection gap in Europe"

  # Machine-readable output
  riskbrief research --json --focus market-trends "parametric insurance adoption"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResearchCmd,
	}

	cmd.Flags().StringArrayP("domain", "d", nil,
		"Trusted domain to restrict the search to (repeatable, comma separated lists allowed)")
	cmd.Flags().Bool("any-domain", false,
		"Search the whole web instead of the default trusted domains")
	cmd.Flags().StringP("focus", "f", "",
		"Focus area: physical-risks, transition-risks, insurtech-solutions, regulatory-policies, market-trends")
	cmd.Flags().StringP("max-results", "n", "",
		"Number of search results to use (default from config)")
	cmd.Flags().StringP("style", "s", "",
		"Report style: executive, detailed, bullet")
	cmd.Flags().String("depth", "",
		"Search depth: basic or advanced")
	cmd.Flags().String("search-provider", "",
		"Search provider override: tavily or brave")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("domain", "any-domain")

	return cmd
}

// parseResearchFlags reads the research flags.
func parseResearchFlags(cmd *cobra.Command) (researchOptions, error) {
	var opts researchOptions
	var err error

	if opts.domains, err = cmd.Flags().GetStringArray("domain"); err != nil {
		return opts, err
	}
	if opts.unrestricted, err = cmd.Flags().GetBool("any-domain"); err != nil {
		return opts, err
	}
	if opts.focus, err = cmd.Flags().GetString("focus"); err != nil {
		return opts, err
	}
	if opts.maxResults, err = cmd.Flags().GetString("max-results"); err != nil {
		return opts, err
	}
	if opts.style, err = cmd.Flags().GetString("style"); err != nil {
		return opts, err
	}
	if opts.depth, err = cmd.Flags().GetString("depth"); err != nil {
		return opts, err
	}
	if opts.provider, err = cmd.Flags().GetString("search-provider"); err != nil {
		return opts, err
	}
	if opts.jsonReport, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	return opts, nil
}

// input builds the collector input for query.
func (o researchOptions) input(query string) collector.Input {
	in := collector.Input{
		Query:       query,
		FocusArea:   o.focus,
		MaxResults:  o.maxResults,
		ReportStyle: o.style,
		SearchDepth: o.depth,
	}
	switch {
	case o.unrestricted:
		in.TrustedDomains = []string{}
	case len(o.domains) > 0:
		in.TrustedDomains = o.domains
	}
	return in
}

// runResearchCmd executes the research command.
func runResearchCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseResearchFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.SearchProvider = strings.ToLower(strings.TrimSpace(opts.provider))
	}
	if err := finishConfig(cfg, nil); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, false)

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newTransport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	runner, err := buildRunner(cfg, client, logger)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(cmd.OutOrStdout(), opts.output)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newReportWriter(output, opts, cfg)
	run, err := runner.Run(ctx, opts.input(strings.Join(args, " ")), writer)
	if err != nil {
		return err
	}
	if opts.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", opts.output)
	}
	if run.Failed() {
		return fmt.Errorf("%w: %s", errRunFailed, run.ErrorMessage)
	}
	return nil
}

// newReportWriter selects the writer for the requested format.
func newReportWriter(output io.Writer, opts researchOptions, cfg *config.Config) report.Writer {
	switch {
	case opts.jsonReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case opts.markdown:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// openOutput returns the report destination: path when set, stdout otherwise.
// Report files are created with owner-only permissions.
func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// contextOrBackground returns ctx, or context.Background() when ctx is nil.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
