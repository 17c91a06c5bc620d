package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/riskbrief/internal/collector"
	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/llm"
	rblog "github.com/nao1215/riskbrief/internal/log"
	"github.com/nao1215/riskbrief/internal/pipeline"
	"github.com/nao1215/riskbrief/internal/search"
	"github.com/nao1215/riskbrief/internal/transport"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config path from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig builds the configuration from defaults, the config file and the
// global flags. Secrets are loaded separately by loadSecrets once the
// command has applied its own flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	cfg := config.NewConfig()
	if err := cfg.Load(getConfigFlag(cmd)); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// finishConfig validates cfg and reads the provider keys.
func finishConfig(cfg *config.Config, lookup func(string) (string, bool)) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.LoadSecrets(lookup); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return nil
}

// setupLogger creates the redacting logger. Logs go to w so that report
// output on stdout stays clean.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return rblog.NewSecureJSONLogger(w, verbose)
	}
	return rblog.NewSecureLogger(w, verbose)
}

// newTransport creates the outbound client and warns when a configured proxy
// does not answer as SOCKS5.
func newTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*transport.Client, error) {
	client, err := transport.NewClient(transport.Options{
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if status := client.CheckProxy(ctx); status.Error() != nil {
		logger.Warn("proxy check failed, provider calls will likely fail",
			"proxy", client.ProxyAddress(),
			"status", status.String(),
		)
	}
	return client, nil
}

// buildRunner wires the search provider, the completion provider and the
// pipeline for cfg.
func buildRunner(cfg *config.Config, client *transport.Client, logger *slog.Logger) (*pipeline.Runner, error) {
	httpClient := client.NewHTTPClient()

	searcher, err := search.NewSearcher(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	completer, err := llm.NewCompleter(cfg, httpClient)
	if err != nil {
		return nil, err
	}

	retriever := search.NewRetriever(searcher, cfg.SearchTimeout, logger)
	synthesizer := llm.NewSynthesizer(completer, cfg.CompletionTimeout, cfg.PromptEvidenceBudget,
		llm.WithLogger(logger),
		llm.WithModelName(cfg.Model()),
	)

	logger.Debug("providers configured",
		"search", searcher.Name(),
		"completion", completer.Name(),
		"model", cfg.Model(),
	)

	return pipeline.NewRunner(retriever, synthesizer, collector.LimitsFromConfig(cfg),
		pipeline.WithRunnerLogger(logger)), nil
}
