package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the research form in the browser",
		Long: `Serve starts a local web server with the research form.

Submissions are processed one at a time; a second submission waits until the
first report is shown. Stop the server with Ctrl+C.

Examples:
  # Serve on the configured address (default 127.0.0.1:8501)
  riskbrief serve

  # Serve on another port with JSON logs
  riskbrief serve --listen 127.0.0.1:9000 --log-json`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "",
		"Listen address in host:port form (default from config, "+config.DefaultListenAddress+")")
	cmd.Flags().Bool("log-json", false, "Write logs as JSON")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}
	if err := finishConfig(cfg, nil); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, logJSON)

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

	srv, err := server.New(server.Options{Config: cfg, Runner: runner, Logger: logger})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "riskbrief is serving the research form at http://%s (Ctrl+C to stop)\n", cfg.ListenAddress)
	return srv.ListenAndServe(ctx)
}
