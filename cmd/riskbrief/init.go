package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/riskbrief/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/riskbrief.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a riskbrief configuration file",
		Long: `Init writes a commented .riskbrief configuration file.

The generated file documents every option: search and completion providers,
timeouts, cost limits, default form values and the trusted source catalog.
API keys are not stored in it.

Examples:
  # Create .riskbrief in the current directory
  riskbrief init

  # Create the file in the XDG config directory
  riskbrief init -o ~/.config/riskbrief/config.yaml

  # Force overwrite an existing file
  riskbrief init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/riskbrief.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nSet your provider keys in the environment or a .env file:")
	fmt.Fprintf(out, "  %s or %s\n", config.EnvTavilyAPIKey, config.EnvBraveAPIKey)
	fmt.Fprintf(out, "  %s or %s\n", config.EnvOpenAIAPIKey, config.EnvAnthropicAPIKey)
	return nil
}
