package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for riskbrief.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riskbrief",
		Short: "Climate risk and InsurTech research reports from trusted sources",
		Long: `riskbrief turns a research question into a structured report on climate
risk and insurance technology. Each run performs one web search, optionally
restricted to a list of trusted domains, and one language model completion
that synthesizes the results.

Provider keys are read from the environment (or a .env file):
  TAVILY_API_KEY or BRAVE_API_KEY       search provider
  OPENAI_API_KEY or ANTHROPIC_API_KEY   completion provider`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .riskbrief, XDG config dir or home directory)")

	cmd.AddCommand(NewResearchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
