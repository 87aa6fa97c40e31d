// Package main provides the entry point for the webresearch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webresearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webresearch",
		Short: "Keyword-driven research tool for the web",
		Long: `webresearch crawls a set of seed URLs, scores every collected page
against your research keywords, and assembles per-keyword summaries into a
single report (markdown, JSON, or plain text).

Start with 'webresearch init' to scaffold the input files, edit
inputs/urls.txt and inputs/keywords.txt, then launch 'webresearch run'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
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
