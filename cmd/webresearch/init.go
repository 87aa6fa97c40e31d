package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/webresearch/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/webresearch.yml templates/urls.txt templates/keywords.txt
var starterTemplates embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold the webresearch input files",
		Long: `Init creates the starter files a research run reads:

  .webresearch.yml     tool configuration with documented defaults
  inputs/urls.txt      seed URL list (one URL per line)
  inputs/keywords.txt  keyword list (term : description per line)

Edit the two input files, then start a run with 'webresearch run'.

Examples:
  # Scaffold into the current directory
  webresearch init

  # Scaffold into a project directory
  webresearch init -d myresearch

  # Overwrite existing files
  webresearch init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("dir", "d", ".",
		"Directory to scaffold the input files into")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	files := []struct {
		template string
		path     string
	}{
		{"templates/webresearch.yml", filepath.Join(dir, config.DefaultConfigFile)},
		{"templates/urls.txt", filepath.Join(dir, config.DefaultURLsFile)},
		{"templates/keywords.txt", filepath.Join(dir, config.DefaultKeywordsFile)},
	}

	// Check for collisions up front so a partial scaffold never happens
	if !force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return fmt.Errorf("%s already exists (use -f to overwrite)", f.path)
			}
		}
	}

	for _, f := range files {
		content, err := starterTemplates.ReadFile(f.template)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}

		// Create parent directories if needed
		if parent := filepath.Dir(f.path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		}

		if err := os.WriteFile(f.path, content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}

		fmt.Printf("Created %s\n", f.path)
	}

	fmt.Println("\nAdd seed URLs to inputs/urls.txt and keywords to inputs/keywords.txt,")
	fmt.Println("then start a run:")
	fmt.Println("  webresearch run")

	return nil
}
