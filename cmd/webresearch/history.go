package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/webresearch/internal/config"
	"github.com/nao1215/webresearch/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists and re-renders reports archived by 'run --save'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or re-render archived research reports",
		Long: `History works with the run archive that 'webresearch run --save' fills.

Without arguments it lists the archived runs, newest first. With a run ID
it re-renders that run's report in any format; a unique prefix of the ID
is enough, like a git commit hash.

Only finished reports are archived. Crawl state is never stored, so a
re-rendered report is exactly the one the original run produced.

Examples:
  # List archived runs
  webresearch history

  # Re-render a run in the terminal
  webresearch history 4f2c9b1e

  # Re-render as markdown into a file
  webresearch history 4f2c9b1e -f markdown -o outputs/old-run.md

  # Delete an archived run
  webresearch history --delete 4f2c9b1e`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("format", "f", config.FormatSimple,
		"Report format: markdown, json, or simple")
	cmd.Flags().StringP("output", "o", "",
		"Write the rendered report to this file instead of stdout")
	cmd.Flags().Bool("delete", false,
		"Delete the archived run instead of rendering it")
	cmd.Flags().String("db-path", "",
		"Run archive directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-path")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	deleteRun, err := cmd.Flags().GetBool("delete")
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if len(args) > 0 && !deleteRun {
		switch format {
		case config.FormatMarkdown, config.FormatJSON, config.FormatSimple:
		default:
			return fmt.Errorf("unknown report format: %q (markdown, json, or simple)", format)
		}
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	// History only reads the archive, so it never creates one: asking
	// about runs that were never saved must not leave an empty database
	// file behind.
	archive, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrArchiveNotFound) {
		if len(args) == 0 {
			fmt.Println("No archived runs found.")
			fmt.Println("\nUse 'webresearch run --save' to archive a research run.")
			return nil
		}
		return fmt.Errorf("no archived runs exist yet (use 'webresearch run --save' to create the archive)")
	}
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer archive.Close()

	ctx := context.Background()

	if len(args) == 0 {
		return listArchivedRuns(ctx, archive)
	}
	if deleteRun {
		return deleteArchivedRun(ctx, archive, args[0])
	}
	return renderArchivedRun(ctx, archive, args[0], format, outputPath, getVerboseFlag(cmd))
}

// listArchivedRuns lists all archived runs, newest first.
func listArchivedRuns(ctx context.Context, archive *database.Archive) error {
	runs, err := archive.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No archived runs found.")
		fmt.Println("\nUse 'webresearch run --save' to archive a research run.")
		return nil
	}

	fmt.Printf("Archived research runs (%d):\n\n", len(runs))
	fmt.Printf("  %-10s  %-20s  %-7s  %-14s  %s\n", "RUN", "DATE", "PAGES", "GROUPS", "KEYWORDS")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, meta := range runs {
		fmt.Printf("  %-10s  %-20s  %-7d  %-14s  %s\n",
			shortRunID(meta.RunID),
			meta.GeneratedAt.Format("2006-01-02 15:04:05"),
			meta.PagesVisited,
			formatGroupCount(meta),
			meta.Keywords,
		)
	}

	fmt.Println("\nUse 'webresearch history <run-id>' to re-render a report.")
	fmt.Println("Use 'webresearch history --delete <run-id>' to remove one.")

	return nil
}

// formatGroupCount renders the group column, marking runs where some
// generative summaries fell back to extractive ones.
func formatGroupCount(meta database.RunMetadata) string {
	if meta.DegradedGroups > 0 {
		return fmt.Sprintf("%d (%d degraded)", meta.GroupCount, meta.DegradedGroups)
	}
	return strconv.Itoa(meta.GroupCount)
}

// renderArchivedRun re-renders one archived report.
func renderArchivedRun(ctx context.Context, archive *database.Archive, runID, format, outputPath string, verbose bool) error {
	researchReport, err := archive.GetReport(ctx, runID)
	if err != nil {
		return err
	}
	if researchReport == nil {
		return fmt.Errorf("no archived run matches %q (use 'webresearch history' to list runs)", runID)
	}

	var output *os.File
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	if err := writeReport(output, format, researchReport, verbose); err != nil {
		return err
	}

	if outputPath != "" {
		fmt.Printf("Report written to %s\n", outputPath)
	}
	return nil
}

// deleteArchivedRun removes one archived run. The run ID goes through
// the same lookup the render path uses, so a unique prefix works here
// too.
func deleteArchivedRun(ctx context.Context, archive *database.Archive, runID string) error {
	researchReport, err := archive.GetReport(ctx, runID)
	if err != nil {
		return err
	}
	if researchReport == nil {
		return fmt.Errorf("no archived run matches %q (use 'webresearch history' to list runs)", runID)
	}

	if err := archive.DeleteRun(ctx, researchReport.RunID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	fmt.Printf("Deleted run %s\n", shortRunID(researchReport.RunID))
	return nil
}
