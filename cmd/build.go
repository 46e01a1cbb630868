package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/processor"
	"go.uber.org/zap"
)

var buildDir string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the programme index from scraped JSON records",
	Long: "Loads every *.json programme record under the programmes directory, drops the\n" +
		"existing collection and embeds the records into a fresh one.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var bar *progressbar.ProgressBar
		e, err := newEnv(ctx, envOptions{onBatch: func(done, total int) {
			if bar == nil {
				bar = getProgressBar(total, "Embedding documents...")
			}
			_ = bar.Set(done)
		}})
		if err != nil {
			return err
		}
		defer e.Close()

		dir := buildDir
		if dir == "" {
			dir = e.cfg.Build.ProgrammesDir
		}
		color.Blue("\nLoading programme records from %s\n", dir)

		results, err := processor.Load(dir)
		if err != nil {
			return err
		}
		e.log.Info("records loaded", zap.String("dir", dir), zap.Int("files", len(results)))

		report, err := e.matcher.Build(ctx, results)
		if bar != nil {
			_ = bar.Finish()
		}
		printSkips(report.Skipped)
		if err != nil {
			return fmt.Errorf("index build failed: %w", err)
		}

		st := e.matcher.Status()
		color.Green("\n✓ Indexed %d programmes into %q (build %s)\n", st.Entries, e.cfg.Database.Collection, st.BuildID)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a persisted index is available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := newEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.attach(cmd.Context()); err != nil {
			color.Yellow("%s: %v\n", e.matcher.Status().State, err)
			return nil
		}
		st := e.matcher.Status()
		color.Green("%s: %d entries in %q\n", st.State, st.Entries, e.cfg.Database.Collection)
		return nil
	},
}

func printSkips(skipped []models.IngestResult) {
	if len(skipped) == 0 {
		return
	}
	counts := map[models.SkipReason]int{}
	for _, s := range skipped {
		counts[s.Skip]++
	}
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	color.Yellow("\nSkipped %d records:\n", len(skipped))
	for _, r := range reasons {
		color.Yellow("  %-16s %d\n", r, counts[models.SkipReason(r)])
	}
}

func init() {
	buildCmd.Flags().StringVar(&buildDir, "dir", "", "Directory of programme JSON files (overrides build.programmes_dir)")
	rootCmd.AddCommand(buildCmd, statusCmd)
}
