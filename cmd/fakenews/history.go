package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/thinkscotty/fakenews/internal/database"
	"github.com/thinkscotty/fakenews/internal/models"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the run ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Path == "" {
			return errors.New("run ledger is disabled: set database.path in the config file")
		}

		db, err := database.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open run ledger: %w", err)
		}
		defer db.Close()

		runs, err := db.RecentRuns(flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		stats, err := db.UsageStats()
		if err != nil {
			return fmt.Errorf("read stats: %w", err)
		}

		writeHistory(cmd.OutOrStdout(), runs, stats)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "number of runs to show")
}

func writeHistory(w io.Writer, runs []models.Run, stats models.UsageStats) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("RUN", "STARTED", "STATUS", "DURATION", "URL")
		for _, r := range runs {
			t.Row(r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, runDuration(r), r.URL)
		}
		fmt.Fprintln(w, t.Render())
	}

	fmt.Fprintf(w, "Runs: %d (%d failed)  Model calls: %d (%d failed)  Tokens: %d\n",
		stats.TotalRuns, stats.FailedRuns, stats.TotalCalls, stats.FailedCalls, stats.TotalTokensUsed)
}

func runDuration(r models.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}
