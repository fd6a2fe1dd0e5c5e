package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yousync/yousync/internal/core/store"
)

var statusStateDir string

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <owner> <repo> <project-id>",
	Short: "Show the recorded correspondences for one sync scope",
	Long: `Show every GitHub issue to YouTrack issue correspondence recorded for
the given repository and project, with the snapshot state and the time of the
last successful sync. Diagnostics only; the sync itself never needs this.`,
	Args: cobra.ExactArgs(3),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusStateDir, "state-dir", "", "Directory for correspondence state (overrides config)")
}

func runStatus(cmd *cobra.Command, args []string) {
	owner, repo, projectID := args[0], args[1], args[2]

	cfg := loadConfig()
	if statusStateDir != "" {
		cfg.StateDir = statusStateDir
	}

	st, err := store.NewFileStore(cfg.StateDir, owner, repo, projectID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	records, err := st.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Printf("No correspondences recorded for %s/%s -> %s\n", owner, repo, projectID)
		return
	}

	fmt.Printf("%d correspondences for %s/%s -> %s\n\n", len(records), owner, repo, projectID)
	fmt.Printf("%-14s %-12s %-10s %-20s %s\n", "SOURCE", "DESTINATION", "STATE", "SYNCED", "SUMMARY")
	for _, rec := range records {
		fmt.Printf("%-14d %-12s %-10s %-20s %s\n",
			rec.SourceID,
			rec.DestinationID,
			rec.Snapshot.State,
			rec.SyncedAt.Local().Format(time.DateTime),
			truncate(rec.Snapshot.Summary, 60),
		)
	}
}

// truncate shortens s for single-line display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
