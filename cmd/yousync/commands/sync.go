package commands

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yousync/yousync/internal/core/config"
	"github.com/yousync/yousync/internal/core/credentials"
	"github.com/yousync/yousync/internal/core/engine"
	"github.com/yousync/yousync/internal/core/store"
	"github.com/yousync/yousync/internal/integrations/github"
	"github.com/yousync/yousync/internal/integrations/youtrack"
	"github.com/yousync/yousync/internal/tui"
)

var (
	syncWorkers  int
	syncStateDir string
	syncNoTUI    bool
)

// syncPhases maps engine phases onto the display names shown in the TUI.
var syncPhases = map[string]string{
	"resolve": "resolve project",
	"fetch":   "fetch issues",
	"sync":    "sync issues",
}

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <owner> <repo> <youtrack-url> <project-query>",
	Short: "Synchronize a repository's issues into a YouTrack project",
	Long: `Synchronize all issues of the GitHub repository <owner>/<repo> into the
YouTrack project best matching <project-query> on <youtrack-url>.

Tokens are taken from YOUSYNC_GITHUB_TOKEN and YOUSYNC_YOUTRACK_TOKEN; when a
variable is unset and the session is interactive, the token is prompted for.

The exit status is zero only when the project resolved and every issue
synchronized; otherwise the failure report is printed and the status is
non-zero.`,
	Args: cobra.ExactArgs(4),
	Run:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "Number of issues to sync in parallel (overrides config)")
	syncCmd.Flags().StringVar(&syncStateDir, "state-dir", "", "Directory for correspondence state (overrides config)")
	syncCmd.Flags().BoolVar(&syncNoTUI, "no-tui", false, "Disable the progress TUI")
}

func runSync(cmd *cobra.Command, args []string) {
	owner, repo, host, query := args[0], args[1], args[2], args[3]
	ctx := context.Background()

	cfg := loadConfig()
	if syncWorkers > 0 {
		cfg.Concurrency = syncWorkers
	}
	if syncStateDir != "" {
		cfg.StateDir = syncStateDir
	}

	// Both tokens are resolved up front, before any API call.
	ghToken, err := credentials.Resolve(credentials.GitHubTokenVar, "GitHub token")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ytToken, err := credentials.Resolve(credentials.YouTrackTokenVar, "YouTrack token")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reader := github.NewClient(ctx, ghToken).WithRetry(cfg.RetryOptions())
	yt, err := youtrack.NewClient(host, ytToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	yt = yt.WithRetry(cfg.RetryOptions())

	open := func(projectID string) (store.Store, error) {
		return store.NewFileStore(cfg.StateDir, owner, repo, projectID)
	}

	eng := engine.New(reader, yt, yt, open, cfg.Concurrency).WithVerbose(verbose)

	if interactive() {
		runSyncTUI(ctx, eng, owner, repo, query)
		return
	}

	report, err := eng.Run(ctx, owner, repo, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(report.Summary())
	if !report.Clean() {
		os.Exit(1)
	}
}

// interactive reports whether the progress TUI should run. CI environments
// and non-terminal sessions get plain output.
func interactive() bool {
	if syncNoTUI {
		return false
	}
	if os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runSyncTUI drives the run under the progress TUI.
func runSyncTUI(ctx context.Context, eng *engine.Engine, owner, repo, query string) {
	events := make(chan engine.Event, 64)
	eng.WithEvents(events)

	statusChan := make(chan tui.StatusMsg)
	phases := []string{"resolve project", "fetch issues", "sync issues"}
	p := tea.NewProgram(tui.NewModel(phases, statusChan))

	go func() {
		for ev := range events {
			statusChan <- tui.StatusMsg{
				Phase:   syncPhases[ev.Phase],
				Status:  ev.Status,
				Message: ev.Message,
			}
		}
	}()

	var (
		report *engine.Report
		runErr error
	)
	go func() {
		report, runErr = eng.Run(ctx, owner, repo, query)
		close(events)
		if runErr != nil {
			p.Send(tui.ResultMsg{Success: false, Output: fmt.Sprintf("Error: %v", runErr)})
			return
		}
		p.Send(tui.ResultMsg{Success: report.Clean(), Output: report.Summary()})
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	if runErr != nil || report == nil || !report.Clean() {
		os.Exit(1)
	}
}

// loadConfig loads the config file if one is found, defaults otherwise.
func loadConfig() *config.Config {
	path := config.FindConfigPath(cfgFile)
	if path == "" {
		if cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error: config file %s not found\n", cfgFile)
			os.Exit(1)
		}
		return config.Default()
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Loaded config from %s\n", path)
	}
	return cfg
}
