package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/publicintelligence/datahub/internal/adapters/driving/tui"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/messages"
	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/services"
	"github.com/publicintelligence/datahub/internal/logger"
)

// tuiLogFile receives log output while the TUI owns the terminal.
const tuiLogFile = "tui.log"

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive catalog browser.

Results update as you type. Facet chips narrow by file type and tag.
The catalog reloads every refresh.interval while the terminal has focus.

Controls:
  tab / shift+tab  Move between search, chips and results
  ↑/k, ↓/j         Navigate results
  ←/h, →/l         Move between chips
  space            Toggle chip
  enter            Show dataset details
  r, ctrl+r        Refresh
  c, ctrl+l        Clear filters
  esc              Back to search
  ?                Toggle help
  q, ctrl+c        Quit

With --server the TUI reads GET /api/datasets from a running datahub serve.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().String("server", "", "read from a running server instead of the source (default server.url)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	server, err := cmd.Flags().GetString("server")
	if err != nil {
		return fmt.Errorf("getting server flag: %w", err)
	}

	s, err := requireServices(cmd, func(settings *domain.Settings) {
		if server != "" {
			settings.Server.URL = server
		}
	})
	if err != nil {
		return err
	}

	if closeLog := redirectLogs(); closeLog != nil {
		defer closeLog()
	}

	ctx := cmd.Context()
	app, err := tui.NewApp(&tui.Ports{Catalog: s.Catalog})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)
	p := app.Program()

	// Loads reach the program as messages so state only changes on the event loop.
	scheduler := services.NewRefreshScheduler(s.Catalog, s.Settings.RefreshInterval, func(snap *domain.Snapshot, err error) {
		p.Send(messages.Loaded{Snapshot: snap, Err: err})
	})
	app.SetScheduler(scheduler)

	defer startScheduler(ctx, scheduler)()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// redirectLogs sends log output to a file in the config directory so it
// does not corrupt the alternate screen. It returns nil if the file
// cannot be opened.
func redirectLogs() func() {
	dir := resolveConfigDir()
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, tuiLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}
}
