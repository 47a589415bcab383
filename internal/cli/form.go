package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kyaw-zaya123/checking/internal/config"
	"github.com/kyaw-zaya123/checking/internal/core"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/notify"
	"github.com/kyaw-zaya123/checking/internal/tui"
)

// newFormCmd creates the 'form' command.
func newFormCmd() *cobra.Command {
	var (
		logFile string
		desktop bool
	)

	cmd := &cobra.Command{
		Use:   "form [FILE...]",
		Short: "Fill the comparison form interactively",
		Long: `Open the interactive comparison form in the terminal.

Keys:
  ↑/↓    move between slots
  enter  type the path of the file for the focused slot
  d      clear the focused slot
  a / x  add a slot / remove the last slot
  s      submit
  q      quit

Files given as arguments are preselected, one per slot. Logs are written
to a file because the form owns the terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if desktop {
				cfg.UI.DesktopNotifications = true
			}
			if logFile == "" {
				logFile = filepath.Join(config.DataDirectory(), "form.log")
			}
			return runForm(GetContext(), cfg, args, logFile)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file (default: <data dir>/form.log)")
	cmd.Flags().BoolVar(&desktop, "notify", false, "Send desktop notifications")

	return cmd
}

func runForm(ctx context.Context, cfg *config.Config, patterns []string, logFile string) error {
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	log := logging.NewLogger("tui", f)

	desktop := notify.NewDesktop(cfg.UI.DesktopNotifications, log)
	eng, err := core.NewEngine(ctx, cfg, core.Options{
		Notifier:  desktop,
		Announcer: desktop,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Event loop stopped")
		}
	}()

	if len(patterns) > 0 {
		paths, err := expandGlobPatterns(patterns)
		if err != nil {
			return err
		}
		// Rejected files stay unselected; the form shows the slots as they are
		if err := fillSlots(eng, paths); err != nil && !errors.Is(err, ErrFilesRejected) {
			return err
		}
	}

	slots, err := eng.Slots()
	if err != nil {
		return err
	}
	controls, err := eng.Controls()
	if err != nil {
		return err
	}

	log.Info().Str("endpoint", cfg.Upload.Endpoint).Int("slots", len(slots)).Msg("Form opened")
	return tui.Run(ctx, eng, eng.EventBus(), slots, controls)
}
