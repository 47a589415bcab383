package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kyaw-zaya123/checking/internal/config"
	"github.com/kyaw-zaya123/checking/internal/constants"
	"github.com/kyaw-zaya123/checking/internal/core"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/notify"
	"github.com/kyaw-zaya123/checking/internal/progress"
)

// ErrTooManyFiles is returned when more files are given than the form has slots.
var ErrTooManyFiles = errors.New("too many files")

// ErrFilesRejected is returned when at least one file failed validation.
var ErrFilesRejected = errors.New("files rejected")

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	var (
		display        string
		output         string
		archiveBackend string
		desktop        bool
	)

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Submit files for comparison",
		Long: `Fill one form slot per file, validate every file, show the progress
while the comparison runs and save the returned document.

Each file must be .pdf, .docx or .txt and at most 10 MB; up to 10 files
are accepted. Glob patterns are expanded even when quoted.

Examples:
  checking upload report.pdf draft.docx
  checking upload "chapters/*.txt" --output result.html
  checking upload a.pdf b.pdf --display plain --archive local`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("display") {
				cfg.UI.Display = display
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.DocumentPath = output
			}
			if cmd.Flags().Changed("archive") {
				cfg.Output.ArchiveBackend = archiveBackend
			}
			if desktop {
				cfg.UI.DesktopNotifications = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runUpload(GetContext(), cfg, args, cmd.OutOrStdout(), os.Stderr, GetLogger())
		},
	}

	cmd.Flags().StringVar(&display, "display", progress.StyleAuto, "Progress display: auto, mpb, bar, plain")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to save the comparison document (overrides config)")
	cmd.Flags().StringVar(&archiveBackend, "archive", "", "Also archive the document: none, local, s3, azure")
	cmd.Flags().BoolVar(&desktop, "notify", false, "Send desktop notifications")

	return cmd
}

// runUpload submits files through a fresh engine and waits for the outcome.
// Progress and alerts go to errFile; the document path goes to out.
func runUpload(ctx context.Context, cfg *config.Config, patterns []string, out io.Writer, errFile *os.File, logger *logging.Logger) error {
	paths, err := expandGlobPatterns(patterns)
	if err != nil {
		return err
	}

	display, err := progress.NewDisplay(cfg.UI.Display, errFile)
	if err != nil {
		return err
	}
	defer display.Close()

	// Keep log lines above the progress bar
	logger.SetOutput(display.Writer())

	desktop := notify.NewDesktop(cfg.UI.DesktopNotifications, logger)
	eng, err := core.NewEngine(ctx, cfg, core.Options{
		Surface:   newConsoleSurface(logger),
		Display:   display,
		Notifier:  notify.Multi{notify.NewConsole(display.Writer()), desktop},
		Announcer: desktop,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Event loop stopped")
		}
	}()

	if err := fillSlots(eng, paths); err != nil {
		return err
	}
	if err := eng.Submit(); err != nil {
		return err
	}
	if err := eng.Wait(ctx); err != nil {
		return err
	}

	doc := eng.Document()
	if doc == nil {
		return fmt.Errorf("submission finished without a document")
	}
	logger.Info().Str("title", doc.Title).Msg("Comparison complete")
	fmt.Fprintln(out, doc.Path)
	if doc.ArchiveLocation != "" {
		fmt.Fprintln(out, doc.ArchiveLocation)
	}
	return nil
}

// slotFiller is the part of the engine fillSlots needs.
type slotFiller interface {
	AddSlot() (bool, error)
	SelectPath(index int, path string) ([]string, error)
}

// fillSlots selects one file per slot, adding slots as needed. Validation
// messages have already been shown by the notifier when a file is rejected.
func fillSlots(eng slotFiller, paths []string) error {
	rejected := 0
	for i, p := range paths {
		index := i + 1
		if index > 1 {
			added, err := eng.AddSlot()
			if err != nil {
				return err
			}
			if !added {
				return fmt.Errorf("%w: %d given, the form holds at most %d", ErrTooManyFiles, len(paths), constants.MaxFiles)
			}
		}

		msgs, err := eng.SelectPath(index, p)
		if err != nil {
			return err
		}
		if len(msgs) > 0 {
			rejected++
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesRejected, rejected, len(paths))
	}
	return nil
}
