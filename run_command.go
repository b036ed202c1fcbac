package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bleemesser/photoexif/takeout"
	"github.com/bleemesser/photoexif/util"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		inputDir    string
		outputDir   string
		errorDir    string
		journalPath string
		mock        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile dates and locations of every media file in a Takeout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs, err := util.NewDirs(inputDir, outputDir, errorDir)
			if err != nil {
				return err
			}
			if journalPath == "" {
				journalPath = cfg.Journal.Path
			}

			runID := uuid.NewString()
			logger, err := ctx.newLogger(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			logger = logger.With(slog.String("run_id", runID))
			if mock {
				logger = logger.With(slog.Bool("dry_run", true))
			}

			tool, closeTool, err := openMetadataTool(cfg, mock, logger)
			if err != nil {
				return err
			}
			defer closeTool()

			opts := takeout.OptionsFromConfig(dirs, cfg, mock)

			var recorder *journalRecorder
			if journalPath != "" {
				recorder, err = openJournalRecorder(journalPath, runID, dirs.Input, mock)
				if err != nil {
					return err
				}
				defer recorder.Close()
				opts.Recorder = recorder
			}

			bar := newProgressBar(os.Stderr)
			opts.OnProgress = bar.update

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			summary, err := takeout.Run(runCtx, opts, tool, logger)
			bar.finish()
			if recorder != nil {
				recorder.finish(summary, logger)
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			writeSummary(cmd.OutOrStdout(), summary, mock)
			return err
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory containing the extracted contents of the Google Photos Takeout zip file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory into which the processed output will be written")
	cmd.Flags().StringVarP(&errorDir, "error", "e", "", "Directory for files whose EXIF data could not be written, together with their metadata files")
	cmd.Flags().StringVar(&journalPath, "journal", "", "sqlite file recording what happened to every file")
	cmd.Flags().BoolVar(&mock, "mock", false, "Log every decision without changing any file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// openMetadataTool starts exiftool. A dry run can do without it by reading
// EXIF natively, since it never writes.
func openMetadataTool(cfg *util.Config, mock bool, logger *slog.Logger) (takeout.MetadataTool, func(), error) {
	et, err := takeout.NewExifTool(cfg.ExifTool.Binary, logger)
	if err == nil {
		return et, func() {
			if err := et.Close(); err != nil {
				logger.Warn("error closing exiftool", slog.String("error", err.Error()))
			}
		}, nil
	}
	if !mock {
		return nil, nil, fmt.Errorf("%w (install exiftool or set exiftool.binary in the config)", err)
	}
	logger.Warn("exiftool is not available, reading EXIF natively for this dry run", slog.String("error", err.Error()))
	return takeout.NativeReader{}, func() {}, nil
}

func writeSummary(w io.Writer, s takeout.Summary, mock bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderSummary(s))
	if len(s.Failures) > 0 {
		fmt.Fprintln(w, renderFailures(s.Failures))
	}
	mode := ""
	if mock {
		mode = " (dry run, no files were changed)"
	}
	fmt.Fprintf(w, "Processed %d of %d files in %s%s.\n", s.Processed(), s.Total, s.Duration.Round(time.Millisecond), mode)
}
