package takeout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/bleemesser/photoexif/util"
)

// LockFileName is created in the destination root while a run is active.
const LockFileName = ".photoexif.lock"

// Options describes one run.
type Options struct {
	Dirs util.Dirs
	// MockProcess makes the run a dry run.
	MockProcess bool
	Scan        ScanOptions
	// WritableExtensions are the extensions the metadata tool may write.
	WritableExtensions []string
	OnProgress         func(done, total int)
	Recorder           Recorder
}

// DefaultOptions returns options built from the default configuration. As a
// library entry point it defaults to a dry run; callers opt into changes.
func DefaultOptions(dirs util.Dirs) Options {
	cfg := util.Default()
	return OptionsFromConfig(dirs, &cfg, true)
}

// OptionsFromConfig maps a loaded configuration onto run options.
func OptionsFromConfig(dirs util.Dirs, cfg *util.Config, mock bool) Options {
	return Options{
		Dirs:        dirs,
		MockProcess: mock,
		Scan: ScanOptions{
			SupportedExtensions: cfg.Media.SupportedExtensions,
			Match:               MatchOptions{EditedSuffixes: cfg.Matching.EditedSuffixes},
		},
		WritableExtensions: cfg.Media.WritableExtensions,
	}
}

// Run validates the preconditions, scans the input and processes every file.
// Only precondition failures and cancellation are returned as errors; files
// that fail are listed in the summary.
func Run(ctx context.Context, opts Options, tool MetadataTool, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	dirs := opts.Dirs

	if info, err := os.Stat(dirs.Input); err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		return Summary{}, &PreconditionError{Reason: "the input directory must exist", Err: err}
	}

	for _, dir := range []string{dirs.Output, dirs.Error} {
		missing, err := util.EnsureDir(dir, opts.MockProcess)
		if err != nil {
			return Summary{}, &PreconditionError{Reason: "prepare directory " + dir, Err: err}
		}
		if missing {
			logger.Info(fmt.Sprintf("--- Creating directory: %s ---", dir))
		}
	}

	if !opts.MockProcess {
		unlock, err := lockDestination(dirs.Destination())
		if err != nil {
			return Summary{}, err
		}
		defer unlock(logger)
	}

	logger.Info(fmt.Sprintf("--- Finding supported media files (%s) ---", strings.Join(opts.Scan.SupportedExtensions, ", ")))
	set, err := BuildFileSet(dirs.Input, dirs.Output, opts.Scan)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			return Summary{}, &PreconditionError{Reason: "no supported media files found", Err: err}
		}
		return Summary{}, &PreconditionError{Reason: "scan input directory", Err: err}
	}
	counts := set.CountsByExtension()
	for _, ext := range set.Extensions() {
		logger.Info(fmt.Sprintf("%d files with extension %s", counts[ext], ext))
	}
	logger.Info("--- Scan complete ---", slog.Int("files", set.Len()), slog.Int("with_sidecar", set.WithSidecar()))

	engine := NewEngine(tool, EngineOptions{
		WritableExtensions: opts.WritableExtensions,
		ErrorDir:           dirs.Error,
		DryRun:             opts.MockProcess,
	}, logger)
	processor := NewProcessor(engine, ProcessorOptions{
		OnProgress: opts.OnProgress,
		Recorder:   opts.Recorder,
	}, logger)

	summary, err := processor.Process(ctx, set.Units)
	if err != nil {
		return summary, err
	}
	logger.Info("Done!")
	return summary, nil
}

// lockDestination takes an exclusive lock so two runs never write into the
// same tree at once.
func lockDestination(root string) (func(*slog.Logger), error) {
	lockPath := filepath.Join(root, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, &PreconditionError{Reason: "acquire run lock", Err: err}
	}
	if !ok {
		return nil, &PreconditionError{Reason: "another photoexif run is already using " + root}
	}
	return func(logger *slog.Logger) {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", slog.String("error", err.Error()))
		}
		os.Remove(lockPath)
	}, nil
}
