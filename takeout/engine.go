package takeout

import (
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bleemesser/photoexif/util"
)

// StalenessWindow is how far an embedded date may lie after the sidecar date
// and still be trusted. Exports and cameras disagree on time zones, so small
// differences are not worth a rewrite.
const StalenessWindow = 24 * time.Hour

// EngineOptions configures an Engine.
type EngineOptions struct {
	// WritableExtensions are the lower-case extensions the tool may write.
	WritableExtensions []string
	// ErrorDir receives files whose metadata write failed. Empty disables it.
	ErrorDir string
	// DryRun skips every filesystem mutation but keeps decisions and logs.
	DryRun bool
}

// Engine decides, per file, which capture date is authoritative and applies it.
type Engine struct {
	tool   MetadataTool
	opts   EngineOptions
	logger *slog.Logger

	// errNames keeps routed files from overwriting each other; created on
	// the first routed failure
	errNames *OutputNamer

	// filesystem hooks, replaced in tests
	copyFile   func(src, dst string) (int64, error)
	setModTime func(path string, t time.Time) (bool, error)
}

// NewEngine returns an engine that reads and writes through tool.
func NewEngine(tool MetadataTool, opts EngineOptions, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	return &Engine{
		tool:       tool,
		opts:       opts,
		logger:     logger,
		copyFile:   util.Copy,
		setModTime: util.SetModTime,
	}
}

// Reconcile processes one unit. Every failure is reported in the Result;
// none of them should stop the batch.
func (e *Engine) Reconcile(unit FileUnit) Result {
	res := Result{Unit: unit}
	dest := unit.Destination()
	log := e.logger.With(slog.String("file", unit.Media.Path))

	if unit.Output != nil {
		log.Info("copying file", slog.String("output", unit.Output.Name))
		if !e.opts.DryRun {
			n, err := e.copyFile(unit.Media.Path, unit.Output.Path)
			if err != nil {
				return e.fail(log, res, &CopyError{Src: unit.Media.Path, Dst: unit.Output.Path, Err: err})
			}
			res.CopiedBytes = n
		}
	}

	// the output copy is byte-identical, so the original is read instead
	embedded, err := e.tool.Read(unit.Media.Path)
	if err != nil {
		return e.fail(log, res, err)
	}

	if unit.Sidecar == nil {
		log.Info("there is no .json file for this media file, skipping")
		return e.fallBackToEmbedded(log, res, dest, embedded)
	}

	sidecar, err := ParseSidecar(unit.Sidecar.Path)
	if err != nil {
		return e.fail(log, res, err)
	}

	if sidecar.Taken == nil {
		log.Info("the related .json file has no date, skipping", slog.String("sidecar", unit.Sidecar.Name))
		return e.fallBackToEmbedded(log, res, dest, embedded)
	}

	if embedded.DateTimeOriginal != nil && IsEmbeddedTrusted(*embedded.DateTimeOriginal, *sidecar.Taken) {
		log.Info("the file already has an EXIF date that is (almost) equal or older than the .json date, skipping",
			slog.Time("exif", *embedded.DateTimeOriginal),
			slog.String("json", sidecar.ISO()))
		e.syncModTime(log, dest, *embedded.DateTimeOriginal)
		res.Action = ActionKeepEmbedded
		res.Timestamp = embedded.DateTimeOriginal
		return res
	}

	res.Action = ActionSyncSidecar
	if e.isWritable(dest) {
		if !e.opts.DryRun {
			if err := e.tool.Write(dest.Path, sidecar); err != nil {
				var we *WriteError
				if !errors.As(err, &we) {
					err = &WriteError{Path: dest.Path, Err: err}
				}
				return e.routeFailure(log, res, dest, err)
			}
		}
		old := "empty"
		if embedded.DateTimeOriginal != nil {
			old = embedded.DateTimeOriginal.String()
		}
		attrs := []any{slog.String("new", sidecar.ISO()), slog.String("old", old)}
		if g := sidecar.Geo; g != nil {
			attrs = append(attrs,
				slog.Float64("lat", g.Latitude), slog.String("lat_ref", g.LatitudeRef),
				slog.Float64("lon", g.Longitude), slog.String("lon_ref", g.LongitudeRef),
				slog.Float64("alt", g.Altitude))
		}
		log.Info("wrote DateTimeOriginal and geo metadata", attrs...)
		res.Action = ActionWriteSidecar
	}

	e.syncModTime(log, dest, *sidecar.Taken)
	res.Timestamp = sidecar.Taken
	return res
}

// IsEmbeddedTrusted reports whether an embedded capture date should win over
// the sidecar date: it does unless it lies more than StalenessWindow after it.
func IsEmbeddedTrusted(embedded, sidecar time.Time) bool {
	return !embedded.Add(-StalenessWindow).After(sidecar)
}

func (e *Engine) isWritable(ref MediaFileRef) bool {
	ext := strings.ToLower(ref.Extension)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(ref.Path))
	}
	return slices.Contains(e.opts.WritableExtensions, ext)
}

func (e *Engine) fallBackToEmbedded(log *slog.Logger, res Result, dest MediaFileRef, embedded EmbeddedMetadata) Result {
	if embedded.DateTimeOriginal == nil {
		res.Action = ActionNone
		return res
	}
	e.syncModTime(log, dest, *embedded.DateTimeOriginal)
	res.Action = ActionSyncEmbedded
	res.Timestamp = embedded.DateTimeOriginal
	return res
}

// syncModTime sets the file's mod time on a best-effort basis. Failures are
// logged and never surface.
func (e *Engine) syncModTime(log *slog.Logger, dest MediaFileRef, t time.Time) {
	if !e.opts.DryRun {
		fellBack, err := e.setModTime(dest.Path, t)
		if err != nil {
			log.Debug("could not update modification date", slog.String("error", err.Error()))
		} else if fellBack {
			log.Debug("modification date could not be set, touched the file instead")
		}
	}
	log.Info("modification date has been updated", slog.String("name", dest.Name), slog.Time("time", t))
}

// routeFailure handles a failed metadata write: the destination and its
// sidecar are copied into the error directory, if one is configured. Names
// already taken there get a _N suffix.
func (e *Engine) routeFailure(log *slog.Logger, res Result, dest MediaFileRef, err error) Result {
	res = e.fail(log, res, err)
	if e.opts.ErrorDir == "" || e.opts.DryRun {
		return res
	}

	if e.errNames == nil {
		namer, nerr := NewOutputNamer(e.opts.ErrorDir)
		if nerr != nil {
			log.Warn("could not list the error directory", slog.String("error", nerr.Error()))
			return res
		}
		e.errNames = namer
	}

	if _, cerr := e.copyFile(dest.Path, filepath.Join(e.opts.ErrorDir, e.errNames.Next(dest.Path))); cerr != nil {
		log.Warn("could not copy file to the error directory", slog.String("error", cerr.Error()))
		return res
	}
	res.Routed = true
	if sc := res.Unit.Sidecar; sc != nil {
		if _, cerr := e.copyFile(sc.Path, filepath.Join(e.opts.ErrorDir, e.errNames.Next(sc.Path))); cerr != nil {
			log.Warn("could not copy sidecar to the error directory", slog.String("error", cerr.Error()))
		}
	}
	return res
}

func (e *Engine) fail(log *slog.Logger, res Result, err error) Result {
	log.Error("there was an error processing the file", slog.String("error", err.Error()))
	res.Action = ActionFailed
	res.Err = err
	return res
}
