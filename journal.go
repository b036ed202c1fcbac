package main

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/bleemesser/photoexif/takeout"
	"github.com/bleemesser/photoexif/util"
)

// journalRecorder stores every result of a run in the sqlite journal.
type journalRecorder struct {
	journal *util.Journal
	runID   string
	mock    bool
}

func openJournalRecorder(path, runID, inputDir string, mock bool) (*journalRecorder, error) {
	j, err := util.OpenJournal(path)
	if err != nil {
		return nil, err
	}
	if err := j.BeginRun(runID, inputDir, mock, time.Now()); err != nil {
		j.Close()
		return nil, err
	}
	return &journalRecorder{journal: j, runID: runID, mock: mock}, nil
}

func (r *journalRecorder) Record(res takeout.Result) error {
	return r.journal.Record(r.runID, journalEntry(res, r.mock))
}

func (r *journalRecorder) finish(s takeout.Summary, logger *slog.Logger) {
	if err := r.journal.FinishRun(r.runID, time.Now(), s.Processed(), len(s.Failures)); err != nil {
		logger.Warn("could not finish journal run", slog.String("error", err.Error()))
	}
}

func (r *journalRecorder) Close() error {
	return r.journal.Close()
}

// journalEntry flattens a result. The destination is hashed after processing
// so later runs can tell whether the file changed since.
func journalEntry(res takeout.Result, mock bool) util.JournalEntry {
	dest := res.Unit.Destination()
	e := util.JournalEntry{
		MediaPath:   res.Unit.Media.Path,
		Destination: dest.Path,
		Action:      res.Action.String(),
		Routed:      res.Routed,
	}
	if res.Unit.Sidecar != nil {
		e.SidecarPath = res.Unit.Sidecar.Path
	}
	if res.Timestamp != nil {
		e.Taken = sql.NullTime{Time: *res.Timestamp, Valid: true}
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	if !mock && !res.Failed() {
		if h, err := util.HashFile(dest.Path); err == nil {
			e.Hash = h
		}
	}
	return e
}
