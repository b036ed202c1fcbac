package util

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// use a sqlite database to keep a journal of every run and what happened
// to each file, so a run can be audited after the terminal output is gone
type Journal struct {
	db   *sql.DB
	path string
}

// JournalRun is one row of the runs table.
type JournalRun struct {
	ID       string
	InputDir string
	DryRun   bool
	Started  time.Time
	Finished sql.NullTime
	Total    int
	Failed   int
}

// JournalEntry is the outcome recorded for a single media file.
type JournalEntry struct {
	MediaPath   string
	SidecarPath string
	Destination string
	Action      string
	Taken       sql.NullTime
	Routed      bool
	Error       string
	Hash        string
}

// OpenJournal opens the journal database at path, creating it and its tables
// when needed.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// tables:
	// 	- runs: id string, input_dir string, dry_run bool, started timestamp, finished timestamp, total int, failed int
	// 	- entries: id, run_id, media_path, sidecar_path, destination, action, taken timestamp, routed bool, error, hash
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_dir TEXT,
		dry_run INTEGER,
		started TIMESTAMP,
		finished TIMESTAMP,
		total INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		media_path TEXT,
		sidecar_path TEXT,
		destination TEXT,
		action TEXT,
		taken TIMESTAMP,
		routed INTEGER,
		error TEXT,
		hash TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db, path: path}, nil
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun inserts the row for a new run.
func (j *Journal) BeginRun(id, inputDir string, dryRun bool, started time.Time) error {
	_, err := j.db.Exec("INSERT INTO runs (id, input_dir, dry_run, started) VALUES (?, ?, ?, ?)", id, inputDir, dryRun, started.UTC())
	if err != nil {
		return fmt.Errorf("journal: begin run %s: %w", id, err)
	}
	return nil
}

// Record appends the outcome of one file to run id.
func (j *Journal) Record(id string, e JournalEntry) error {
	var taken any
	if e.Taken.Valid {
		taken = e.Taken.Time.UTC()
	}
	_, err := j.db.Exec("INSERT INTO entries (run_id, media_path, sidecar_path, destination, action, taken, routed, error, hash) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, e.MediaPath, e.SidecarPath, e.Destination, e.Action, taken, e.Routed, e.Error, e.Hash)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.MediaPath, err)
	}
	return nil
}

// FinishRun stamps the run with its end time and totals.
func (j *Journal) FinishRun(id string, finished time.Time, total, failed int) error {
	_, err := j.db.Exec("UPDATE runs SET finished = ?, total = ?, failed = ? WHERE id = ?", finished.UTC(), total, failed, id)
	if err != nil {
		return fmt.Errorf("journal: finish run %s: %w", id, err)
	}
	return nil
}

// Runs returns every recorded run, newest first.
func (j *Journal) Runs() ([]JournalRun, error) {
	rows, err := j.db.Query("SELECT id, input_dir, dry_run, started, finished, total, failed FROM runs ORDER BY started DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []JournalRun
	for rows.Next() {
		var r JournalRun
		if err := rows.Scan(&r.ID, &r.InputDir, &r.DryRun, &r.Started, &r.Finished, &r.Total, &r.Failed); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entries returns the files recorded for run id in insertion order.
func (j *Journal) Entries(id string) ([]JournalEntry, error) {
	rows, err := j.db.Query("SELECT media_path, sidecar_path, destination, action, taken, routed, error, hash FROM entries WHERE run_id = ? ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.MediaPath, &e.SidecarPath, &e.Destination, &e.Action, &e.Taken, &e.Routed, &e.Error, &e.Hash); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) GetEntryCount(id string) (int, error) {
	var count int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM entries WHERE run_id = ?", id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
