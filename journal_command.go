package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bleemesser/photoexif/util"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var (
		journalPath string
		runID       string
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded runs, or the files of one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if journalPath == "" {
				journalPath = cfg.Journal.Path
			}
			if journalPath == "" {
				return errors.New("no journal configured, pass --journal or set journal.path")
			}

			j, err := util.OpenJournal(journalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				entries, err := j.Entries(runID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderEntries(entries))
				return nil
			}

			runs, err := j.Runs()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "sqlite journal file")
	cmd.Flags().StringVar(&runID, "run", "", "Show the files of this run")
	return cmd
}

func renderRuns(runs []util.JournalRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		finished := "-"
		if r.Finished.Valid {
			finished = r.Finished.Time.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			r.ID,
			r.Started.Local().Format(time.DateTime),
			finished,
			strconv.FormatBool(r.DryRun),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Failed),
			r.InputDir,
		})
	}
	return renderTable([]string{"Run", "Started", "Finished", "Dry run", "Files", "Failed", "Input"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft})
}

func renderEntries(entries []util.JournalEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		taken := "-"
		if e.Taken.Valid {
			taken = e.Taken.Time.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{filepath.Base(e.MediaPath), e.Action, taken, strconv.FormatBool(e.Routed), e.Error})
	}
	return renderTable([]string{"File", "Action", "Taken", "Routed", "Error"}, rows, nil)
}
