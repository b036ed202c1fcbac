package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bleemesser/photoexif/takeout"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

var actionDescriptions = map[takeout.Action]string{
	takeout.ActionWriteSidecar: "metadata written from .json",
	takeout.ActionKeepEmbedded: "existing EXIF date kept",
	takeout.ActionSyncEmbedded: "dated from EXIF, no usable .json",
	takeout.ActionSyncSidecar:  "dated from .json, format not writable",
	takeout.ActionNone:         "left untouched",
	takeout.ActionFailed:       "failed",
}

func renderSummary(s takeout.Summary) string {
	rows := make([][]string, 0, len(actionDescriptions)+1)
	for _, a := range takeout.Actions() {
		rows = append(rows, []string{a.String(), actionDescriptions[a], humanize.Comma(int64(s.Counts[a]))})
	}
	rows = append(rows, []string{"copied", "bytes copied to the output directory", humanize.Bytes(uint64(s.CopiedBytes))})
	return renderTable([]string{"Outcome", "Meaning", "Files"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}

func renderFailures(failures []takeout.Result) string {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		routed := "no"
		if f.Routed {
			routed = "yes"
		}
		rows = append(rows, []string{filepath.Base(f.Unit.Media.Path), routed, fmt.Sprint(f.Err)})
	}
	return renderTable([]string{"Failed file", "In error dir", "Error"}, rows, nil)
}
