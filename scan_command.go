package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bleemesser/photoexif/takeout"
	"github.com/bleemesser/photoexif/util"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the media files of a Takeout and how many have a .json sidecar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs, err := util.NewDirs(inputDir, "", "")
			if err != nil {
				return err
			}

			opts := takeout.OptionsFromConfig(dirs, cfg, true)
			set, err := takeout.BuildFileSet(dirs.Input, "", opts.Scan)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderScan(set, cfg.Media.WritableExtensions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory containing the extracted Google Photos Takeout")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func renderScan(set *takeout.FileSet, writable []string) string {
	withSidecar := make(map[string]int)
	for _, u := range set.Units {
		if u.Sidecar != nil {
			withSidecar[strings.ToLower(u.Media.Extension)]++
		}
	}

	counts := set.CountsByExtension()
	rows := make([][]string, 0, len(counts)+1)
	for _, ext := range set.Extensions() {
		exif := "no"
		for _, w := range writable {
			if w == ext {
				exif = "yes"
				break
			}
		}
		rows = append(rows, []string{ext, exif, humanize.Comma(int64(counts[ext])), humanize.Comma(int64(withSidecar[ext]))})
	}
	rows = append(rows, []string{"total", "", humanize.Comma(int64(set.Len())), humanize.Comma(int64(set.WithSidecar()))})
	return renderTable([]string{"Extension", "EXIF writable", "Files", "With .json"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight})
}
