package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bleemesser/photoexif/util"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configFlag
			if len(args) == 1 {
				path = args[0]
			}
			var err error
			if path == "" {
				path, err = util.DefaultConfigPath()
			} else {
				path, err = util.ExpandPath(path)
			}
			if err != nil {
				return err
			}
			if err := util.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "supported extensions: %v\n", cfg.Media.SupportedExtensions)
			fmt.Fprintf(out, "writable extensions:  %v\n", cfg.Media.WritableExtensions)
			fmt.Fprintf(out, "edited suffixes:      %v\n", cfg.Matching.EditedSuffixes)
			fmt.Fprintf(out, "exiftool binary:      %s\n", orDefault(cfg.ExifTool.Binary, "exiftool (PATH)"))
			fmt.Fprintf(out, "log level/format:     %s/%s\n", cfg.Logging.Level, cfg.Logging.Format)
			fmt.Fprintf(out, "journal:              %s\n", orDefault(cfg.Journal.Path, "disabled"))
			return nil
		},
	})

	return configCmd
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
