package main

import (
	"io"
	"log/slog"

	"github.com/bleemesser/photoexif/util"
)

// commandContext carries the persistent flags and lazily loaded config shared
// by every subcommand.
type commandContext struct {
	configFlag    string
	logLevelFlag  string
	logFormatFlag string

	cfg *util.Config
}

func (c *commandContext) ensureConfig() (*util.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, _, err := util.LoadConfig(c.configFlag)
	if err != nil {
		return nil, err
	}
	if c.logLevelFlag != "" {
		cfg.Logging.Level = c.logLevelFlag
	}
	if c.logFormatFlag != "" {
		cfg.Logging.Format = c.logFormatFlag
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) newLogger(out io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return util.NewLogger(util.LogOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}
