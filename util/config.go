package util

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Media lists the extensions a run cares about.
type Media struct {
	// SupportedExtensions are the files the scan picks up and dates.
	SupportedExtensions []string `toml:"supported_extensions"`
	// WritableExtensions are the files that can carry embedded metadata.
	WritableExtensions []string `toml:"writable_extensions"`
}

// Matching tunes how sidecars are located.
type Matching struct {
	EditedSuffixes []string `toml:"edited_suffixes"`
}

type ExifTool struct {
	Binary string `toml:"binary"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type JournalConfig struct {
	Path string `toml:"path"`
}

// Config holds every tunable of a run. Command line flags override it.
type Config struct {
	Media    Media         `toml:"media"`
	Matching Matching      `toml:"matching"`
	ExifTool ExifTool      `toml:"exiftool"`
	Logging  Logging       `toml:"logging"`
	Journal  JournalConfig `toml:"journal"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Media: Media{
			SupportedExtensions: []string{".jpeg", ".jpg", ".heic", ".gif", ".mp4", ".png", ".avi", ".mov"},
			WritableExtensions:  []string{".jpeg", ".jpg", ".heic"},
		},
		Matching: Matching{
			EditedSuffixes: []string{"-edited"},
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultConfigPath returns ~/.config/photoexif/config.toml.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/photoexif/config.toml")
}

// LoadConfig reads the TOML file at path on top of Default. An empty path
// falls back to DefaultConfigPath; a missing file is not an error. The bool
// reports whether a file was read.
func LoadConfig(path string) (*Config, bool, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, false, err
		}
	} else {
		var err error
		if path, err = ExpandPath(path); err != nil {
			return nil, false, err
		}
	}

	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no config file, defaults only
	case err != nil:
		return nil, false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, false, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, err == nil, nil
}

func (c *Config) normalize() {
	c.Media.SupportedExtensions = normalizeExtensions(c.Media.SupportedExtensions)
	c.Media.WritableExtensions = normalizeExtensions(c.Media.WritableExtensions)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.ExifTool.Binary = strings.TrimSpace(c.ExifTool.Binary)
	c.Journal.Path = strings.TrimSpace(c.Journal.Path)
	if c.Journal.Path != "" {
		if p, err := ExpandPath(c.Journal.Path); err == nil {
			c.Journal.Path = p
		}
	}
}

// normalizeExtensions lower-cases, adds the leading dot and drops duplicates.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	return out
}

// Validate reports configuration values that cannot work together.
func (c *Config) Validate() error {
	if len(c.Media.SupportedExtensions) == 0 {
		return errors.New("config: media.supported_extensions must not be empty")
	}
	for _, ext := range c.Media.WritableExtensions {
		if !slices.Contains(c.Media.SupportedExtensions, ext) {
			return fmt.Errorf("config: writable extension %q is not in media.supported_extensions", ext)
		}
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
