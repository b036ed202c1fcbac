package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dirs holds the directories a run works against. Input is required; Output
// and Error are optional and empty when unset.
type Dirs struct {
	Input  string
	Output string
	Error  string
}

func (d Dirs) String() string {
	return fmt.Sprintf("Input: %s\nOutput: %s\nError: %s", d.Input, orNone(d.Output), orNone(d.Error))
}

// Destination returns the root that receives processed files.
func (d Dirs) Destination() string {
	if d.Output != "" {
		return d.Output
	}
	return d.Input
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// NewDirs validates the directory set and converts every path to an absolute one.
func NewDirs(input, output, errorDir string) (Dirs, error) {
	d := Dirs{
		Input:  strings.TrimSpace(input),
		Output: strings.TrimSpace(output),
		Error:  strings.TrimSpace(errorDir),
	}
	return validateDirs(d)
}

// requirements: input must exist and be a directory
//               output and error may be missing, they are created later
//               no two directories may be the same path
func validateDirs(d Dirs) (Dirs, error) {
	var e string
	if d.Input == "" {
		return Dirs{}, errors.New("the input directory must be specified")
	}

	info, err := os.Stat(d.Input)
	switch {
	case os.IsNotExist(err):
		e = "The input directory must exist: " + d.Input
	case err != nil:
		e = fmt.Sprintf("Cannot access input directory %s: %v", d.Input, err)
	case !info.IsDir():
		e = "The input path is not a directory: " + d.Input
	}
	if e != "" {
		return Dirs{}, errors.New(e)
	}

	for _, p := range []*string{&d.Input, &d.Output, &d.Error} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return Dirs{}, fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}

	if d.Output != "" && d.Output == d.Input {
		return Dirs{}, errors.New("the output directory must differ from the input directory")
	}
	if d.Error != "" && (d.Error == d.Input || d.Error == d.Output) {
		return Dirs{}, errors.New("the error directory must differ from the input and output directories")
	}
	return d, nil
}

// EnsureDir creates path if it does not exist yet. With dryRun set nothing is
// created. The returned bool reports whether the directory was missing.
func EnsureDir(path string, dryRun bool) (bool, error) {
	if path == "" {
		return false, nil
	}
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", path)
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, err
	}
	if dryRun {
		return true, nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return true, fmt.Errorf("create directory %s: %w", path, err)
	}
	return true, nil
}
