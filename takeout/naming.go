package takeout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputNamer hands out file names that are unique within one output
// directory. Names are compared case-insensitively so the result is safe on
// case-insensitive filesystems.
type OutputNamer struct {
	used map[string]struct{}
}

// NewOutputNamer returns a namer that already knows the files present in dir.
// A missing dir is treated as empty.
func NewOutputNamer(dir string) (*OutputNamer, error) {
	n := &OutputNamer{used: make(map[string]struct{})}
	if dir == "" {
		return n, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return n, nil
		}
		return nil, fmt.Errorf("list output directory: %w", err)
	}
	for _, e := range entries {
		n.used[strings.ToLower(e.Name())] = struct{}{}
	}
	return n, nil
}

// Next reserves and returns a unique name for the file at path, appending
// _1, _2, ... before the extension on collisions.
func (n *OutputNamer) Next(path string) string {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for counter := 1; ; counter++ {
		if _, taken := n.used[strings.ToLower(candidate)]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
	n.used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}
