package takeout

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info.ModTime()
}

// bufferLogger returns a text logger without timestamps so two runs can be
// compared line by line.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(h), buf
}

type writeCall struct {
	path string
	md   *SidecarMetadata
}

// fakeTool is an in-memory MetadataTool.
type fakeTool struct {
	embedded map[string]EmbeddedMetadata
	readErr  error
	writeErr error
	// failWrites fails writes to specific paths only
	failWrites map[string]error

	reads  []string
	writes []writeCall
}

func newFakeTool() *fakeTool {
	return &fakeTool{embedded: make(map[string]EmbeddedMetadata), failWrites: make(map[string]error)}
}

func (f *fakeTool) withDate(path string, ts time.Time) *fakeTool {
	f.embedded[path] = EmbeddedMetadata{DateTimeOriginal: &ts}
	return f
}

func (f *fakeTool) Read(path string) (EmbeddedMetadata, error) {
	f.reads = append(f.reads, path)
	if f.readErr != nil {
		return EmbeddedMetadata{}, f.readErr
	}
	return f.embedded[path], nil
}

func (f *fakeTool) Write(path string, md *SidecarMetadata) error {
	f.writes = append(f.writes, writeCall{path: path, md: md})
	if err, ok := f.failWrites[path]; ok {
		return err
	}
	return f.writeErr
}

var errBrokenFile = errors.New("file is corrupt")
