// photoexif/util/import.go
package util

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WalkDir returns every regular, non-hidden file below dir in lexical order.
func WalkDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() && !strings.HasPrefix(info.Name(), ".") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// HashFile returns the base64 encoded sha256 of the file contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// Copy copies src to dst byte for byte, creating the parent directory of dst.
// A partially written dst is removed. It returns the number of bytes copied.
func Copy(src, dst string) (int64, error) {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if !sourceFileStat.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, err
	}

	destination, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, sourceFileStat.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(destination, source)
	if err != nil {
		destination.Close()
		os.Remove(dst)
		return n, fmt.Errorf("failed to copy content from %s to %s: %w", src, dst, err)
	}
	if err := destination.Close(); err != nil {
		os.Remove(dst)
		return n, fmt.Errorf("failed to finish writing %s: %w", dst, err)
	}
	return n, nil
}

// SetModTime sets the access and modification time of path to t. When the
// filesystem refuses, it falls back to Touch so the file at least gets a fresh
// modification time. fellBack reports whether the fallback ran; err is only
// non-nil when the fallback failed too.
func SetModTime(path string, t time.Time) (fellBack bool, err error) {
	chErr := os.Chtimes(path, t, t)
	if chErr == nil {
		return false, nil
	}
	if err := Touch(path); err != nil {
		return true, fmt.Errorf("chtimes %s: %v; touch: %w", path, chErr, err)
	}
	return true, nil
}

// Touch reopens an existing path for writing and rewrites its first byte in
// place, which bumps the modification time without changing the contents.
// A missing path is an error, never created. Empty files are
// truncated to zero length for the same effect.
func Touch(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 1)
	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return err
	}
	if n == 0 {
		return f.Truncate(0)
	}
	if _, err := f.WriteAt(buf, 0); err != nil {
		return err
	}
	return f.Sync()
}
