package takeout

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MatchOptions tunes sidecar lookup.
type MatchOptions struct {
	// EditedSuffixes are stripped (case-insensitively) from the media name,
	// because edited copies share the sidecar of their original.
	EditedSuffixes []string
}

// DefaultMatchOptions returns the options used when none are configured.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{EditedSuffixes: []string{"-edited"}}
}

const supplementalSuffix = ".supplemental-metadata"

// Takeout cuts long sidecar names; the cut has moved between export versions.
var truncatedLengths = []int{46, 47, 48}

var counterSuffix = regexp.MustCompile(`^(.*)(\(\d+\))$`)

// FindSidecar returns the path of the JSON sidecar that belongs to mediaPath.
// A missing sidecar is reported with false, never as an error.
func FindSidecar(mediaPath string, opts MatchOptions) (string, bool) {
	dir := filepath.Dir(mediaPath)
	for _, name := range sidecarCandidates(filepath.Base(mediaPath), opts) {
		for _, variant := range unicodeVariants(name) {
			p := filepath.Join(dir, variant)
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				return p, true
			}
		}
	}
	return "", false
}

// sidecarCandidates lists the possible sidecar names for a media file name,
// most likely first.
func sidecarCandidates(mediaName string, opts MatchOptions) []string {
	ext := filepath.Ext(mediaName)
	name := strings.TrimSuffix(mediaName, ext)
	name = stripEditedSuffix(name, opts.EditedSuffixes)

	var candidates []string
	add := func(c string) {
		for _, existing := range candidates {
			if existing == c {
				return
			}
		}
		candidates = append(candidates, c)
	}

	// foo.jpg may come with foo.json or foo.jpg.json
	add(name + ".json")
	add(name + ext + ".json")

	// foo(1).jpg comes with foo.jpg(1).json
	if m := counterSuffix.FindStringSubmatch(name); m != nil {
		add(m[1] + ext + m[2] + ".json")
	}

	// filename_n-.jpg, filename_n.jpg and filename_.jpg drop their last char
	if strings.HasSuffix(name, "_n-") || strings.HasSuffix(name, "_n") || strings.HasSuffix(name, "_") {
		add(name[:len(name)-1] + ".json")
	}

	add(name + ext + supplementalSuffix + ".json")
	if m := counterSuffix.FindStringSubmatch(name); m != nil {
		add(m[1] + ext + supplementalSuffix + m[2] + ".json")
	}

	for _, stem := range []string{name + ext, name + ext + supplementalSuffix} {
		for _, n := range truncatedLengths {
			if t, ok := truncateRunes(stem, n); ok {
				add(t + ".json")
			}
		}
	}
	return candidates
}

func stripEditedSuffix(name string, suffixes []string) string {
	for _, suffix := range suffixes {
		if suffix == "" || len(name) <= len(suffix) {
			continue
		}
		if strings.EqualFold(name[len(name)-len(suffix):], suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

func truncateRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return "", false
	}
	return string(r[:n]), true
}

// unicodeVariants returns name plus its NFC and NFD forms when they differ.
// Archives extracted on macOS tend to carry decomposed names.
func unicodeVariants(name string) []string {
	variants := []string{name}
	for _, form := range []norm.Form{norm.NFC, norm.NFD} {
		v := form.String(name)
		if v != name && (len(variants) == 1 || variants[1] != v) {
			variants = append(variants, v)
		}
	}
	return variants
}
