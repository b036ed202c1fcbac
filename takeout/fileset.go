package takeout

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bleemesser/photoexif/util"
)

// ScanOptions controls which files become part of a run.
type ScanOptions struct {
	// SupportedExtensions are lower-case extensions with a leading dot.
	SupportedExtensions []string
	Match               MatchOptions
}

// FileSet is the ordered work list of a run.
type FileSet struct {
	Units []FileUnit
}

// Len returns the number of units.
func (s *FileSet) Len() int {
	return len(s.Units)
}

// CountsByExtension returns how many files were found per lower-cased extension.
func (s *FileSet) CountsByExtension() map[string]int {
	counts := make(map[string]int)
	for _, u := range s.Units {
		counts[strings.ToLower(u.Media.Extension)]++
	}
	return counts
}

// Extensions returns the keys of CountsByExtension in sorted order.
func (s *FileSet) Extensions() []string {
	counts := s.CountsByExtension()
	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// WithSidecar returns how many units have a matched sidecar.
func (s *FileSet) WithSidecar() int {
	n := 0
	for _, u := range s.Units {
		if u.Sidecar != nil {
			n++
		}
	}
	return n
}

// FindMediaFiles walks inputDir and keeps the files with a supported
// extension. It fails with ErrEmptyInput when nothing matches.
func FindMediaFiles(inputDir string, supported []string) ([]string, error) {
	files, err := util.WalkDir(inputDir)
	if err != nil {
		return nil, err
	}

	var matching []string
	for _, f := range files {
		if slices.Contains(supported, strings.ToLower(filepath.Ext(f))) {
			matching = append(matching, f)
		}
	}
	if len(matching) == 0 {
		return nil, ErrEmptyInput
	}
	return matching, nil
}

// BuildFileSet scans inputDir and pairs every media file with its sidecar and,
// when outputDir is set, a collision-free output name.
func BuildFileSet(inputDir, outputDir string, opts ScanOptions) (*FileSet, error) {
	paths, err := FindMediaFiles(inputDir, opts.SupportedExtensions)
	if err != nil {
		return nil, err
	}

	var namer *OutputNamer
	if outputDir != "" {
		if namer, err = NewOutputNamer(outputDir); err != nil {
			return nil, err
		}
	}

	set := &FileSet{Units: make([]FileUnit, 0, len(paths))}
	for _, p := range paths {
		unit := FileUnit{Media: NewMediaFileRef(p)}

		if sidecarPath, ok := FindSidecar(p, opts.Match); ok {
			sidecar := NewMediaFileRef(sidecarPath)
			unit.Sidecar = &sidecar
		}

		if namer != nil {
			name := namer.Next(p)
			unit.Output = &MediaFileRef{
				Name:      name,
				Extension: filepath.Ext(name),
				Path:      filepath.Join(outputDir, name),
			}
		}
		set.Units = append(set.Units, unit)
	}
	return set, nil
}
