package takeout

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/bleemesser/photoexif/util"
)

// MetadataTool reads and writes embedded metadata. Read must not fail on
// missing tags, only on unreadable files. Write overwrites the target in
// place and either fully succeeds or leaves it untouched.
type MetadataTool interface {
	Read(path string) (EmbeddedMetadata, error)
	Write(path string, md *SidecarMetadata) error
}

const exifDateLayout = "2006:01:02 15:04:05"

var exifDateLayouts = []string{
	"2006:01:02 15:04:05Z07:00",
	exifDateLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ExifTool is the MetadataTool backed by a stay-open exiftool process.
type ExifTool struct {
	et     *exiftool.Exiftool
	logger *slog.Logger
}

// NewExifTool starts exiftool. An empty binary uses the one found in PATH.
func NewExifTool(binary string, logger *slog.Logger) (*ExifTool, error) {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	var opts []func(*exiftool.Exiftool) error
	if binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binary))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	return &ExifTool{et: et, logger: logger}, nil
}

func (t *ExifTool) Read(path string) (EmbeddedMetadata, error) {
	fms := t.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return EmbeddedMetadata{}, fmt.Errorf("exiftool returned no metadata for %s", path)
	}
	if fms[0].Err != nil {
		return EmbeddedMetadata{}, fmt.Errorf("read metadata of %s: %w", path, fms[0].Err)
	}

	var md EmbeddedMetadata
	if s, err := fms[0].GetString("DateTimeOriginal"); err == nil {
		if ts, ok := parseExifDate(s); ok {
			md.DateTimeOriginal = &ts
		}
	}
	return md, nil
}

func (t *ExifTool) Write(path string, md *SidecarMetadata) error {
	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	setTags(&fm, md)
	if len(fm.Fields) == 0 {
		return nil
	}

	fms := []exiftool.FileMetadata{fm}
	t.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return &WriteError{Path: path, Err: fms[0].Err}
	}
	cleanupBackup(path, t.logger)
	return nil
}

func (t *ExifTool) Close() error {
	return t.et.Close()
}

// setTags converts sidecar metadata into exiftool tags.
func setTags(fm *exiftool.FileMetadata, md *SidecarMetadata) {
	if md == nil {
		return
	}
	if md.Taken != nil {
		fm.SetString("DateTimeOriginal", md.Taken.UTC().Format(exifDateLayout))
		fm.SetString("OffsetTimeOriginal", "+00:00")
	}
	if md.Geo != nil {
		fm.SetFloat("GPSAltitude", md.Geo.Altitude)
		fm.SetFloat("GPSLatitude", md.Geo.Latitude)
		fm.SetString("GPSLatitudeRef", md.Geo.LatitudeRef)
		fm.SetFloat("GPSLongitude", md.Geo.Longitude)
		fm.SetString("GPSLongitudeRef", md.Geo.LongitudeRef)
	}
}

// removeBackup deletes the <file>_original copy exiftool leaves behind when
// it is not told to overwrite in place.
func removeBackup(path string) error {
	err := os.Remove(path + "_original")
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("remove exiftool backup of %s: %w", path, err)
}

// cleanupBackup removes a leftover backup after a successful write. The
// metadata is already in place, so a failure here is only worth a warning.
func cleanupBackup(path string, logger *slog.Logger) {
	if err := removeBackup(path); err != nil {
		logger.Warn("could not remove exiftool backup", slog.String("file", path), slog.String("error", err.Error()))
	}
}

// parseExifDate parses the date formats exiftool and EXIF use. Dates without
// a zone are taken as local time. Zeroed placeholder dates are rejected.
func parseExifDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000") {
		return time.Time{}, false
	}
	for _, layout := range exifDateLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

var errReadOnly = errors.New("metadata writes need exiftool, which is not available")

// NativeReader reads EXIF dates without exiftool. It cannot write, so it only
// serves dry runs on machines without exiftool.
type NativeReader struct{}

func (NativeReader) Read(path string) (EmbeddedMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return EmbeddedMetadata{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// most videos and PNGs simply carry no EXIF block
		return EmbeddedMetadata{}, nil
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return EmbeddedMetadata{}, nil
	}
	s, err := tag.StringVal()
	if err != nil {
		return EmbeddedMetadata{}, nil
	}

	var md EmbeddedMetadata
	if ts, ok := parseExifDate(s); ok {
		md.DateTimeOriginal = &ts
	}
	return md, nil
}

func (NativeReader) Write(path string, _ *SidecarMetadata) error {
	return &WriteError{Path: path, Err: errReadOnly}
}
