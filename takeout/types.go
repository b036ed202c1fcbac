// Package takeout reconciles capture dates and locations between Google
// Photos Takeout media files and their JSON sidecars.
package takeout

import (
	"path/filepath"
	"time"
)

// MediaFileRef identifies a file on disk.
type MediaFileRef struct {
	Name      string
	Extension string
	Path      string
}

// NewMediaFileRef builds a ref from a path.
func NewMediaFileRef(path string) MediaFileRef {
	return MediaFileRef{
		Name:      filepath.Base(path),
		Extension: filepath.Ext(path),
		Path:      path,
	}
}

// FileUnit is one media file with its optional sidecar and output copy.
type FileUnit struct {
	Media   MediaFileRef
	Sidecar *MediaFileRef
	Output  *MediaFileRef
}

// Destination is the file that receives metadata and mod-time updates.
func (u FileUnit) Destination() MediaFileRef {
	if u.Output != nil {
		return *u.Output
	}
	return u.Media
}

// GeoLocation is a position with non-negative magnitudes and hemisphere refs.
type GeoLocation struct {
	Altitude     float64
	Latitude     float64
	LatitudeRef  string
	Longitude    float64
	LongitudeRef string
}

// SidecarMetadata is what a sidecar contributes to a media file.
type SidecarMetadata struct {
	Taken *time.Time
	Geo   *GeoLocation
}

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

// ISO renders the capture time the way the export documents it, or "" when
// the sidecar carries no time.
func (m *SidecarMetadata) ISO() string {
	if m == nil || m.Taken == nil {
		return ""
	}
	return m.Taken.UTC().Format(isoLayout)
}

// EmbeddedMetadata is what the metadata tool found inside a media file.
type EmbeddedMetadata struct {
	DateTimeOriginal *time.Time
}

// Action is the outcome the engine chose for a file.
type Action int

const (
	// ActionNone leaves the file untouched.
	ActionNone Action = iota
	// ActionSyncEmbedded syncs the mod time to the embedded date because no
	// usable sidecar date exists.
	ActionSyncEmbedded
	// ActionKeepEmbedded trusts an embedded date that passed the staleness check.
	ActionKeepEmbedded
	// ActionWriteSidecar wrote the sidecar metadata into the file.
	ActionWriteSidecar
	// ActionSyncSidecar synced the mod time to the sidecar date on a file
	// that cannot hold embedded metadata.
	ActionSyncSidecar
	// ActionFailed marks a file that could not be processed.
	ActionFailed
)

var actionNames = [...]string{
	ActionNone:         "none",
	ActionSyncEmbedded: "sync-embedded",
	ActionKeepEmbedded: "keep-embedded",
	ActionWriteSidecar: "write-sidecar",
	ActionSyncSidecar:  "sync-sidecar",
	ActionFailed:       "failed",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Actions lists every action in display order.
func Actions() []Action {
	return []Action{ActionWriteSidecar, ActionKeepEmbedded, ActionSyncEmbedded, ActionSyncSidecar, ActionNone, ActionFailed}
}

// Result is the per-file outcome of the engine. Err is set only for
// ActionFailed.
type Result struct {
	Unit        FileUnit
	Action      Action
	Timestamp   *time.Time
	CopiedBytes int64
	// Routed reports whether the file was copied into the error directory.
	Routed bool
	Err    error
}

// Failed reports whether the file could not be processed.
func (r Result) Failed() bool {
	return r.Err != nil
}
