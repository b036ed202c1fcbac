package takeout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// sidecarDocument mirrors the fields we read from a Takeout JSON sidecar.
type sidecarDocument struct {
	PhotoTakenTime *struct {
		Timestamp string `json:"timestamp"`
	} `json:"photoTakenTime"`
	GeoData     *geoBlock `json:"geoData"`
	GeoDataExif *geoBlock `json:"geoDataExif"`
}

type geoBlock struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Largest magnitude a JavaScript Date accepts, in milliseconds.
const maxDateMillis = 8.64e15

// ParseSidecar reads and decodes the sidecar at path.
func ParseSidecar(path string) (*SidecarMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	md, err := DecodeSidecar(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return md, nil
}

// DecodeSidecar decodes a sidecar document.
func DecodeSidecar(r io.Reader) (*SidecarMetadata, error) {
	var doc sidecarDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	md := &SidecarMetadata{}
	if doc.PhotoTakenTime != nil && doc.PhotoTakenTime.Timestamp != "" {
		taken, err := parseTakenTimestamp(doc.PhotoTakenTime.Timestamp)
		if err != nil {
			return nil, err
		}
		md.Taken = &taken
	}
	md.Geo = selectGeo(doc.GeoData, doc.GeoDataExif)
	return md, nil
}

// parseTakenTimestamp turns the exported seconds string into a time. The
// export documents seconds as a string, so milliseconds are obtained by
// appending three zero digits rather than by multiplying.
func parseTakenTimestamp(seconds string) (time.Time, error) {
	ms, err := strconv.ParseFloat(strings.TrimSpace(seconds)+"000", 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("photoTakenTime.timestamp %q is not a number", seconds)
	}
	if math.IsNaN(ms) || math.Abs(ms) > maxDateMillis {
		return time.Time{}, errors.New("photoTakenTime.timestamp " + strconv.Quote(seconds) + " is out of range")
	}
	return time.UnixMilli(int64(math.Trunc(ms))).UTC(), nil
}

// selectGeo picks geoData unless it is missing or any coordinate is zero, in
// which case geoDataExif is used. Zero means "unset" in the export even
// though it is a valid position.
func selectGeo(primary, fallback *geoBlock) *GeoLocation {
	geo := primary
	if geo == nil || geo.Altitude == 0 || geo.Latitude == 0 || geo.Longitude == 0 {
		geo = fallback
	}
	if geo == nil || (geo.Altitude == 0 && geo.Latitude == 0 && geo.Longitude == 0) {
		return nil
	}

	loc := &GeoLocation{Altitude: geo.Altitude}
	if geo.Latitude >= 0 {
		loc.Latitude, loc.LatitudeRef = geo.Latitude, "N"
	} else {
		loc.Latitude, loc.LatitudeRef = -geo.Latitude, "S"
	}
	if geo.Longitude >= 0 {
		loc.Longitude, loc.LongitudeRef = geo.Longitude, "E"
	} else {
		loc.Longitude, loc.LongitudeRef = -geo.Longitude, "W"
	}
	return loc
}
