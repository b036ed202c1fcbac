package takeout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeSidecarTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      string
	}{
		{name: "whole seconds", timestamp: "1577836800", want: "2020-01-01T00:00:00.000Z"},
		{name: "before epoch", timestamp: "-86400", want: "1969-12-31T00:00:00.000Z"},
		// "1.5" + "000" is 1.5000 milliseconds, not 1500
		{name: "decimal keeps string semantics", timestamp: "1.5", want: "1970-01-01T00:00:00.001Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"photoTakenTime": {"timestamp": "` + tt.timestamp + `"}}`
			md, err := DecodeSidecar(strings.NewReader(doc))
			if err != nil {
				t.Fatal(err)
			}
			if got := md.ISO(); got != tt.want {
				t.Fatalf("ISO() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeSidecarWithoutTimestamp(t *testing.T) {
	for _, doc := range []string{`{}`, `{"photoTakenTime": {}}`, `{"photoTakenTime": {"timestamp": ""}}`} {
		md, err := DecodeSidecar(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("%s: %v", doc, err)
		}
		if md.Taken != nil {
			t.Fatalf("%s: expected no capture time, got %v", doc, md.Taken)
		}
		if md.ISO() != "" {
			t.Fatalf("%s: expected empty ISO, got %q", doc, md.ISO())
		}
	}
}

func TestDecodeSidecarRejectsBadTimestamp(t *testing.T) {
	for _, ts := range []string{"yesterday", "99999999999999"} {
		doc := `{"photoTakenTime": {"timestamp": "` + ts + `"}}`
		if _, err := DecodeSidecar(strings.NewReader(doc)); err == nil {
			t.Fatalf("timestamp %q: expected an error", ts)
		}
	}
}

func TestDecodeSidecarGeo(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want *GeoLocation
	}{
		{
			name: "southern and eastern hemisphere",
			doc:  `{"geoData": {"latitude": -33.5, "longitude": 151.2, "altitude": 10}}`,
			want: &GeoLocation{Altitude: 10, Latitude: 33.5, LatitudeRef: "S", Longitude: 151.2, LongitudeRef: "E"},
		},
		{
			name: "northern and western hemisphere",
			doc:  `{"geoData": {"latitude": 40.7, "longitude": -74.0, "altitude": 5}}`,
			want: &GeoLocation{Altitude: 5, Latitude: 40.7, LatitudeRef: "N", Longitude: 74.0, LongitudeRef: "W"},
		},
		{
			name: "all zero primary falls back to exif block",
			doc:  `{"geoData": {"latitude": 0, "longitude": 0, "altitude": 0}, "geoDataExif": {"latitude": 1, "longitude": 2, "altitude": 3}}`,
			want: &GeoLocation{Altitude: 3, Latitude: 1, LatitudeRef: "N", Longitude: 2, LongitudeRef: "E"},
		},
		{
			name: "zero altitude alone triggers the fallback",
			doc:  `{"geoData": {"latitude": 10, "longitude": 20, "altitude": 0}, "geoDataExif": {"latitude": 11, "longitude": 21, "altitude": 31}}`,
			want: &GeoLocation{Altitude: 31, Latitude: 11, LatitudeRef: "N", Longitude: 21, LongitudeRef: "E"},
		},
		{
			name: "missing primary uses exif block",
			doc:  `{"geoDataExif": {"latitude": -1, "longitude": -2, "altitude": 3}}`,
			want: &GeoLocation{Altitude: 3, Latitude: 1, LatitudeRef: "S", Longitude: 2, LongitudeRef: "W"},
		},
		{
			name: "fallback all zero yields no location",
			doc:  `{"geoData": {"latitude": 10, "longitude": 20, "altitude": 0}, "geoDataExif": {"latitude": 0, "longitude": 0, "altitude": 0}}`,
		},
		{
			name: "no geo blocks",
			doc:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := DecodeSidecar(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == nil {
				if md.Geo != nil {
					t.Fatalf("expected no location, got %+v", *md.Geo)
				}
				return
			}
			if md.Geo == nil {
				t.Fatalf("expected %+v, got no location", *tt.want)
			}
			if *md.Geo != *tt.want {
				t.Fatalf("geo = %+v, want %+v", *md.Geo, *tt.want)
			}
		})
	}
}

func TestParseSidecarErrors(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, filepath.Join(dir, "broken.json"), `{"photoTakenTime": `)

	for _, path := range []string{broken, filepath.Join(dir, "missing.json")} {
		_, err := ParseSidecar(path)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("%s: expected *ParseError, got %v", path, err)
		}
		if perr.Path != path {
			t.Fatalf("ParseError.Path = %s, want %s", perr.Path, path)
		}
	}

	_, err := ParseSidecar(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected the cause to be kept, got %v", err)
	}
}
