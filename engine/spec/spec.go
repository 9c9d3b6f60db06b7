// Package spec holds the immutable registry of supported CycloneDX schema versions.
//
// Each entry declares the output formats it supports, the optional model features it
// supports, and the per-version enumerations (component types, hash algorithms, external
// reference types, rating methods). Feature support is stored as explicit per-version sets:
// a later version may drop a feature an earlier one had.
package spec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version identifies one CycloneDX schema revision.
type Version string

const (
	V1_0 Version = "1.0"
	V1_1 Version = "1.1"
	V1_2 Version = "1.2"
	V1_3 Version = "1.3"
	V1_4 Version = "1.4"
	V1_5 Version = "1.5"
	V1_6 Version = "1.6"
)

// Latest is the newest supported version.
const Latest = V1_6

// ordered lists every known version, oldest first.
var ordered = []Version{V1_0, V1_1, V1_2, V1_3, V1_4, V1_5, V1_6}

var (
	// ErrUnknownVersion is returned for a version that is not in the registry.
	ErrUnknownVersion = errors.New("unknown spec version")
	// ErrUnknownFormat is returned when a format name cannot be parsed.
	ErrUnknownFormat = errors.New("unknown format")
)

func (v Version) String() string {
	return string(v)
}

// Known reports whether v is in the registry.
func (v Version) Known() bool {
	return v.index() >= 0
}

func (v Version) index() int {
	for i, known := range ordered {
		if known == v {
			return i
		}
	}
	return -1
}

// Compare orders versions: -1 when v is older than other, 0 when equal, 1 when newer.
// Unknown versions sort before every known one.
func (v Version) Compare(other Version) int {
	a, b := v.index(), other.index()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// All returns every known version, oldest first.
func All() []Version {
	out := make([]Version, len(ordered))
	copy(out, ordered)
	return out
}

// ParseVersion accepts "1.5", "v1.5" and "1.5.0" forms.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownVersion)
	}
	parsed, err := semver.NewVersion(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrUnknownVersion, s, err)
	}
	if parsed.Patch() != 0 || parsed.Prerelease() != "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, s)
	}
	v := Version(fmt.Sprintf("%d.%d", parsed.Major(), parsed.Minor()))
	if !v.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, s)
	}
	return v, nil
}

// Format is a concrete document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: json, xml)", ErrUnknownFormat, s)
	}
}

// MediaType returns the CycloneDX media type for the format.
func (f Format) MediaType() string {
	switch f {
	case FormatJSON:
		return "application/vnd.cyclonedx+json"
	case FormatXML:
		return "application/vnd.cyclonedx+xml"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the conventional file extension, with dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".cdx.json"
	case FormatXML:
		return ".cdx.xml"
	default:
		return ""
	}
}

// FormatFromPath infers the format from a file name ending in .json or .xml, including the
// .cdx.json and .cdx.xml forms.
func FormatFromPath(path string) (Format, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON, true
	case strings.HasSuffix(lower, ".xml"):
		return FormatXML, true
	default:
		return "", false
	}
}
