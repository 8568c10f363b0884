// Package gps parses geographic coordinates out of EXIF tag values.
//
// EXIF tools emit coordinates either as signed decimal degrees or as
// degrees/minutes/seconds strings with a hemisphere letter. Both forms are
// handled here as pure string-to-float conversions so they can be tested
// without touching the filesystem or a subprocess.
package gps

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// dmsPattern matches exiftool-style DMS strings such as
// `51 deg 3' 1.44" N` or `13°44'14.28"E`. Minutes and seconds are optional.
var dmsPattern = regexp.MustCompile(
	`^\s*(\d+(?:\.\d+)?)\s*(?:deg|°)\s*(?:(\d+(?:\.\d+)?)\s*')?\s*(?:(\d+(?:\.\d+)?)\s*(?:"|''))?\s*([NSEWnsew])?\s*$`)

// decimalPattern matches plain decimal degrees with an optional trailing
// hemisphere letter, e.g. "51.0504" or "13.7373 E".
var decimalPattern = regexp.MustCompile(
	`^\s*([+-]?\d+(?:\.\d+)?)\s*([NSEWnsew])?\s*$`)

// Parse converts a coordinate string to signed decimal degrees. Decimal and
// DMS notations are accepted; a hemisphere letter inside the string signs the
// result (S and W are negative).
func Parse(s string) (float64, error) {
	if m := decimalPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid decimal coordinate %q: %w", s, err)
		}
		return ApplyRef(v, m[2]), nil
	}

	if m := dmsPattern.FindStringSubmatch(s); m != nil {
		return parseDMSParts(m[1], m[2], m[3], m[4])
	}

	return 0, fmt.Errorf("unrecognized coordinate format %q", s)
}

// ParseDMS converts a degrees/minutes/seconds string to signed decimal
// degrees. Unlike Parse it rejects plain decimal input.
func ParseDMS(s string) (float64, error) {
	m := dmsPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("not a DMS coordinate: %q", s)
	}
	return parseDMSParts(m[1], m[2], m[3], m[4])
}

func parseDMSParts(deg, min, sec, ref string) (float64, error) {
	d, err := strconv.ParseFloat(deg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid degrees %q: %w", deg, err)
	}

	var m, s float64
	if min != "" {
		if m, err = strconv.ParseFloat(min, 64); err != nil {
			return 0, fmt.Errorf("invalid minutes %q: %w", min, err)
		}
	}
	if sec != "" {
		if s, err = strconv.ParseFloat(sec, 64); err != nil {
			return 0, fmt.Errorf("invalid seconds %q: %w", sec, err)
		}
	}

	if m >= 60 || s >= 60 {
		return 0, fmt.Errorf("minutes and seconds must be below 60 in %q %q", min, sec)
	}

	return ApplyRef(d+m/60+s/3600, ref), nil
}

// ApplyRef signs a coordinate according to a hemisphere reference letter.
// S and W make the value negative; N, E and an empty ref leave it untouched.
// A value that already carries a sign is never flipped back to positive.
func ApplyRef(v float64, ref string) float64 {
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		if v > 0 {
			return -v
		}
	}
	return v
}

// ValidLatitude reports whether v is a finite latitude in [-90, 90].
func ValidLatitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -90 && v <= 90
}

// ValidLongitude reports whether v is a finite longitude in [-180, 180].
func ValidLongitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -180 && v <= 180
}

// Format renders a decimal coordinate with the shortest representation that
// round-trips through Parse exactly.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round rounds a coordinate to the given number of decimal places, halves
// away from zero. Six decimals keep roughly 0.1m of precision.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
