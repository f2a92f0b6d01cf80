// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"math"
	"strconv"
	"strings"
)

// LengthParser converts the raw text of a branch length into a number.
type LengthParser func(raw string) (float64, error)

// LengthFormatter converts a number into the raw text of a branch length.
type LengthFormatter func(length float64) string

// ParseLength is the default LengthParser.
// An empty length is 0.0, anything else must be a float.
func ParseLength(raw string) (float64, error) {
	if raw == "" {
		return 0.0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0.0, &ValueError{Field: "length", Value: raw, Reason: "not a number"}
	}
	return f, nil
}

// FormatLength is the default LengthFormatter.
//
// It writes the shortest text that reads back as the same float, always
// with a decimal point, switching to exponent form for very small or very
// large values: 2 is "2.0", 0.00001 is "1e-05" and 1e16 is "1e+16".
func FormatLength(length float64) string {
	switch {
	case math.IsNaN(length):
		return "nan"
	case math.IsInf(length, 1):
		return "inf"
	case math.IsInf(length, -1):
		return "-inf"
	}
	if abs := math.Abs(length); abs == 0 || (1e-4 <= abs && abs < 1e16) {
		s := strconv.FormatFloat(length, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(length, 'e', -1, 64)
}
