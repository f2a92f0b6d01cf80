// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick_test

import (
	"math"
	"testing"

	"github.com/mdhender/newick"
)

func TestFormatLength(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{0.1, "0.1"},
		{-1.5, "-1.5"},
		{3.0000000000000004, "3.0000000000000004"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{1.5e-7, "1.5e-07"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	} {
		if got := newick.FormatLength(tc.in); got != tc.want {
			t.Errorf("FormatLength(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseLength(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"1", 1},
		{"2e+01", 20},
		{"-0.25", -0.25},
		{"9E-01", 0.9},
	} {
		got, err := newick.ParseLength(tc.in)
		if err != nil {
			t.Errorf("ParseLength(%q): %v", tc.in, err)
		} else if got != tc.want {
			t.Errorf("ParseLength(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for _, in := range []string{"x", "3j", "1.2.3"} {
		if _, err := newick.ParseLength(in); err == nil {
			t.Errorf("ParseLength(%q): want error", in)
		}
	}
}
