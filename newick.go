// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package newick reads and writes trees in the Newick format.
//
// A document is a sequence of trees separated by semicolons:
//
//	(A:0.1,B:0.2,(C:0.3,D:0.4)E:0.5)F;
//
// Names may be quoted ('A,B' is a single name), comments in square
// brackets may nest, and every node may carry a branch length. The raw
// text of names, lengths and comments is kept, so parsing and writing a
// document produced by this package gives back the same bytes.
package newick

import (
	"github.com/maloquacious/semver"
)

var (
	version = semver.Version{
		Major: 0,
		Minor: 1,
		Patch: 0,
		Build: semver.Commit(),
	}
)

func Version() semver.Version {
	return version
}
