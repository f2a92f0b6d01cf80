// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"fmt"
	"io"
	"time"
)

// Parse returns the trees in a Newick document.
//
// An empty or blank document has no trees. Any syntax error fails the
// whole document; no partial results are returned.
func Parse(text string, options ...Option) ([]*Node, error) {
	return ParseBytes("", []byte(text), options...)
}

// ParseBytes is Parse for a byte slice. The name is used only in log
// messages.
func ParseBytes(name string, input []byte, options ...Option) ([]*Node, error) {
	cfg, err := NewConfig(options...)
	if err != nil {
		return nil, err
	}
	started := time.Now()

	toks, err := NewLexer(name, input, cfg.Logger).Tokenize()
	if err != nil {
		return nil, err
	}
	statements, err := splitStatements(toks, cfg.StripComments)
	if err != nil {
		return nil, err
	}

	b := &builder{policy: cfg.Policy()}
	trees := make([]*Node, 0, len(statements))
	for _, statement := range statements {
		tree, err := b.build(statement)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}

	if cfg.Logger != nil {
		cfg.Logger.Debug("parse", "name", name, "bytes", len(input), "trees", len(trees), "elapsed", time.Since(started))
	}
	return trees, nil
}

// Load reads the whole of r and parses it.
func Load(r io.Reader, options ...Option) ([]*Node, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return ParseBytes("", input, options...)
}
