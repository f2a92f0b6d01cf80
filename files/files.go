// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package files reads and writes Newick documents in a named text encoding.
package files

import (
	"fmt"

	"github.com/mdhender/newick"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when no encoding is named.
const DefaultEncoding = "utf-8"

// Encoding returns the encoding with the given WHATWG name or label,
// for example "utf-8", "latin1" or "windows-1252".
func Encoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultEncoding
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", name, err)
	}
	return e, nil
}

func isUTF8(e encoding.Encoding) bool {
	name, err := htmlindex.Name(e)
	return err == nil && name == "utf-8"
}

// ReadFile returns the text of a file. A UTF-8 byte order mark is removed.
func ReadFile(fs afero.Fs, path, enc string) (string, error) {
	e, err := Encoding(enc)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}
	decoder := e.NewDecoder()
	if isUTF8(e) {
		decoder = unicode.UTF8BOM.NewDecoder()
	}
	text, err := decoder.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%s: decode %s: %w", path, enc, err)
	}
	return string(text), nil
}

// WriteFile writes the text to a file, replacing it if it exists.
func WriteFile(fs afero.Fs, path, text, enc string) error {
	e, err := Encoding(enc)
	if err != nil {
		return err
	}
	data, err := e.NewEncoder().String(text)
	if err != nil {
		return fmt.Errorf("%s: encode %s: %w", path, enc, err)
	}
	return afero.WriteFile(fs, path, []byte(data), 0o644)
}

// Load reads and parses the trees in a file.
func Load(fs afero.Fs, path, enc string, options ...newick.Option) ([]*newick.Node, error) {
	text, err := ReadFile(fs, path, enc)
	if err != nil {
		return nil, err
	}
	trees, err := newick.ParseBytes(path, []byte(text), options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trees, nil
}

// Save writes the trees to a file as a Newick document.
func Save(fs afero.Fs, path, enc string, trees ...*newick.Node) error {
	return WriteFile(fs, path, newick.Dumps(trees...), enc)
}
