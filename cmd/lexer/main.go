// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Command lexer prints the tokens of Newick files, one per line.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/mdhender/newick"
	"github.com/mdhender/newick/files"
	"github.com/spf13/afero"
)

func main() {
	log.SetFlags(log.Lshortfile)

	structuralOnly := os.Getenv("LEXER_STRUCTURAL_ONLY") != ""
	for _, file := range os.Args[1:] {
		started := time.Now()
		if err := scan(afero.NewOsFs(), file, structuralOnly); err != nil {
			fmt.Printf("%s: failed %v\n", file, err)
			continue
		}
		fmt.Printf("%s: completed in %v\n", file, time.Since(started))
	}
}

func scan(fs afero.Fs, file string, structuralOnly bool) error {
	text, err := files.ReadFile(fs, file, files.DefaultEncoding)
	if err != nil {
		return err
	}
	input := []byte(text)
	toks, err := newick.NewLexer(file, input, slog.Default()).Tokenize()
	if err != nil {
		return err
	}
	for n, tok := range toks {
		if structuralOnly && !tok.IsStructural() {
			continue
		}
		fmt.Printf("%-35s %5d %-12s depth %2d %q\n", fmt.Sprintf("%s:%d:%d:", file, tok.Line, tok.Column), n+1, tok.Kind, tok.Depth, tok.Lexeme(input))
	}
	return nil
}
