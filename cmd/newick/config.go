// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"bytes"
	"fmt"

	"github.com/mdhender/newick"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// Config is the optional TOML configuration file. Command line flags
// override its values.
type Config struct {
	Encoding      string       `toml:"encoding"`
	StripComments bool         `toml:"strip_comments"`
	AutoQuote     bool         `toml:"auto_quote"`
	Database      string       `toml:"database"`
	Workers       int          `toml:"workers"`
	Render        RenderConfig `toml:"render"`
}

// RenderConfig holds the defaults for the ascii command.
type RenderConfig struct {
	Strict       bool `toml:"strict"`
	ShowInternal bool `toml:"show_internal"`
}

func defaultConfig() *Config {
	return &Config{
		Encoding: "utf-8",
		Workers:  4,
		Render: RenderConfig{
			ShowInternal: true,
		},
	}
}

// loadConfig returns the defaults overlaid with the file, if one is named.
// Unknown keys are an error.
func loadConfig(fs afero.Fs, path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%s: workers must be positive", path)
	}
	return cfg, nil
}

// parserOptions returns the parser options for the configuration.
func (c *Config) parserOptions() []newick.Option {
	return []newick.Option{
		newick.WithStripComments(c.StripComments),
		newick.WithAutoQuote(c.AutoQuote),
	}
}
