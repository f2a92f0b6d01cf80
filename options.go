// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick

import (
	"fmt"
	"log/slog"
)

// ConfigVersion is bumped whenever a field is added to or removed from Config.
const ConfigVersion = 1

// Config holds the settings recognized by Parse and NewNode.
type Config struct {
	Version int

	// StripComments discards all comments while parsing.
	StripComments bool

	// AutoQuote wraps names containing reserved characters in quotes
	// instead of rejecting them.
	AutoQuote bool

	// ParseLength and FormatLength are the length policy copied into
	// every node created with this configuration.
	ParseLength  LengthParser
	FormatLength LengthFormatter

	// Logger traces the tokenizer and builder. Nil disables tracing.
	Logger *slog.Logger
}

type Option func(c *Config) error

// NewConfig returns the default configuration with the options applied.
func NewConfig(options ...Option) (*Config, error) {
	c := &Config{
		Version:      ConfigVersion,
		ParseLength:  ParseLength,
		FormatLength: FormatLength,
	}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Policy returns a new policy from the configuration.
func (c *Config) Policy() *Policy {
	return &Policy{
		ParseLength:  c.ParseLength,
		FormatLength: c.FormatLength,
		AutoQuote:    c.AutoQuote,
	}
}

func WithAutoQuote(flag bool) Option {
	return func(c *Config) error {
		c.AutoQuote = flag
		return nil
	}
}

// WithConfig replaces the configuration with a copy of cfg.
// It fails if cfg was built for a different version of the package.
func WithConfig(cfg Config) Option {
	return func(c *Config) error {
		if cfg.Version != ConfigVersion {
			return fmt.Errorf("config: version %d: want %d", cfg.Version, ConfigVersion)
		}
		*c = cfg
		if c.ParseLength == nil {
			c.ParseLength = ParseLength
		}
		if c.FormatLength == nil {
			c.FormatLength = FormatLength
		}
		return nil
	}
}

// WithLengthFormatter sets the length formatter. A nil formatter restores the default.
func WithLengthFormatter(fn LengthFormatter) Option {
	return func(c *Config) error {
		if fn == nil {
			fn = FormatLength
		}
		c.FormatLength = fn
		return nil
	}
}

// WithLengthParser sets the length parser. A nil parser restores the default.
// Raw length text is always kept verbatim, so a parser never changes
// how a length is written back out.
func WithLengthParser(fn LengthParser) Option {
	return func(c *Config) error {
		if fn == nil {
			fn = ParseLength
		}
		c.ParseLength = fn
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

func WithStripComments(flag bool) Option {
	return func(c *Config) error {
		c.StripComments = flag
		return nil
	}
}
