// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package renderer

type Option func(p *Renderer) error

// WithShowInternal controls whether the names of internal nodes are drawn.
// The default is true.
func WithShowInternal(flag bool) Option {
	return func(p *Renderer) error {
		p.showInternal = flag
		return nil
	}
}

// WithStrict replaces the box drawing characters with plain ASCII.
func WithStrict(flag bool) Option {
	return func(p *Renderer) error {
		p.strict = flag
		return nil
	}
}
