// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package renderer_test

import (
	"testing"

	"github.com/mdhender/newick"
	"github.com/mdhender/newick/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	testCases := []struct {
		tree         string
		showInternal bool
		want         string
	}{
		{"(A,(B,C)D)Ex;", true, "     /-A\n--Ex-|\n     |    /-B\n     \\-D--|\n          \\-C"},
		{"(A,(B,C)D)Ex;", false, "    /-A\n----|\n    |   /-B\n    \\---|\n        \\-C"},
		{"(A,B,C)D;", false, "    /-A\n----+-B\n    \\-C"},
		{"((A,B)C)Ex;", true, "          /-A\n--Ex --C--|\n          \\-B"},
		{"(,(,,),);", true, "   /-\n   |  /-\n---+--+-\n   |  \\-\n   \\-"},
		{"A;", true, "--A"},
	}
	for _, tc := range testCases {
		t.Run(tc.tree, func(t *testing.T) {
			trees, err := newick.Parse(tc.tree)
			require.NoError(t, err)
			r, err := renderer.New(renderer.WithStrict(true), renderer.WithShowInternal(tc.showInternal))
			require.NoError(t, err)
			if got := r.Render(trees[0]); got != tc.want {
				t.Errorf("got\n%s\nwant\n%s", got, tc.want)
			}
		})
	}
}

func TestRender_BoxDrawing(t *testing.T) {
	trees, err := newick.Parse("(A,B,C)D;")
	require.NoError(t, err)
	r, err := renderer.New(renderer.WithShowInternal(false))
	require.NoError(t, err)
	assert.Equal(t, "    ┌─A\n────┼─B\n    └─C", r.Render(trees[0]))
}

func TestNew_OptionError(t *testing.T) {
	_, err := renderer.New(func(*renderer.Renderer) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}
