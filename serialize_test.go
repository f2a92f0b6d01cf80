// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package newick_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdhender/newick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumps(t *testing.T) {
	for _, text := range []string{
		"(,,(,));",
		"(A,B,(C,D));",
		"(A,B,(C,D)E)F;",
		"(:0.1,:0.2,(:0.3,:0.4):0.5);",
		"((B:0.2,(C:0.3,D:0.4)E:0.5)F:0.1)A;",
	} {
		if got := newick.Dumps(mustParseOne(t, text)); got != text {
			t.Errorf("Dumps(%q) = %q", text, got)
		}
	}

	trees := mustParse(t, "A;(B,C)D;")
	assert.Equal(t, "A;\n(B,C)D;", newick.Dumps(trees...))
	assert.Equal(t, ";", newick.Dumps())

	var buf bytes.Buffer
	require.NoError(t, newick.Dump(&buf, trees...))
	assert.Equal(t, "A;\n(B,C)D;", buf.String())
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{
		"A",
		"'A B'",
		"'A''B'",
		`'A\'B'`,
		"(A,B)C[&k1=v1]:[&k2=v2]2.0",
		"(A,B)C:[&k2=v2]2.0",
		"(A,B)C[x]:2.0[y]",
		"(A[a],B[b[c]])C[% ]",
		"('A;B',C)D",
		"((a:1.e2,b:3j),(c:0x0BEFD6B0,d:003))",
		"(A:1[c1][c2],B)",
		"[c]",
		":1",
		"'a\r\nb'[x\r\ny]",
		"(A[x\ny],'B\r\nC':1)",
	} {
		tree := mustParseOne(t, text)
		if got := tree.Newick(); got != text {
			t.Errorf("round trip %q: got %q", text, got)
		}
		// serializing is stable
		again := mustParseOne(t, tree.Newick())
		assert.Equal(t, tree.Newick(), again.Newick())
	}
}

func TestRoundTrip_LineBreaks(t *testing.T) {
	n, err := newick.NewNode("a\r\nb", "", newick.WithAutoQuote(true))
	require.NoError(t, err)
	n.AddComment("x\r\ny")
	want := newick.Dumps(n)
	assert.Equal(t, "'a\r\nb'[x\r\ny];", want)

	trees := mustParse(t, want)
	assert.Equal(t, want, newick.Dumps(trees...))
	assert.Equal(t, []string{"x\r\ny"}, trees[0].Comments())
}

func TestRoundTrip_NESCent(t *testing.T) {
	fp, err := os.Open(filepath.Join("testdata", "nescent.tsv"))
	require.NoError(t, err)
	defer fp.Close()

	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		id, text, ok := strings.Cut(scanner.Text(), "\t")
		if !ok {
			continue
		}
		t.Run(id, func(t *testing.T) {
			tree := mustParseOne(t, text)
			if got := tree.Newick(); got != text {
				t.Errorf("%s\nwant %s\n got %s", id, text, got)
			}
		})
	}
	require.NoError(t, scanner.Err())
}

func TestRoundTrip_Comments(t *testing.T) {
	input, err := os.ReadFile(filepath.Join("testdata", "comments.nwk"))
	require.NoError(t, err)
	text := strings.TrimSuffix(strings.TrimSpace(string(input)), ";")

	tree := mustParseOne(t, text)
	assert.True(t, strings.HasPrefix(tree.Comment(), "y"))
	assert.Equal(t, "1", tree.Descendants()[0].Name())
	assert.Equal(t, "x&dmv={1},dmv1=0.260,dmv1_95%_hpd={0.003,0.625}", tree.Descendants()[0].Comment()[:47])
	assert.Equal(t, text, tree.Newick())
}

func TestRoundTrip_BEAST(t *testing.T) {
	input, err := os.ReadFile(filepath.Join("testdata", "beast.nwk"))
	require.NoError(t, err)
	text := strings.TrimSuffix(strings.TrimSpace(string(input)), ";")

	tree := mustParseOne(t, text)
	first := tree.Descendants()[0]
	assert.Equal(t, "&rate=9.363171791537587E-5", first.Comment())
	assert.False(t, first.HasName())
	length, err := first.Length()
	require.NoError(t, err)
	assert.InDelta(t, 301.4581721015056, length, 1e-9)
	assert.Equal(t, text, tree.Newick())
}

func TestNewick_ProgrammaticLabels(t *testing.T) {
	n := mustNode(t, "A", "1")
	n.AddComment("x")
	assert.Equal(t, "A[x]:1", n.Newick())

	// a parsed label with all comments after the colon keeps that order
	// when its comments change
	tree := mustParseOne(t, "A:[x]1")
	tree.AddComment("y")
	assert.Equal(t, "A:[x|y]1", tree.Newick())

	// a length added to a parsed label goes after its comments
	tree = mustParseOne(t, "A[x]")
	require.NoError(t, tree.SetLength(0.5))
	assert.Equal(t, "A[x]:0.5", tree.Newick())
}
