// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package renderer draws Newick trees as text.
package renderer

import (
	"strings"
	"unicode"

	"github.com/mdhender/newick"
)

const (
	horizontal = '─'
	vertical   = '│'
	downRight  = '┌'
	upRight    = '└'
	teeRight   = '├'
	teeLeft    = '┤'
	cross      = '┼'
)

var strictReplacer = strings.NewReplacer(
	string(horizontal), "-",
	string(vertical), "|",
	string(downRight), "/",
	string(upRight), `\`,
	string(teeRight), "|",
	string(teeLeft), "|",
	string(cross), "+",
)

type Renderer struct {
	showInternal bool
	strict       bool
}

func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		showInternal: true,
	}
	for _, option := range options {
		err := option(r)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Render returns the tree rooted at n drawn with one line per leaf.
// Names are drawn as they appear in the Newick text, quotes included.
func (r *Renderer) Render(n *newick.Node) string {
	maxlen := 0
	for _, node := range n.Walk() {
		if node.HasName() && (r.showInternal || node.IsLeaf()) {
			maxlen = max(maxlen, len([]rune(node.Name())))
		}
	}
	lines, _ := r.draw(n, horizontal, maxlen+4)

	var sb strings.Builder
	for _, line := range lines {
		if onlyBlanksAndBars(line) {
			continue
		}
		if sb.Len() != 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(r.normalize(line))
	}
	return sb.String()
}

// draw returns the lines of the subtree and the index of the line that
// carries the branch into n. char1 is the first character of that line.
func (r *Renderer) draw(n *newick.Node, char1 rune, maxlen int) ([][]rune, int) {
	namestr := append([]rune{horizontal}, []rune(n.Name())...)
	children := n.Descendants()
	if len(children) == 0 {
		return [][]rune{append([]rune{char1}, namestr...)}, 0
	}

	var mids []int
	var result [][]rune
	for i, child := range children {
		char2 := horizontal
		if len(children) > 1 {
			if i == 0 {
				char2 = downRight
			} else if i == len(children)-1 {
				char2 = upRight
			}
		}
		lines, mid := r.draw(child, char2, maxlen)
		mids = append(mids, mid+len(result))
		result = append(result, lines...)
		if i < len(children)-1 {
			result = append(result, nil)
		}
	}

	pad := []rune(strings.Repeat(" ", maxlen-1))
	bar := append(append([]rune{}, pad...), vertical)
	lo, hi := mids[0], mids[len(mids)-1]
	prefixes := make([][]rune, len(result))
	for i := range prefixes {
		if lo < i && i < hi {
			prefixes[i] = bar
		} else {
			prefixes[i] = pad
		}
	}
	mid := (lo + hi) / 2
	stem := prefixes[mid]
	branch := []rune{char1}
	for i := 0; i < len(stem)-2; i++ {
		branch = append(branch, horizontal)
	}
	prefixes[mid] = append(branch, stem[len(stem)-1])

	for i := range result {
		result[i] = append(append([]rune{}, prefixes[i]...), result[i]...)
	}
	if r.showInternal {
		line := result[mid]
		labelled := append([]rune{line[0]}, namestr...)
		if len(namestr)+1 < len(line) {
			labelled = append(labelled, line[len(namestr)+1:]...)
		}
		result[mid] = labelled
	}
	return result, mid
}

// normalize joins the vertical bars to the branches that cross them.
func (r *Renderer) normalize(line []rune) string {
	// a bar followed by blanks and another bar or corner loses one blank
	var out []rune
	for i := 0; i < len(line); {
		if line[i] == vertical {
			j := i + 1
			for j < len(line) && unicode.IsSpace(line[j]) {
				j++
			}
			if j > i+1 && j < len(line) && (line[j] == downRight || line[j] == upRight || line[j] == vertical) {
				out = append(out, vertical)
				out = append(out, line[i+2:j]...)
				i = j
				continue
			}
		}
		out = append(out, line[i])
		i++
	}

	s := string(out)
	s = strings.ReplaceAll(s, string([]rune{horizontal, vertical}), string([]rune{horizontal, teeLeft}))
	s = strings.ReplaceAll(s, string([]rune{vertical, horizontal}), string(teeRight))
	s = strings.ReplaceAll(s, string([]rune{teeLeft, horizontal}), string(cross))
	if r.strict {
		s = strictReplacer.Replace(s)
	}
	return s
}

// onlyBlanksAndBars reports lines made of spaces and vertical bars, with at least one of each.
func onlyBlanksAndBars(line []rune) bool {
	blanks, bars := false, false
	for _, ch := range line {
		switch ch {
		case ' ':
			blanks = true
		case vertical:
			bars = true
		default:
			return false
		}
	}
	return blanks && bars
}
