// Package celloptions documents and inserts Quarto cell options, the
// "#| key: value" comments at the top of an executable code cell.
package celloptions

import (
	"regexp"
	"strings"

	"github.com/itsmostafa/wingman/internal/document"
)

var (
	optionLine  = regexp.MustCompile(`^#\s?\|`)
	wordPattern = regexp.MustCompile(`[a-zA-Z0-9_-]+`)
)

// Hover is the help shown for the option under the cursor.
type Hover struct {
	Range    document.Range
	Group    string
	Key      string
	Markdown string
}

// HoverAt returns help for the option word at pos on a "#|" line.
func HoverAt(src document.LineSource, pos document.Position) (Hover, bool) {
	if pos.Line < 0 || pos.Line >= src.LineCount() {
		return Hover{}, false
	}
	line := src.LineAt(pos.Line)
	if !optionLine.MatchString(strings.TrimLeft(line, " \t")) {
		return Hover{}, false
	}

	start, end, ok := wordAt(line, pos.Char)
	if !ok {
		return Hover{}, false
	}
	key := line[start:end]

	group, opt, ok := Lookup(key)
	if !ok {
		return Hover{}, false
	}

	return Hover{
		Range: document.Range{
			Start: document.Position{Line: pos.Line, Char: start},
			End:   document.Position{Line: pos.Line, Char: end},
		},
		Group:    group.Name,
		Key:      key,
		Markdown: "### " + group.Name + "\n\n" + strings.Join(opt.Doc, "\n"),
	}, true
}

// wordAt finds the word touching char, including a cursor just past its end.
func wordAt(line string, char int) (int, int, bool) {
	for _, m := range wordPattern.FindAllStringIndex(line, -1) {
		if m[0] <= char && char <= m[1] {
			return m[0], m[1], true
		}
	}
	return 0, 0, false
}
