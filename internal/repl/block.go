// Package repl implements inline REPL blocks: comment lines of the form
// "# >>> expr" followed by the commented output of running them.
//
//	# >>> x = 21
//	# >>> x * 2
//	# 42
//	#
//
// The header lines hold the commands, the lines after them hold the output of
// the last run, and a line holding only the trimmed prefix closes the block.
package repl

import (
	"regexp"
	"strings"

	"github.com/itsmostafa/wingman/internal/document"
)

// promptPattern matches a header line. Group 1 is the comment prefix, group 2
// the command text after the >>> marker.
var promptPattern = regexp.MustCompile(`^(\s*#>?\s+)?>>>(.*)$`)

// BlankLine stands in for an empty output line so that it cannot be read as
// the block terminator.
const BlankLine = "<BLANKLINE>"

// Block is one parsed REPL block.
type Block struct {
	// HeaderLine is the line of the first prompt.
	HeaderLine int

	// HeaderRange covers all prompt lines.
	HeaderRange document.Range

	// OutputRange covers the previous output, including a consumed
	// terminator line. It is empty when there is no previous output.
	OutputRange document.Range

	// Commands are the prompt lines with the marker stripped, in order.
	Commands []string

	// Prefix is the whitespace and comment marker shared by every line.
	Prefix string

	// Output holds the previous output lines, terminator excluded.
	Output []string

	// Terminated reports whether a terminator line closed the block.
	Terminated bool

	// AtEnd reports that the block runs to the end of the document with no
	// output region, so new output must start on a fresh line.
	AtEnd bool

	// snapshot holds the raw text of every line the block spans.
	snapshot []string
}

// Code joins the commands into the source sent to an interpreter.
func (b *Block) Code() string {
	return strings.Join(b.Commands, "\n")
}

// Lines returns the number of document lines the block spans.
func (b *Block) Lines() int {
	return len(b.snapshot)
}

// ForeignOutput returns the output lines that a block without a comment
// prefix took over but that do not read as rendered output. Such a block ends
// only at a blank line, so code written right below it is claimed as output
// and is replaced on the next run.
func (b *Block) ForeignOutput() []string {
	if strings.TrimSpace(b.Prefix) != "" {
		return nil
	}
	var foreign []string
	for _, line := range b.Output {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			foreign = append(foreign, line)
		}
	}
	return foreign
}

// Unchanged reports whether src still holds the same text the block was
// scanned from.
func (b *Block) Unchanged(src document.LineSource) bool {
	if b.HeaderLine+len(b.snapshot) > src.LineCount() {
		return false
	}
	for i, line := range b.snapshot {
		if src.LineAt(b.HeaderLine+i) != line {
			return false
		}
	}
	return true
}

// IsPrompt reports whether line is a REPL header line.
func IsPrompt(line string) bool {
	return promptPattern.MatchString(strings.TrimRight(line, " \t"))
}

// matchPrompt returns the prefix and command of a header line.
func matchPrompt(line string) (prefix, command string, ok bool) {
	m := promptPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	// One space conventionally separates the marker from the code; any
	// further indentation belongs to the code.
	return m[1], strings.TrimPrefix(m[2], " "), true
}

// Scan parses the block starting at line start. It returns the line to
// continue scanning from and the block, or nil when start is not a header.
// The returned line is always greater than start.
func Scan(src document.LineSource, start int) (int, *Block) {
	lineCount := src.LineCount()
	if start < 0 {
		start = 0
	}
	if start >= lineCount {
		return start + 1, nil
	}

	prefix, _, ok := matchPrompt(trimEnd(src.LineAt(start)))
	if !ok {
		return start + 1, nil
	}

	block := &Block{HeaderLine: start, Prefix: prefix}
	lineNum := start

	// Header: consecutive prompt lines sharing the prefix
	for ; lineNum < lineCount; lineNum++ {
		line := trimEnd(src.LineAt(lineNum))
		if !strings.HasPrefix(line, prefix) {
			break
		}
		_, command, ok := matchPrompt(line)
		if !ok {
			break
		}
		block.Commands = append(block.Commands, command)
	}
	outputLine := lineNum

	// Output: prefixed lines up to a terminator, a new prompt or foreign text
	terminator := strings.TrimSpace(prefix)
	for ; lineNum < lineCount; lineNum++ {
		line := trimEnd(src.LineAt(lineNum))
		if line == terminator {
			block.Terminated = true
			lineNum++
			break
		}
		if IsPrompt(line) || !strings.HasPrefix(line, prefix) {
			break
		}
		block.Output = append(block.Output, line)
	}

	last := lineCount - 1
	headerEnd := clamp(outputLine-1, 0, last)
	block.HeaderRange = document.Range{
		Start: document.Position{Line: start},
		End:   document.Position{Line: headerEnd, Char: len(src.LineAt(headerEnd))},
	}

	switch {
	case lineNum > outputLine:
		end := clamp(lineNum-1, 0, last)
		block.OutputRange = document.Range{
			Start: document.Position{Line: outputLine},
			End:   document.Position{Line: end, Char: len(src.LineAt(end))},
		}
	case outputLine <= last:
		pos := document.Position{Line: outputLine}
		block.OutputRange = document.Range{Start: pos, End: pos}
	default:
		// No room left: an empty range at the very end of the document
		pos := document.Position{Line: last, Char: len(src.LineAt(last))}
		block.OutputRange = document.Range{Start: pos, End: pos}
		block.AtEnd = true
	}

	for i := start; i < lineNum && i < lineCount; i++ {
		block.snapshot = append(block.snapshot, src.LineAt(i))
	}

	return lineNum, block
}

func trimEnd(s string) string {
	return strings.TrimRight(s, " \t\r")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
