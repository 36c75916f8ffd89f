package repl

import (
	"regexp"
	"strings"
)

// defaultPrefix is used for output lines when the block has no comment prefix.
const defaultPrefix = "# "

var lineBreak = regexp.MustCompile(`\r?\n`)

// Render turns raw interpreter output into the text that replaces a block's
// output range. rangeEmpty reports whether the range being replaced is empty;
// in that case the result ends with a newline because nothing follows it on
// the insertion line.
func Render(output string, rangeEmpty bool, prefix string) string {
	terminator := strings.TrimSpace(prefix)
	if strings.TrimSpace(output) == "" {
		return terminator + "\n"
	}

	lines := lineBreak.Split(output, -1)
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	commentPrefix := prefix
	if commentPrefix == "" {
		commentPrefix = defaultPrefix
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(commentPrefix)
		if line == "" {
			b.WriteString(BlankLine)
		} else {
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.TrimSpace(commentPrefix))
	if rangeEmpty {
		b.WriteByte('\n')
	}
	return b.String()
}

// Decode recovers the plain output text from a block's rendered output lines.
func Decode(lines []string, prefix string) []string {
	commentPrefix := prefix
	if commentPrefix == "" {
		commentPrefix = defaultPrefix
	}

	decoded := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimPrefix(line, commentPrefix)
		if line == BlankLine {
			line = ""
		}
		decoded = append(decoded, line)
	}
	return decoded
}
