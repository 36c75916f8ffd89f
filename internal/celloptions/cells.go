package celloptions

import (
	"regexp"
	"strings"

	"github.com/itsmostafa/wingman/internal/document"
)

// executableInfo matches the first word of an executable fence's info
// string: "{python}", "{r, echo=FALSE}", "{julia,".
var executableInfo = regexp.MustCompile(`^\{(r|python|julia|bash|sql)([,}]|$)`)

var fenceOpen = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})(.*)$")

// Cell is an executable code cell found in a Quarto document.
type Cell struct {
	// FenceLine is the line of the opening fence
	FenceLine int
	// EndLine is the line of the closing fence, or the last line when unclosed
	EndLine  int
	Language string
	Info     string
}

// Title is the label of the lens placed on the fence.
func (c Cell) Title() string {
	return "Cell Options"
}

// Cells returns every executable fenced cell. Fences with other info strings
// are skipped along with their contents.
func Cells(src document.LineSource) []Cell {
	var cells []Cell
	lineCount := src.LineCount()

	for i := 0; i < lineCount; i++ {
		m := fenceOpen.FindStringSubmatch(src.LineAt(i))
		if m == nil {
			continue
		}
		marker, info := m[1], strings.TrimSpace(m[2])
		// Backtick fences cannot carry backticks in their info string
		if marker[0] == '`' && strings.Contains(info, "`") {
			continue
		}

		end := closingFence(src, i+1, marker)
		if lang, ok := executableLanguage(info); ok {
			cells = append(cells, Cell{FenceLine: i, EndLine: end, Language: lang, Info: info})
		}
		i = end
	}

	return cells
}

func executableLanguage(info string) (string, bool) {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return "", false
	}
	m := executableInfo.FindStringSubmatch(fields[0])
	if m == nil {
		return "", false
	}
	return m[1], true
}

func closingFence(src document.LineSource, from int, marker string) int {
	lineCount := src.LineCount()
	for j := from; j < lineCount; j++ {
		line := strings.TrimRight(src.LineAt(j), " \t")
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		run := len(trimmed) - len(strings.TrimLeft(trimmed, marker[:1]))
		if run >= len(marker) && run == len(trimmed) {
			return j
		}
	}
	return lineCount - 1
}
