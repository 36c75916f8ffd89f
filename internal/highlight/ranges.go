package highlight

import (
	"github.com/itsmostafa/wingman/internal/document"
)

// Ranges maps a token type to the ranges of each distinct name of that type.
type Ranges map[string]map[string][]document.Range

// RangesByType decodes an encoded token stream and groups the module and
// class tokens by the text they cover in src.
func RangesByType(data []uint32, legend Legend, src document.LineSource) Ranges {
	result := Ranges{}
	for _, t := range Decode(data, legend) {
		if t.Type != TypeModule && t.Type != TypeClass {
			continue
		}
		if t.Line >= src.LineCount() {
			continue
		}
		line := src.LineAt(t.Line)
		end := t.Char + t.Length
		if t.Char < 0 || end > len(line) {
			continue
		}

		byName, ok := result[t.Type]
		if !ok {
			byName = map[string][]document.Range{}
			result[t.Type] = byName
		}
		name := line[t.Char:end]
		byName[name] = append(byName[name], document.Range{
			Start: document.Position{Line: t.Line, Char: t.Char},
			End:   document.Position{Line: t.Line, Char: end},
		})
	}
	return result
}
