// Package highlight finds module and class names in code and paints every
// occurrence of one name in the same color.
package highlight

import (
	"fmt"
	"slices"
	"sort"
)

// Token types and modifiers, in legend order.
const (
	TypeVariable  = "variable"
	TypeKeyword   = "keyword"
	TypeModule    = "module"
	TypeFunction  = "function"
	TypeClass     = "class"
	TypeParameter = "parameter"

	ModDeclaration = "declaration"
)

// Legend names the token types and modifiers an encoded stream refers to by index.
type Legend struct {
	TokenTypes     []string
	TokenModifiers []string
}

// DefaultLegend is the legend used by Tokenize.
var DefaultLegend = Legend{
	TokenTypes:     []string{TypeVariable, TypeKeyword, TypeModule, TypeFunction, TypeClass, TypeParameter},
	TokenModifiers: []string{ModDeclaration},
}

// Token is one classified name. Line and Char are zero-based, Char and
// Length count bytes.
type Token struct {
	Line      int
	Char      int
	Length    int
	Type      string
	Modifiers []string
}

// Encode packs tokens into the relative five-integer form used by the
// language server protocol. Tokens are sorted by position first; a type
// missing from legend is an error.
func Encode(tokens []Token, legend Legend) ([]uint32, error) {
	sorted := slices.Clone(tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		return sorted[i].Char < sorted[j].Char
	})

	data := make([]uint32, 0, len(sorted)*5)
	lastLine, lastChar := 0, 0
	for _, t := range sorted {
		typ := slices.Index(legend.TokenTypes, t.Type)
		if typ < 0 {
			return nil, fmt.Errorf("token type %q not in legend", t.Type)
		}
		var mask uint32
		for _, m := range t.Modifiers {
			bit := slices.Index(legend.TokenModifiers, m)
			if bit < 0 {
				return nil, fmt.Errorf("token modifier %q not in legend", m)
			}
			mask |= 1 << bit
		}

		deltaLine := t.Line - lastLine
		deltaChar := t.Char
		if deltaLine == 0 {
			deltaChar = t.Char - lastChar
		}
		data = append(data, uint32(deltaLine), uint32(deltaChar), uint32(t.Length), uint32(typ), mask)
		lastLine, lastChar = t.Line, t.Char
	}
	return data, nil
}

// Decode expands an encoded stream back into tokens. Trailing values that do
// not form a full token are ignored, as are unknown type indexes.
func Decode(data []uint32, legend Legend) []Token {
	var tokens []Token
	line, char := 0, 0
	for i := 0; i+5 <= len(data); i += 5 {
		deltaLine, deltaChar := int(data[i]), int(data[i+1])
		line += deltaLine
		if deltaLine == 0 {
			char += deltaChar
		} else {
			char = deltaChar
		}

		typ := int(data[i+3])
		if typ >= len(legend.TokenTypes) {
			continue
		}
		t := Token{Line: line, Char: char, Length: int(data[i+2]), Type: legend.TokenTypes[typ]}
		for bit, name := range legend.TokenModifiers {
			if data[i+4]&(1<<bit) != 0 {
				t.Modifiers = append(t.Modifiers, name)
			}
		}
		tokens = append(tokens, t)
	}
	return tokens
}
