package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/itsmostafa/wingman/internal/celloptions"
	"github.com/itsmostafa/wingman/internal/document"
)

// Source is what tokenizing needs from a document.
type Source interface {
	document.LineSource
	LanguageID() string
}

// Tokenize classifies the names in text written in language. Plain names
// that match a module or class declared elsewhere in text take that type,
// without the declaration modifier.
func Tokenize(language, text string) ([]Token, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, fmt.Errorf("no lexer for language %q", language)
	}
	lexer = chroma.Coalesce(lexer)

	it, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize %s: %w", language, err)
	}

	var tokens []Token
	declared := map[string]string{}
	line, char := 0, 0

	for _, tok := range it {
		if tok.Type == chroma.EOFType {
			break
		}
		if typ, mods, ok := classify(tok.Type); ok {
			name := strings.TrimSpace(tok.Value)
			if name != "" && !strings.Contains(name, "\n") {
				lead := strings.Index(tok.Value, name)
				tokens = append(tokens, Token{
					Line:      line,
					Char:      char + lead,
					Length:    len(name),
					Type:      typ,
					Modifiers: mods,
				})
				if typ == TypeModule || typ == TypeClass {
					declared[name] = typ
				}
			}
		}

		if n := strings.Count(tok.Value, "\n"); n > 0 {
			line += n
			char = len(tok.Value) - strings.LastIndexByte(tok.Value, '\n') - 1
		} else {
			char += len(tok.Value)
		}
	}

	// Second pass: references to declared modules and classes
	for i, t := range tokens {
		if t.Type != TypeVariable {
			continue
		}
		name := nameAt(text, t)
		if typ, ok := declared[name]; ok {
			tokens[i].Type = typ
		}
	}

	return tokens, nil
}

func classify(tt chroma.TokenType) (string, []string, bool) {
	switch {
	case tt == chroma.NameNamespace:
		return TypeModule, nil, true
	case tt == chroma.NameClass:
		return TypeClass, []string{ModDeclaration}, true
	case tt == chroma.NameFunction:
		return TypeFunction, []string{ModDeclaration}, true
	case tt == chroma.Name:
		return TypeVariable, nil, true
	case tt.InCategory(chroma.Keyword):
		return TypeKeyword, nil, true
	default:
		return "", nil, false
	}
}

// nameAt extracts the text a token covers.
func nameAt(text string, t Token) string {
	lines := strings.SplitN(text, "\n", t.Line+2)
	if t.Line >= len(lines) {
		return ""
	}
	l := lines[t.Line]
	if t.Char+t.Length > len(l) {
		return ""
	}
	return l[t.Char : t.Char+t.Length]
}

// TokenizeDocument tokenizes a whole document. Quarto documents are
// tokenized cell by cell, with positions mapped back to document lines.
func TokenizeDocument(src Source) ([]Token, error) {
	lang := src.LanguageID()
	if lang != document.LanguageQuarto {
		return Tokenize(lang, joinLines(src, 0, src.LineCount()))
	}

	var tokens []Token
	for _, cell := range celloptions.Cells(src) {
		if cell.Language != document.LanguagePython && cell.Language != document.LanguageR {
			continue
		}
		first := cell.FenceLine + 1
		if first >= cell.EndLine {
			continue
		}
		cellTokens, err := Tokenize(cell.Language, joinLines(src, first, cell.EndLine))
		if err != nil {
			return nil, err
		}
		for _, t := range cellTokens {
			t.Line += first
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

func joinLines(src document.LineSource, from, to int) string {
	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, src.LineAt(i))
	}
	return strings.Join(lines, "\n")
}
