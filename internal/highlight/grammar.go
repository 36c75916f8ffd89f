package highlight

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GrammarFile is where WriteGrammar puts the grammar, relative to its directory.
var GrammarFile = filepath.Join("syntaxes", "python.quarto.semantic.tmLanguage.json")

// scopes maps highlighted token types to TextMate scopes.
var scopes = []struct {
	Type  string
	Scope string
}{
	{TypeModule, "support.module.python"},
	{TypeClass, "entity.name.class.python"},
}

// Grammar is a TextMate injection grammar.
type Grammar struct {
	InjectionSelector string         `json:"injectionSelector"`
	ScopeName         string         `json:"scopeName"`
	Patterns          []Pattern      `json:"patterns"`
	Repository        map[string]any `json:"repository"`
}

// Pattern is one grammar rule.
type Pattern struct {
	Name  string `json:"name"`
	Match string `json:"match"`
}

// NewGrammar returns the grammar that registers the module and class scopes
// for Python cells in Quarto documents. Its patterns never match; the scopes
// exist so that semantic colors have a theme entry to resolve against.
func NewGrammar() Grammar {
	g := Grammar{
		InjectionSelector: "L:source.quarto meta.embedded.block.markdown source.python",
		ScopeName:         "source.python.quarto.semantic",
		Repository:        map[string]any{},
	}
	for _, s := range scopes {
		g.Patterns = append(g.Patterns, Pattern{Name: s.Scope, Match: "(?!)"})
	}
	return g
}

// WriteGrammar writes the grammar under dir and returns the file path.
func WriteGrammar(dir string) (string, error) {
	data, err := json.MarshalIndent(NewGrammar(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal grammar: %w", err)
	}

	path := filepath.Join(dir, GrammarFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create grammar directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write grammar: %w", err)
	}
	return path, nil
}
