package celloptions

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/itsmostafa/wingman/internal/document"
)

// ChunkLanguages are the languages offered for a new code chunk.
var ChunkLanguages = []string{"python", "r", "julia", "bash", "sql", "ojs", "mermaid", "dot"}

// ErrUnknownLanguage is returned by InsertChunk for languages it does not offer.
var ErrUnknownLanguage = errors.New("unknown chunk language")

// FormatOption renders one option comment line, newline included.
func FormatOption(key, value string) string {
	return fmt.Sprintf("#| %s: %s\n", key, value)
}

// InsertOption writes "#| key: value" on the line below fenceLine.
func InsertOption(sink document.EditSink, fenceLine int, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("option key is empty")
	}
	pos := document.Position{Line: fenceLine + 1}
	if err := sink.Insert(pos, FormatOption(key, value)); err != nil {
		return fmt.Errorf("failed to insert option %s: %w", key, err)
	}
	return nil
}

// Chunk returns the empty code chunk for lang and the offset inside it where
// the cursor belongs.
func Chunk(lang string) (string, int) {
	head := "```{" + lang + "}\n"
	return head + "\n```", len(head)
}

// InsertChunk inserts an empty code chunk for lang at pos.
func InsertChunk(sink document.EditSink, pos document.Position, lang string) error {
	if !slices.Contains(ChunkLanguages, lang) {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	text, _ := Chunk(lang)
	if err := sink.Insert(pos, text); err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}
