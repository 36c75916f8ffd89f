// Package document implements the line-oriented text buffer that every
// wingman feature reads from and edits. It stands in for the editor's text
// model: a Document is a list of lines plus a language id, and edits are
// applied atomically per call.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrOutOfRange is returned when an edit references a position outside the document.
var ErrOutOfRange = errors.New("position out of range")

// Position is a zero-based line/character pair. Char counts bytes within the line.
type Position struct {
	Line int
	Char int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Char, r.End.Line, r.End.Char)
}

// LineSource is the read side of a document.
type LineSource interface {
	// LineCount returns the number of lines. An empty buffer still has one line.
	LineCount() int
	// LineAt returns the text of line i without its terminator.
	LineAt(i int) string
}

// EditSink is the write side of a document.
type EditSink interface {
	// Replace swaps the text covered by r for text in a single atomic edit.
	Replace(r Range, text string) error
	// Insert places text at p.
	Insert(p Position, text string) error
}

// Document is an in-memory text buffer backed by an optional file.
type Document struct {
	mu           sync.RWMutex
	path         string
	languageID   string
	lines        []string
	finalNewline bool
	version      int
}

// New creates a document from raw text.
func New(text, languageID string) *Document {
	d := &Document{languageID: languageID}
	d.setText(text)
	return d
}

// Load reads a file from disk and detects its language id.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	d := New(string(data), DetectLanguage(path, data))
	d.path = path
	return d, nil
}

func (d *Document) setText(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	d.finalNewline = strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	d.lines = strings.Split(text, "\n")
}

// Path returns the file the document was loaded from, if any.
func (d *Document) Path() string {
	return d.path
}

// LanguageID returns the declared language of the document.
func (d *Document) LanguageID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.languageID
}

// SetLanguageID overrides the detected language.
func (d *Document) SetLanguageID(id string) {
	d.mu.Lock()
	d.languageID = id
	d.mu.Unlock()
}

// Version is incremented on every successful edit.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// LineAt returns line i, or the empty string when i is out of range.
func (d *Document) LineAt(i int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// Text returns the whole document.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text := strings.Join(d.lines, "\n")
	if d.finalNewline {
		text += "\n"
	}
	return text
}

// Replace swaps the text in r for text.
func (d *Document) Replace(r Range, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start, err := d.offset(r.Start)
	if err != nil {
		return err
	}
	end, err := d.offset(r.End)
	if err != nil {
		return err
	}
	if end < start {
		return fmt.Errorf("%w: %s", ErrOutOfRange, r)
	}

	// Splice on a copy so a failed edit leaves the buffer untouched
	full := strings.Join(d.lines, "\n")
	updated := full[:start] + strings.ReplaceAll(text, "\r\n", "\n") + full[end:]
	d.lines = strings.Split(updated, "\n")
	d.version++
	return nil
}

// Insert places text at p.
func (d *Document) Insert(p Position, text string) error {
	return d.Replace(Range{Start: p, End: p}, text)
}

// offset converts a position into a byte offset within the joined text.
// The caller must hold the lock. A position one line past the end is
// accepted as end-of-document so that appends can be expressed.
func (d *Document) offset(p Position) (int, error) {
	if p.Line < 0 || p.Char < 0 {
		return 0, fmt.Errorf("%w: %d:%d", ErrOutOfRange, p.Line, p.Char)
	}
	off := 0
	for i := 0; i < p.Line; i++ {
		if i >= len(d.lines) {
			return 0, fmt.Errorf("%w: %d:%d", ErrOutOfRange, p.Line, p.Char)
		}
		off += len(d.lines[i]) + 1
	}
	if p.Line == len(d.lines) {
		if p.Char != 0 {
			return 0, fmt.Errorf("%w: %d:%d", ErrOutOfRange, p.Line, p.Char)
		}
		// Past the last line: the end of the joined text.
		return off - 1, nil
	}
	if p.Char > len(d.lines[p.Line]) {
		return 0, fmt.Errorf("%w: %d:%d", ErrOutOfRange, p.Line, p.Char)
	}
	return off + p.Char, nil
}

// Save writes the document back to its file using a temp file and rename.
func (d *Document) Save() error {
	if d.path == "" {
		return errors.New("document has no backing file")
	}
	return d.SaveAs(d.path)
}

// SaveAs writes the document to path atomically.
func (d *Document) SaveAs(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wingman-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(d.Text()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Keep the original permissions when overwriting
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	d.path = path
	return nil
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
