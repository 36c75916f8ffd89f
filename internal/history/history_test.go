package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/itsmostafa/wingman/internal/repl"
)

func TestManager_RecordAndGetHistory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".wingman")
	m := NewManager(dir, "notes.py")

	runs := []repl.Run{
		{HeaderLine: 0, Language: "python", Sink: "subprocess", Status: repl.StatusReplaced, Duration: 1500 * time.Millisecond},
		{HeaderLine: 9, Language: "r", Sink: "terminal", Status: repl.StatusFailed, Err: errors.New("boom")},
	}
	for _, run := range runs {
		if err := m.Record(run); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := m.GetHistory()
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetHistory() returned %d entries, want 2", len(entries))
	}

	first := entries[0]
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("entry id %q is not a uuid: %v", first.ID, err)
	}
	if first.File != "notes.py" || first.Line != 1 || first.DurationMs != 1500 {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if entries[1].Error != "boom" || entries[1].Status != repl.StatusFailed {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if entries[0].ID == entries[1].ID {
		t.Error("entries share an id")
	}
}

func TestManager_GetHistoryMissingFile(t *testing.T) {
	m := NewManager(t.TempDir(), "")

	entries, err := m.GetHistory()
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("GetHistory() = %v, want empty", entries)
	}
}

func TestManager_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "")
	if err := m.AppendHistory(Entry{Status: "replaced"}); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "history.jsonl"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("not json\n")
	f.Close()

	if err := m.AppendHistory(Entry{Status: "streamed"}); err != nil {
		t.Fatal(err)
	}

	entries, err := m.GetHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestManager_GetRecentHistory(t *testing.T) {
	m := NewManager(t.TempDir(), "")
	for i := 0; i < 5; i++ {
		if err := m.AppendHistory(Entry{Line: i}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		n        int
		wantLen  int
		wantLine int
	}{
		{n: 2, wantLen: 2, wantLine: 3},
		{n: 10, wantLen: 5, wantLine: 0},
		{n: 0, wantLen: 0},
		{n: -1, wantLen: 0},
	}

	for _, tt := range tests {
		entries, err := m.GetRecentHistory(tt.n)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != tt.wantLen {
			t.Errorf("GetRecentHistory(%d) len = %d, want %d", tt.n, len(entries), tt.wantLen)
			continue
		}
		if tt.wantLen == 0 {
			continue
		}
		if entries[0].Line != tt.wantLine {
			t.Errorf("GetRecentHistory(%d)[0].Line = %d, want %d", tt.n, entries[0].Line, tt.wantLine)
		}
	}
}
