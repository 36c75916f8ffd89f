package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsmostafa/wingman/internal/repl"
)

// Entry is one line of the run history
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	File       string    `json:"file,omitempty"`
	Line       int       `json:"line"`
	Language   string    `json:"language,omitempty"`
	Sink       string    `json:"sink,omitempty"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Manager handles run history persistence
type Manager struct {
	baseDir string
	file    string
	mu      sync.Mutex
}

// NewManager creates a Manager writing under baseDir. file is recorded with
// every entry.
func NewManager(baseDir, file string) *Manager {
	return &Manager{baseDir: baseDir, file: file}
}

func (m *Manager) path() string {
	return filepath.Join(m.baseDir, "history.jsonl")
}

// Record implements repl.Recorder
func (m *Manager) Record(run repl.Run) error {
	entry := Entry{
		File:       m.file,
		Line:       run.HeaderLine + 1,
		Language:   run.Language,
		Sink:       run.Sink,
		Status:     run.Status,
		DurationMs: run.Duration.Milliseconds(),
	}
	if run.Err != nil {
		entry.Error = run.Err.Error()
	}
	return m.AppendHistory(entry)
}

// AppendHistory appends a history entry to the history file
func (m *Manager) AppendHistory(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.Timestamp = time.Now()

	if err := os.MkdirAll(m.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(m.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}

	return nil
}

// GetHistory reads all history entries
func (m *Manager) GetHistory() ([]Entry, error) {
	f, err := os.Open(m.path())
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // Skip malformed entries
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	return entries, nil
}

// GetRecentHistory returns the last n history entries. n <= 0 returns none.
func (m *Manager) GetRecentHistory(n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	entries, err := m.GetHistory()
	if err != nil {
		return nil, err
	}

	if len(entries) <= n {
		return entries, nil
	}
	return entries[len(entries)-n:], nil
}
