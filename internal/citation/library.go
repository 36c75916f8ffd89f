package citation

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const librarySchema = `
CREATE TABLE IF NOT EXISTS citations (
	key TEXT PRIMARY KEY,
	added_at INTEGER NOT NULL
);
`

var bibKey = regexp.MustCompile(`@\w+\s*\{\s*([^,\s]+)\s*,`)

// ParseKeys returns the entry keys of a BibTeX text in order of appearance.
func ParseKeys(bib string) []string {
	var keys []string
	for _, m := range bibKey.FindAllStringSubmatch(bib, -1) {
		keys = append(keys, m[1])
	}
	return keys
}

// Library tracks which citation keys a bibliography file already holds. The
// keys live in a sqlite ledger so that repeated citations do not rescan or
// duplicate entries.
type Library struct {
	bibPath string
	db      *sql.DB
}

// OpenLibrary opens the ledger at dbPath for the bibliography at bibPath and
// records every key already present in the file.
func OpenLibrary(bibPath, dbPath string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(librarySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	l := &Library{bibPath: bibPath, db: db}
	if err := l.sync(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// sync records the keys found in the bibliography file.
func (l *Library) sync() error {
	data, err := os.ReadFile(l.bibPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read bibliography: %w", err)
	}
	return l.record(ParseKeys(string(data)))
}

func (l *Library) record(keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO citations (key, added_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, key := range keys {
		if _, err := stmt.Exec(key, now); err != nil {
			return fmt.Errorf("failed to record key %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Missing returns the keys not yet in the bibliography, in the given order
// and without duplicates.
func (l *Library) Missing(keys []string) ([]string, error) {
	var missing []string
	seen := make(map[string]bool)
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		var n int
		if err := l.db.QueryRow(`SELECT COUNT(*) FROM citations WHERE key = ?`, key).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to look up key %s: %w", key, err)
		}
		if n == 0 {
			missing = append(missing, key)
		}
	}
	return missing, nil
}

// Append adds bibtex to the bibliography file and records the keys it holds.
func (l *Library) Append(bibtex string) ([]string, error) {
	bibtex = strings.TrimSpace(bibtex)
	if bibtex == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(l.bibPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.OpenFile(l.bibPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open bibliography: %w", err)
	}
	if _, err := f.WriteString("\n" + bibtex + "\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write bibliography: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close bibliography: %w", err)
	}

	keys := ParseKeys(bibtex)
	if err := l.record(keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the ledger.
func (l *Library) Close() error {
	return l.db.Close()
}
