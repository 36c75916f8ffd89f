package highlight

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/tliron/commonlog"

	"github.com/itsmostafa/wingman/internal/document"
)

// Decoration is the style owned by the registry for one "type:name" key.
type Decoration struct {
	Key   string
	Type  string
	Name  string
	Slot  int
	Color string
	Style lipgloss.Style

	released atomic.Bool
}

// Released reports whether the registry has dropped this decoration.
func (d *Decoration) Released() bool {
	return d.released.Load()
}

// Applied pairs a decoration with the ranges it covers after a refresh.
type Applied struct {
	Decoration *Decoration
	Ranges     []document.Range
}

// Registry hands out one decoration per symbol, cycling through a palette.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	palette []string
	next    int
	entries map[string]*Decoration
	log     commonlog.Logger
}

// NewRegistry creates a registry coloring symbols from palette.
func NewRegistry(palette []string) *Registry {
	if len(palette) == 0 {
		palette = []string{"6"}
	}
	return &Registry{
		palette: palette,
		entries: make(map[string]*Decoration),
		log:     commonlog.GetLogger("wingman.highlight"),
	}
}

// Refresh brings the registry in line with ranges: new symbols get the next
// palette slot, symbols no longer present are released. The result is
// ordered by key.
func (r *Registry) Refresh(ranges Ranges) []Applied {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	var applied []Applied

	// Walk in key order so slot assignment does not depend on map order
	for _, typ := range sortedKeys(ranges) {
		byName := ranges[typ]
		for _, name := range sortedKeys(byName) {
			key := typ + ":" + name
			seen[key] = true

			d, ok := r.entries[key]
			if !ok {
				slot := r.next % len(r.palette)
				r.next++
				color := r.palette[slot]
				d = &Decoration{
					Key:   key,
					Type:  typ,
					Name:  name,
					Slot:  slot,
					Color: color,
					Style: lipgloss.NewStyle().Foreground(lipgloss.Color(color)),
				}
				r.entries[key] = d
				r.log.Debugf("new decoration %s in slot %d", key, slot)
			}
			applied = append(applied, Applied{Decoration: d, Ranges: byName[name]})
		}
	}

	for key, d := range r.entries {
		if !seen[key] {
			d.released.Store(true)
			delete(r.entries, key)
			r.log.Debugf("released decoration %s", key)
		}
	}

	return applied
}

// Get returns the live decoration for key.
func (r *Registry) Get(key string) (*Decoration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.entries[key]
	return d, ok
}

// Len returns the number of live decorations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
