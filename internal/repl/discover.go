package repl

import (
	"sync/atomic"

	"github.com/itsmostafa/wingman/internal/document"
)

// RunState guards one block affordance against overlapping runs.
type RunState struct {
	running atomic.Bool
}

// TryStart marks the state running. It returns false when a run is already
// in progress.
func (s *RunState) TryStart() bool {
	return s.running.CompareAndSwap(false, true)
}

// Done marks the state idle.
func (s *RunState) Done() {
	s.running.Store(false)
}

// Lens is a runnable affordance for one discovered block.
type Lens struct {
	Range      document.Range
	HeaderLine int
	Commands   []string
	State      *RunState
}

// Title is the label shown for a lens.
func (l Lens) Title() string {
	return "▶ Run Inline Code"
}

// Discover scans the whole document and returns one lens per block. Every
// call builds fresh run states.
func Discover(src document.LineSource) []Lens {
	var lenses []Lens
	lineCount := src.LineCount()

	for line := 0; line < lineCount; {
		next, block := Scan(src, line)
		line = next
		if block == nil {
			continue
		}
		lenses = append(lenses, Lens{
			Range:      block.HeaderRange,
			HeaderLine: block.HeaderRange.Start.Line,
			Commands:   block.Commands,
			State:      &RunState{},
		})
	}

	return lenses
}

// Blocks scans the whole document and returns every parsed block.
func Blocks(src document.LineSource) []*Block {
	var blocks []*Block
	for line := 0; line < src.LineCount(); {
		next, block := Scan(src, line)
		line = next
		if block != nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
