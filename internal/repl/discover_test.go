package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	doc := newDoc(
		"import math",
		"# >>> math.pi",
		"# 3.14",
		"#",
		"",
		"def f():",
		"    # >>> f()",
		"    # >>> g()",
		"x = 1",
		"#> >>> x",
	)

	lenses := Discover(doc)
	require.Len(t, lenses, 3)

	assert.Equal(t, 1, lenses[0].HeaderLine)
	assert.Equal(t, []string{"math.pi"}, lenses[0].Commands)
	assert.Equal(t, 6, lenses[1].HeaderLine)
	assert.Equal(t, 7, lenses[1].Range.End.Line)
	assert.Equal(t, []string{"f()", "g()"}, lenses[1].Commands)
	assert.Equal(t, 9, lenses[2].HeaderLine)

	for _, lens := range lenses {
		assert.True(t, lens.State.TryStart())
		assert.Equal(t, "▶ Run Inline Code", lens.Title())
	}
	assert.NotSame(t, lenses[0].State, lenses[1].State)
}

func TestDiscover_FreshStatesEachPass(t *testing.T) {
	doc := newDoc("# >>> 1")

	first := Discover(doc)
	require.Len(t, first, 1)
	require.True(t, first[0].State.TryStart())

	second := Discover(doc)
	require.Len(t, second, 1)
	assert.True(t, second[0].State.TryStart())
}

func TestDiscover_EmptyDocument(t *testing.T) {
	assert.Empty(t, Discover(newDoc()))
}

func TestDiscover_Terminates(t *testing.T) {
	docs := [][]string{
		{"# >>> a", "# >>> b", "# >>> c"},
		{">>> a", "", ">>> b", ""},
		{"#", "#", "# >>> a", "#", "#"},
		{"# >>> a", "#> >>> b", "  # >>> c", "x"},
		{"", "", ""},
	}

	for _, lines := range docs {
		doc := newDoc(lines...)
		starts := map[int]int{}
		for line := 0; line < doc.LineCount(); {
			starts[line]++
			next, _ := Scan(doc, line)
			require.Greater(t, next, line)
			line = next
		}
		for line, n := range starts {
			assert.Equal(t, 1, n, "line %d scanned more than once", line)
		}
	}
}

func TestBlocks(t *testing.T) {
	doc := newDoc("# >>> a", "# 1", "#", "# >>> b")

	blocks := Blocks(doc)
	require.Len(t, blocks, 2)
	assert.Equal(t, []string{"# 1"}, blocks[0].Output)
	assert.True(t, blocks[1].AtEnd)
}

func TestRunState(t *testing.T) {
	var s RunState

	assert.True(t, s.TryStart())
	assert.False(t, s.TryStart())

	s.Done()
	assert.True(t, s.TryStart())
}
