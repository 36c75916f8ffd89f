package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/wingman/internal/document"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		rangeEmpty bool
		prefix     string
		want       string
	}{
		{
			name:       "single line into empty range",
			output:     "2\n",
			rangeEmpty: true,
			prefix:     "# ",
			want:       "# 2\n#\n",
		},
		{
			name:       "single line over existing output",
			output:     "2\n",
			rangeEmpty: false,
			prefix:     "# ",
			want:       "# 2\n#",
		},
		{
			name:       "leading newline dropped",
			output:     "\nfoo\nbar",
			rangeEmpty: true,
			prefix:     "# ",
			want:       "# foo\n# bar\n#\n",
		},
		{
			name:       "blank lines kept as marker",
			output:     "a\n\nb\n",
			rangeEmpty: true,
			prefix:     "# ",
			want:       "# a\n# <BLANKLINE>\n# b\n#\n",
		},
		{
			name:       "crlf output",
			output:     "a\r\nb\r\n",
			rangeEmpty: true,
			prefix:     "#> ",
			want:       "#> a\n#> b\n#>\n",
		},
		{
			name:       "empty prefix falls back to hash",
			output:     "3",
			rangeEmpty: true,
			prefix:     "",
			want:       "# 3\n#\n",
		},
		{
			name:       "indented prefix",
			output:     "ok",
			rangeEmpty: false,
			prefix:     "    # ",
			want:       "    # ok\n#",
		},
		{
			name:       "empty output",
			output:     "",
			rangeEmpty: false,
			prefix:     "# ",
			want:       "#\n",
		},
		{
			name:       "whitespace output",
			output:     " \n\t\n",
			rangeEmpty: true,
			prefix:     "  # ",
			want:       "#\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.output, tt.rangeEmpty, tt.prefix)
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_RoundTrip(t *testing.T) {
	outputs := [][]string{
		{"42"},
		{"first", "", "third"},
		{"", "x"},
		{"a", "", "", "b"},
	}

	for _, lines := range outputs {
		t.Run(strings.Join(lines, "|"), func(t *testing.T) {
			rendered := Render(strings.Join(lines, "\n")+"\n", true, "# ")
			doc := document.New("# >>> run()\n"+rendered+"after = 1\n", document.LanguagePython)

			_, block := Scan(doc, 0)
			require.NotNil(t, block)
			assert.True(t, block.Terminated)

			want := lines
			// A leading blank line is stripped by the renderer
			if want[0] == "" {
				want = want[1:]
			}
			assert.Equal(t, want, Decode(block.Output, block.Prefix))
		})
	}
}

func TestDecode(t *testing.T) {
	got := Decode([]string{"# a", "# <BLANKLINE>", "# b"}, "# ")
	assert.Equal(t, []string{"a", "", "b"}, got)
}
