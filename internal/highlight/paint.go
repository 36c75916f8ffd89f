package highlight

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/itsmostafa/wingman/internal/document"
)

type span struct {
	start, end int
	d          *Decoration
}

// Paint writes src to w with every applied range rendered in its
// decoration's style. Overlapping ranges keep the first one.
func Paint(w io.Writer, src document.LineSource, applied []Applied) error {
	byLine := map[int][]span{}
	for _, a := range applied {
		for _, r := range a.Ranges {
			if r.Start.Line != r.End.Line {
				continue
			}
			byLine[r.Start.Line] = append(byLine[r.Start.Line], span{start: r.Start.Char, end: r.End.Char, d: a.Decoration})
		}
	}

	for i := 0; i < src.LineCount(); i++ {
		line := src.LineAt(i)
		spans := byLine[i]
		sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })

		var sb strings.Builder
		pos := 0
		for _, s := range spans {
			if s.start < pos || s.end > len(line) {
				continue
			}
			sb.WriteString(line[pos:s.start])
			sb.WriteString(s.d.Style.Render(line[s.start:s.end]))
			pos = s.end
		}
		sb.WriteString(line[pos:])

		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
