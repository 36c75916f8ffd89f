package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/itsmostafa/wingman/internal/repl"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// warnStyle for degraded runs
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for hover and summary boxes
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	// lensStyle for runnable affordances
	lensStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)
)

// formatLens renders one lens line: "12  ▶ Run Inline Code  1+1"
func formatLens(w io.Writer, line int, title string, detail string) {
	fmt.Fprintf(w, "%s  %s  %s\n",
		dimStyle.Render(fmt.Sprintf("%4d", line+1)),
		lensStyle.Render(title),
		detail,
	)
}

// formatOutcome renders the result of one orchestrated run.
func formatOutcome(w io.Writer, headerLine int, out *repl.Outcome, elapsed time.Duration) {
	where := dimStyle.Render(fmt.Sprintf("line %d", headerLine+1))
	took := dimStyle.Render(fmt.Sprintf("%.2fs", elapsed.Seconds()))

	if out.Degraded {
		fmt.Fprintf(w, "%s %s sent to %s %s\n", warnStyle.Render("STREAMED"), where, out.Sink, took)
		return
	}
	lines := strings.Count(out.Replacement, "\n")
	fmt.Fprintf(w, "%s %s %d output lines via %s %s\n", successStyle.Render("OK"), where, lines, out.Sink, took)
}

// formatFailure renders a failed run.
func formatFailure(w io.Writer, headerLine int, err error) {
	fmt.Fprintf(w, "%s %s %v\n", errorStyle.Render("FAILED"), dimStyle.Render(fmt.Sprintf("line %d", headerLine+1)), err)
}

// formatBox renders a titled box.
func formatBox(w io.Writer, title, body string) {
	content := titleStyle.Render(title)
	if body != "" {
		content += "\n" + body
	}
	fmt.Fprintln(w, boxStyle.Render(content))
}

// formatBlock renders a block's commands followed by its decoded output.
func formatBlock(w io.Writer, b *repl.Block) {
	span := dimStyle.Render(fmt.Sprintf("(%d lines)", b.Lines()))
	formatLens(w, b.HeaderLine, ">>>", strings.Join(b.Commands, dimStyle.Render(" ⏎ "))+" "+span)

	if len(b.Output) == 0 {
		fmt.Fprintf(w, "      %s\n", dimStyle.Render("no output"))
	}
	for _, line := range repl.Decode(b.Output, b.Prefix) {
		fmt.Fprintf(w, "      %s\n", line)
	}
	if len(b.Output) > 0 && !b.Terminated {
		fmt.Fprintf(w, "      %s\n", warnStyle.Render("output is not terminated"))
	}
	if foreign := b.ForeignOutput(); len(foreign) > 0 {
		fmt.Fprintf(w, "      %s\n", warnStyle.Render(fmt.Sprintf("%d lines of code would be replaced on the next run", len(foreign))))
	}
}
