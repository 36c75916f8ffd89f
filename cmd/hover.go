package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/wingman/internal/celloptions"
	"github.com/itsmostafa/wingman/internal/document"
)

var hoverCmd = &cobra.Command{
	Use:   "hover FILE LINE:COL",
	Short: "Show the documentation of the cell option under a position",
	Long: `Show the documentation of the cell option under LINE:COL (both 1-based)
on a "#|" option line.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}

		h, ok := celloptions.HoverAt(doc, pos)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no cell option here"))
			return nil
		}
		formatBox(cmd.OutOrStdout(), h.Key, h.Markdown)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hoverCmd)
}

// parsePosition parses "LINE:COL" or "LINE", both 1-based.
func parsePosition(s string) (document.Position, error) {
	lineStr, colStr, hasCol := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return document.Position{}, fmt.Errorf("invalid position %q", s)
	}
	col := 1
	if hasCol {
		col, err = strconv.Atoi(colStr)
		if err != nil || col < 1 {
			return document.Position{}, fmt.Errorf("invalid position %q", s)
		}
	}
	return document.Position{Line: line - 1, Char: col - 1}, nil
}
