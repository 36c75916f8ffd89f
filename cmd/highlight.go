package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/wingman/internal/highlight"
	"github.com/itsmostafa/wingman/internal/watch"
)

var watchHighlight bool

var highlightCmd = &cobra.Command{
	Use:   "highlight FILE",
	Short: "Print a file with module and class names colored",
	Long: `Print FILE with every module and class name colored. Each name keeps
its color for as long as it appears in the file; colors come from the
configured palette.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		out := cmd.OutOrStdout()
		registry := highlight.NewRegistry(cfg.Palette)

		refresh := func() error {
			return paintFile(out, path, registry)
		}
		if err := refresh(); err != nil {
			return err
		}
		if !watchHighlight {
			return nil
		}
		return watch.File(cmd.Context(), path, 0, func() error {
			// Clear the screen between repaints
			fmt.Fprint(out, "\033[H\033[2J")
			return refresh()
		})
	},
}

var grammarCmd = &cobra.Command{
	Use:   "grammar [DIR]",
	Short: "Write the TextMate grammar registering the highlight scopes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		path, err := highlight.WriteGrammar(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("Wrote"), path)
		return nil
	},
}

func init() {
	highlightCmd.Flags().BoolVarP(&watchHighlight, "watch", "w", false, "Repaint whenever the file changes")
	rootCmd.AddCommand(highlightCmd, grammarCmd)
}

func paintFile(w io.Writer, path string, registry *highlight.Registry) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	tokens, err := highlight.TokenizeDocument(doc)
	if err != nil {
		return err
	}
	data, err := highlight.Encode(tokens, highlight.DefaultLegend)
	if err != nil {
		return err
	}

	applied := registry.Refresh(highlight.RangesByType(data, highlight.DefaultLegend, doc))
	return highlight.Paint(w, doc, applied)
}
