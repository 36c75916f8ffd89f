package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/wingman/internal/celloptions"
	"github.com/itsmostafa/wingman/internal/document"
)

var optionKey string
var optionValue string

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Browse and insert Quarto cell options",
}

var optionsLensCmd = &cobra.Command{
	Use:   "lens FILE",
	Short: "List the executable cells that accept options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		cells := celloptions.Cells(doc)
		if len(cells) == 0 {
			fmt.Fprintln(out, dimStyle.Render("no executable cells"))
			return nil
		}
		for _, c := range cells {
			formatLens(out, c.FenceLine, c.Title(), dimStyle.Render(c.Info))
		}
		return nil
	},
}

var optionsInsertCmd = &cobra.Command{
	Use:   "insert FILE LINE",
	Short: "Insert a cell option below the fence at LINE",
	Long: `Insert a "#| key: value" option below the cell fence at LINE (1-based).

Without --key an interactive picker asks for the section, option and value.`,
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

		if !isCellFence(doc, pos.Line) {
			return fmt.Errorf("line %d is not an executable cell fence", pos.Line+1)
		}

		key, value := optionKey, optionValue
		if key != "" {
			err = celloptions.InsertOption(doc, pos.Line, key, value)
		} else {
			p := celloptions.NewLinePrompter(cmd.OutOrStdout())
			key, value, err = celloptions.NewWizard(p).Run(doc, pos.Line)
			p.Close()
		}
		if errors.Is(err, celloptions.ErrCancelled) {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("cancelled"))
			return nil
		}
		if err != nil {
			return err
		}

		if err := doc.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s", successStyle.Render("Inserted"), celloptions.FormatOption(key, value))
		return nil
	},
}

func init() {
	optionsInsertCmd.Flags().StringVar(&optionKey, "key", "", "Option name; omit to choose interactively")
	optionsInsertCmd.Flags().StringVar(&optionValue, "value", "", "Option value")

	optionsCmd.AddCommand(optionsLensCmd, optionsInsertCmd)
	rootCmd.AddCommand(optionsCmd)
}

func isCellFence(src document.LineSource, line int) bool {
	for _, c := range celloptions.Cells(src) {
		if c.FenceLine == line {
			return true
		}
	}
	return false
}
