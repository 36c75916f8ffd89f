package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/wingman/internal/celloptions"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk FILE LINE LANGUAGE",
	Short: "Insert an empty code chunk at the start of LINE",
	Long: fmt.Sprintf(`Insert an empty code chunk at the start of LINE (1-based).

LANGUAGE is one of: %s`, strings.Join(celloptions.ChunkLanguages, ", ")),
	Args: cobra.ExactArgs(3),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 2 {
			return celloptions.ChunkLanguages, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveDefault
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		pos.Char = 0

		if err := celloptions.InsertChunk(doc, pos, args[2]); err != nil {
			return err
		}
		if err := doc.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s chunk at line %d\n", successStyle.Render("Inserted"), args[2], pos.Line+1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chunkCmd)
}
