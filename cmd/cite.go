package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/wingman/internal/citation"
	"github.com/itsmostafa/wingman/internal/document"
)

var noBib bool

var citeCmd = &cobra.Command{
	Use:   "cite FILE LINE:COL",
	Short: "Pick citations in Zotero and insert them at a position",
	Long: `Open the Better BibTeX citation picker, insert the chosen citations at
LINE:COL (both 1-based) and append their BibTeX to the bibliography file.

Zotero must be running with the Better BibTeX plugin. When a library id is
configured and the local service cannot be reached, the BibTeX is fetched
from the Zotero web API instead. Errors reported by a running local service
are not retried against the web API.`,
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

		client := citation.NewClient(cfg.Zotero.Host, cfg.Zotero.Port)
		exporters := citation.Chain{client}
		if cfg.Zotero.LibraryID != "" {
			web, err := citation.NewWebClient(cfg.Zotero.LibraryType, cfg.Zotero.LibraryID, cfg.Zotero.APIKey)
			if err != nil {
				return err
			}
			exporters = append(exporters, web)
		}

		var lib *citation.Library
		if !noBib {
			bib, err := bibPath(args[0])
			if err != nil {
				return err
			}
			lib, err = citation.OpenLibrary(bib, ledgerPath(bib))
			if err != nil {
				return err
			}
			defer lib.Close()
		}

		res, err := citation.NewService(client, exporters, lib).Cite(cmd.Context(), doc, document.Range{Start: pos, End: pos})
		if citation.IsUnavailable(err) {
			return fmt.Errorf("could not connect to Zotero/Better BibTeX, is Zotero running? (%w)", err)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res == nil {
			fmt.Fprintln(out, dimStyle.Render("nothing picked"))
			return nil
		}
		if err := doc.Save(); err != nil {
			return err
		}

		fmt.Fprintf(out, "%s %s\n", successStyle.Render("Inserted"), res.Citation)
		if len(res.Added) > 0 {
			fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Added to bibliography:"), strings.Join(res.Added, ", "))
		}
		if res.ExportErr != nil {
			fmt.Fprintf(out, "%s could not fetch BibTeX: %v\n", warnStyle.Render("WARNING"), res.ExportErr)
		}
		return nil
	},
}

func init() {
	citeCmd.Flags().BoolVar(&noBib, "no-bib", false, "Insert the citation without updating the bibliography")
	rootCmd.AddCommand(citeCmd)
}

// bibPath resolves the configured bibliography relative to the document.
func bibPath(docPath string) (string, error) {
	bib, err := cfg.BibPath()
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(bib) {
		bib = filepath.Join(filepath.Dir(docPath), bib)
	}
	return bib, nil
}

// ledgerPath is the key ledger kept next to a bibliography file.
func ledgerPath(bib string) string {
	return filepath.Join(filepath.Dir(bib), "."+filepath.Base(bib)+".db")
}
