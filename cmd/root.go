package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/itsmostafa/wingman/internal/config"
	"github.com/itsmostafa/wingman/internal/document"
	"github.com/itsmostafa/wingman/internal/version"
)

var configPath string
var verbosity int
var langOverride string

// cfg is loaded once per invocation before any subcommand runs
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "wingman",
	Short: "Inline REPL, cell options and citations for Quarto documents",
	Long: `Wingman brings the Quarto editor helpers to the command line.

It runs ">>>" inline REPL blocks in Python and R sources and writes their
output back into the file, documents and inserts cell options, highlights
module and class names, and inserts citations picked from Zotero.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		commonlog.Configure(verbosity, nil)

		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("wingman %s\n", version.String()))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $WINGMAN_CONFIG or ./.wingman.toml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&langOverride, "lang", "", "Override the detected document language (python, r, quarto)")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

// loadDocument reads path and applies the --lang override.
func loadDocument(path string) (*document.Document, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	if langOverride != "" {
		doc.SetLanguageID(document.NormalizeLanguage(langOverride))
	}
	return doc, nil
}
