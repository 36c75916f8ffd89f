package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/wingman/internal/document"
	"github.com/itsmostafa/wingman/internal/history"
	"github.com/itsmostafa/wingman/internal/repl"
	"github.com/itsmostafa/wingman/internal/runner"
	"github.com/itsmostafa/wingman/internal/terminal"
	"github.com/itsmostafa/wingman/internal/watch"
)

var dryRun bool
var noHistory bool
var linger time.Duration

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run inline >>> REPL blocks",
	Long: `Inline REPL blocks are comment lines starting with ">>>" in Python and R
sources, e.g.

  # >>> import math
  # >>> math.pi
  # 3.141592653589793
  #

Running a block executes its commands and replaces the output below it.`,
}

var replListCmd = &cobra.Command{
	Use:   "list FILE",
	Short: "List the runnable blocks in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		lenses := repl.Discover(doc)
		if len(lenses) == 0 {
			fmt.Fprintln(out, dimStyle.Render("no inline REPL blocks"))
			return nil
		}
		for _, lens := range lenses {
			formatLens(out, lens.HeaderLine, lens.Title(), strings.Join(lens.Commands, dimStyle.Render(" ⏎ ")))
		}
		return nil
	},
}

var replShowCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Print the last recorded output of every block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		blocks := repl.Blocks(doc)
		if len(blocks) == 0 {
			fmt.Fprintln(out, dimStyle.Render("no inline REPL blocks"))
			return nil
		}
		for _, b := range blocks {
			formatBlock(out, b)
		}
		return nil
	},
}

var replRunCmd = &cobra.Command{
	Use:   "run FILE LINE",
	Short: "Run the block whose header starts at LINE (1-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := strconv.Atoi(args[1])
		if err != nil || line < 1 {
			return fmt.Errorf("invalid line %q", args[1])
		}

		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		s, err := newReplSession(cmd.OutOrStdout(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.run(cmd.Context(), doc, line-1, nil); err != nil {
			return err
		}
		return s.finish(doc)
	},
}

var replRunAllCmd = &cobra.Command{
	Use:   "run-all FILE",
	Short: "Run every block in a file, top to bottom",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		s, err := newReplSession(cmd.OutOrStdout(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		return s.runAllAndSave(cmd.Context(), doc, false)
	},
}

var replWatchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Run every block whenever the file is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		s, err := newReplSession(cmd.OutOrStdout(), path)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		var seen string
		once := func() error {
			doc, err := loadDocument(path)
			if err != nil {
				return err
			}
			// Our own save shows up as a change too
			if doc.Text() == seen {
				return nil
			}
			err = s.runAllAndSave(ctx, doc, true)
			seen = doc.Text()
			return err
		}

		if err := once(); err != nil {
			fmt.Fprintln(s.out, errorStyle.Render("Error:"), err)
		}
		return watch.File(ctx, path, 0, once)
	},
}

var historyLimit int

var replHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent inline REPL runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit < 1 {
			return fmt.Errorf("invalid --limit %d: must be at least 1", historyLimit)
		}
		entries, err := history.NewManager(cfg.HistoryDir, "").GetRecentHistory(historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, dimStyle.Render("no runs recorded"))
			return nil
		}
		for _, e := range entries {
			status := successStyle.Render(e.Status)
			switch e.Status {
			case repl.StatusFailed:
				status = errorStyle.Render(e.Status)
			case repl.StatusStreamed, repl.StatusSkipped:
				status = warnStyle.Render(e.Status)
			}
			fmt.Fprintf(out, "%s %s:%d %s %s %s\n",
				dimStyle.Render(e.Timestamp.Local().Format(time.DateTime)),
				e.File, e.Line, e.Language, status,
				dimStyle.Render(fmt.Sprintf("%dms", e.DurationMs)),
			)
			if e.Error != "" {
				fmt.Fprintf(out, "  %s\n", dimStyle.Render(e.Error))
			}
		}
		return nil
	},
}

func init() {
	replHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")

	for _, c := range []*cobra.Command{replRunCmd, replRunAllCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Print the updated document instead of saving it")
	}
	for _, c := range []*cobra.Command{replRunCmd, replRunAllCmd, replWatchCmd} {
		c.Flags().BoolVar(&noHistory, "no-history", false, "Do not record runs in the history file")
		c.Flags().DurationVar(&linger, "linger", 2*time.Second, "How long to show terminal output when code is streamed to an interpreter")
	}

	replCmd.AddCommand(replListCmd, replShowCmd, replRunCmd, replRunAllCmd, replWatchCmd, replHistoryCmd)
	rootCmd.AddCommand(replCmd)
}

// replSession wires the orchestrator to the configured backends.
type replSession struct {
	out      io.Writer
	orch     *repl.Orchestrator
	pool     *terminal.Pool
	streamed bool
}

func newReplSession(out io.Writer, file string) (*replSession, error) {
	var runners []runner.Runner
	for lang, command := range map[string]string{
		document.LanguagePython: cfg.Backends.Python,
		document.LanguageR:      cfg.Backends.R,
	} {
		r, err := runner.NewRunner(lang, command)
		if err != nil {
			return nil, fmt.Errorf("invalid %s backend: %w", lang, err)
		}
		runners = append(runners, r)
	}

	pool := terminal.NewPool(cfg.Backends.Terminal, cfg.TerminalDelay(), out)
	opts := []repl.Option{repl.WithFallback(pool)}
	if !noHistory {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		opts = append(opts, repl.WithRecorder(history.NewManager(cfg.HistoryDir, abs)))
	}

	return &replSession{
		out:  out,
		orch: repl.NewOrchestrator(runner.NewExecutor(cfg.ExecTimeout(), runners...), opts...),
		pool: pool,
	}, nil
}

func (s *replSession) run(ctx context.Context, doc *document.Document, headerLine int, state *repl.RunState) error {
	started := time.Now()
	outcome, err := s.orch.Run(ctx, doc, headerLine, state)
	if errors.Is(err, repl.ErrBusy) {
		return nil
	}
	if err != nil {
		formatFailure(s.out, headerLine, err)
		return err
	}
	if outcome.Degraded {
		s.streamed = true
	}
	formatOutcome(s.out, headerLine, outcome, time.Since(started))
	return nil
}

// runAll runs each block in order. Blocks are rediscovered after every run
// because replacing output shifts the lines below it.
func (s *replSession) runAll(ctx context.Context, doc *document.Document) error {
	var failed int
	for i := 0; ; i++ {
		lenses := repl.Discover(doc)
		if i >= len(lenses) {
			break
		}
		lens := lenses[i]
		if err := s.run(ctx, doc, lens.HeaderLine, lens.State); err != nil {
			if errors.Is(err, repl.ErrUnsupportedLanguage) {
				return err
			}
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d blocks failed", failed)
	}
	return nil
}

// runAllAndSave runs every block and keeps the output of the ones that
// succeeded. With skipUnchanged the file is left alone when the text is
// identical to what was loaded.
func (s *replSession) runAllAndSave(ctx context.Context, doc *document.Document, skipUnchanged bool) error {
	before := doc.Text()
	runErr := s.runAll(ctx, doc)
	if errors.Is(runErr, repl.ErrUnsupportedLanguage) {
		return runErr
	}
	if skipUnchanged && doc.Text() == before {
		return runErr
	}
	if err := s.finish(doc); err != nil {
		return err
	}
	return runErr
}

func (s *replSession) finish(doc *document.Document) error {
	// Streamed or failed runs leave nothing to write
	if doc.Version() == 0 && !dryRun {
		return nil
	}
	if dryRun {
		_, err := io.WriteString(s.out, doc.Text())
		return err
	}
	if err := doc.Save(); err != nil {
		return err
	}
	return nil
}

func (s *replSession) Close() error {
	if s.streamed && linger > 0 {
		time.Sleep(linger)
	}
	return s.pool.Close()
}
