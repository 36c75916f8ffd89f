package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-shellwords"
	"github.com/tliron/commonlog"

	"github.com/itsmostafa/wingman/internal/document"
	"github.com/itsmostafa/wingman/internal/repl"
)

// DefaultTimeout bounds a single block execution.
const DefaultTimeout = 30 * time.Second

// Runner defines the interface for interpreter backends
type Runner interface {
	// Name returns a human-readable name for this runner (e.g., "python3", "R")
	Name() string

	// Language returns the execution language this runner accepts
	Language() string

	// Command creates an exec.Cmd configured for this runner.
	// The script will be written to the command's stdin.
	Command(ctx context.Context) *exec.Cmd

	// Script turns block code into the text fed to the interpreter.
	Script(code string) string
}

// NewRunner creates a Runner for language. command overrides the default
// interpreter command line and is split with shell quoting rules.
func NewRunner(language, command string) (Runner, error) {
	switch language {
	case document.LanguagePython:
		argv, err := parseCommand(command, "python3")
		if err != nil {
			return nil, err
		}
		return &PythonRunner{argv: argv}, nil
	case document.LanguageR:
		argv, err := parseCommand(command, "R --no-echo --no-save --no-restore --quiet")
		if err != nil {
			return nil, err
		}
		return &RRunner{argv: argv}, nil
	default:
		return nil, fmt.Errorf("%w: %q", repl.ErrUnsupportedLanguage, language)
	}
}

func parseCommand(command, fallback string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		command = fallback
	}
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse interpreter command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty interpreter command")
	}
	return argv, nil
}

// Executor runs blocks in a fresh interpreter process per request.
type Executor struct {
	runners map[string]Runner
	timeout time.Duration
	log     commonlog.Logger
}

// NewExecutor creates an Executor dispatching to runners by language.
func NewExecutor(timeout time.Duration, runners ...Runner) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	e := &Executor{
		runners: make(map[string]Runner, len(runners)),
		timeout: timeout,
		log:     commonlog.GetLogger("wingman.runner"),
	}
	for _, r := range runners {
		e.runners[r.Language()] = r
	}
	return e
}

// Name returns the executor name
func (e *Executor) Name() string {
	return "subprocess"
}

// Execute runs req.Code and returns everything the interpreter printed.
func (e *Executor) Execute(ctx context.Context, req repl.Request) (*repl.Result, error) {
	r, ok := e.runners[req.Language]
	if !ok {
		return nil, fmt.Errorf("%w: no interpreter configured for %q", repl.ErrUnavailable, req.Language)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := r.Command(ctx)
	if _, err := exec.LookPath(cmd.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repl.ErrUnavailable, r.Name(), err)
	}

	// stdout and stderr share one buffer so tracebacks land in order
	var out bytes.Buffer
	cmd.Stdin = strings.NewReader(r.Script(req.Code))
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	e.log.Debugf("running %d bytes of %s code with %s", len(req.Code), req.Language, r.Name())
	started := time.Now()
	err := cmd.Run()
	e.log.Debugf("%s finished in %s", r.Name(), time.Since(started).Round(time.Millisecond))

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s timed out after %s: %w", r.Name(), e.timeout, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s exited with status %d: %s", r.Name(), exitErr.ExitCode(), lastLine(out.String()))
		}
		return nil, fmt.Errorf("%w: failed to start %s: %v", repl.ErrUnavailable, r.Name(), err)
	}

	if !utf8.Valid(out.Bytes()) {
		return nil, fmt.Errorf("%w: %s produced invalid UTF-8", repl.ErrMalformedResult, r.Name())
	}

	return &repl.Result{Output: out.String()}, nil
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "no output"
	}
	return s
}
