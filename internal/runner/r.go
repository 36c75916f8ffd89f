package runner

import (
	"context"
	"os/exec"

	"github.com/itsmostafa/wingman/internal/document"
)

// RRunner implements Runner for R reading a script from stdin
type RRunner struct {
	argv []string
}

// Name returns the interpreter name
func (r *RRunner) Name() string {
	return r.argv[0]
}

// Language returns the execution language
func (r *RRunner) Language() string {
	return document.LanguageR
}

// Command creates the R command
func (r *RRunner) Command(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
}

// Script terminates the code so the last expression is evaluated.
func (r *RRunner) Script(code string) string {
	return code + "\n"
}
