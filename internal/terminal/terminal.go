// Package terminal keeps one interactive interpreter per language running in
// a pseudo terminal and types code into it. It is the degraded path for REPL
// blocks: code reaches a live session but its output is only shown, never
// written back into the document.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/mattn/go-shellwords"
	"github.com/tliron/commonlog"
)

// DefaultDelay is how long a freshly started interpreter gets before the
// first line is typed into it.
const DefaultDelay = time.Second

// DefaultCommands are the interactive interpreters started per language.
var DefaultCommands = map[string]string{
	"python": "python3 -q",
	"r":      "R --quiet --no-save",
}

type session struct {
	cmd *exec.Cmd
	pty *os.File
}

// Pool is a set of interpreter sessions keyed by language.
type Pool struct {
	commands map[string]string
	delay    time.Duration
	out      io.Writer

	mu       sync.Mutex
	sessions map[string]*session
	log      commonlog.Logger
}

// NewPool creates a pool. commands override DefaultCommands per language and
// everything the interpreters print is copied to out.
func NewPool(commands map[string]string, delay time.Duration, out io.Writer) *Pool {
	merged := make(map[string]string, len(DefaultCommands))
	for lang, command := range DefaultCommands {
		merged[lang] = command
	}
	for lang, command := range commands {
		if command != "" {
			merged[lang] = command
		}
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	if out == nil {
		out = io.Discard
	}
	return &Pool{
		commands: merged,
		delay:    delay,
		out:      out,
		sessions: make(map[string]*session),
		log:      commonlog.GetLogger("wingman.terminal"),
	}
}

// Name identifies the pool as a sink.
func (p *Pool) Name() string {
	return "terminal"
}

// Send types lines into the interpreter for language, starting one first if
// needed.
func (p *Pool) Send(ctx context.Context, language string, lines []string) error {
	s, fresh, err := p.session(language)
	if err != nil {
		return err
	}

	if fresh && p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, line := range lines {
		if _, err := io.WriteString(s.pty, line+"\n"); err != nil {
			p.drop(language, s)
			return fmt.Errorf("failed to write to %s terminal: %w", language, err)
		}
	}
	return nil
}

func (p *Pool) session(language string) (*session, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sessions[language]; ok {
		return s, false, nil
	}

	command, ok := p.commands[language]
	if !ok {
		return nil, false, fmt.Errorf("no terminal command for language %q", language)
	}
	argv, err := shellwords.Parse(command)
	if err != nil || len(argv) == 0 {
		return nil, false, fmt.Errorf("invalid terminal command %q: %v", command, err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	f, err := pty.Start(cmd)
	if err != nil {
		return nil, false, fmt.Errorf("failed to start %s terminal: %w", language, err)
	}
	p.log.Infof("started %s terminal: %s", language, command)

	s := &session{cmd: cmd, pty: f}
	p.sessions[language] = s

	go func() {
		_, _ = io.Copy(p.out, f)
		_ = cmd.Wait()
		p.log.Debugf("%s terminal exited", language)
		p.drop(language, s)
	}()

	return s, true, nil
}

// drop forgets s if it is still the current session for language.
func (p *Pool) drop(language string, s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessions[language] == s {
		delete(p.sessions, language)
	}
}

// Close stops every interpreter.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for lang, s := range p.sessions {
		s.pty.Close()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		delete(p.sessions, lang)
	}
	return nil
}
