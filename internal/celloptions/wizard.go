package celloptions

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/itsmostafa/wingman/internal/document"
)

// CustomOption is the pseudo entry that asks for a free-form key.
const CustomOption = "custom..."

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

// Prompter asks the user questions. Both methods return ErrCancelled when
// the user dismisses the prompt.
type Prompter interface {
	// Choose returns one of items.
	Choose(prompt string, items []string) (string, error)
	// Input returns free text. An empty answer is valid.
	Input(prompt, placeholder string) (string, error)
}

// Wizard walks the user through section, option and value, then inserts the
// option comment under a cell fence.
type Wizard struct {
	prompter Prompter
}

// NewWizard creates a Wizard asking its questions through p.
func NewWizard(p Prompter) *Wizard {
	return &Wizard{prompter: p}
}

// Run asks for an option and inserts it below fenceLine. Cancelling at any
// step leaves sink untouched and returns ErrCancelled.
func (w *Wizard) Run(sink document.EditSink, fenceLine int) (string, string, error) {
	section, err := w.prompter.Choose("Select a main section (Attributes, Code Output, etc.)", Sections())
	if err != nil {
		return "", "", err
	}
	group, ok := Section(section)
	if !ok {
		return "", "", fmt.Errorf("unknown section %q", section)
	}

	keys := make([]string, 0, len(group.Options)+1)
	for _, o := range group.Options {
		keys = append(keys, o.Key)
	}
	keys = append(keys, CustomOption)

	key, err := w.prompter.Choose(fmt.Sprintf("Select an option under %q", section), keys)
	if err != nil {
		return "", "", err
	}
	if key == CustomOption {
		key, err = w.prompter.Input("Enter custom option name", "")
		if err != nil {
			return "", "", err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return "", "", ErrCancelled
		}
	}

	value, err := w.prompter.Input(fmt.Sprintf("Set value for '%s'", key), "true / false / string / number")
	if err != nil {
		return "", "", err
	}

	if err := InsertOption(sink, fenceLine, key, value); err != nil {
		return "", "", err
	}
	return key, value, nil
}

// LinePrompter asks questions on the terminal with line editing and tab
// completion of choices.
type LinePrompter struct {
	state *liner.State
	out   io.Writer
}

// NewLinePrompter takes over the terminal until Close is called.
func NewLinePrompter(out io.Writer) *LinePrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinePrompter{state: state, out: out}
}

// Close restores the terminal.
func (p *LinePrompter) Close() error {
	return p.state.Close()
}

// Choose prints the numbered items and accepts a number, a name, or a unique
// name prefix.
func (p *LinePrompter) Choose(prompt string, items []string) (string, error) {
	fmt.Fprintln(p.out, prompt)
	for i, item := range items {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, item)
	}

	p.state.SetCompleter(func(line string) []string {
		var c []string
		for _, item := range items {
			if strings.HasPrefix(item, line) {
				c = append(c, item)
			}
		}
		return c
	})
	defer p.state.SetCompleter(nil)

	for {
		answer, err := p.prompt("> ")
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", ErrCancelled
		}
		if item, ok := pick(items, answer); ok {
			return item, nil
		}
		fmt.Fprintf(p.out, "no choice matches %q\n", answer)
	}
}

// Input reads one line of free text.
func (p *LinePrompter) Input(prompt, placeholder string) (string, error) {
	if placeholder != "" {
		prompt = fmt.Sprintf("%s (%s)", prompt, placeholder)
	}
	return p.prompt(prompt + ": ")
}

func (p *LinePrompter) prompt(text string) (string, error) {
	line, err := p.state.Prompt(text)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// pick resolves an answer against items by 1-based index, exact name, or
// unique prefix.
func pick(items []string, answer string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(items) {
			return items[n-1], true
		}
		return "", false
	}

	if slices.Contains(items, answer) {
		return answer, true
	}

	var match string
	for _, item := range items {
		if strings.HasPrefix(item, answer) {
			if match != "" {
				return "", false
			}
			match = item
		}
	}
	return match, match != ""
}
