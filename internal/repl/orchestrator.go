package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tliron/commonlog"

	"github.com/itsmostafa/wingman/internal/document"
)

var (
	// ErrBusy is returned when the block is already running.
	ErrBusy = errors.New("block is already running")
	// ErrUnsupportedLanguage is returned for documents that are neither Python nor R.
	ErrUnsupportedLanguage = errors.New("unsupported document language")
	// ErrNoBlock is returned when the line no longer starts a REPL block.
	ErrNoBlock = errors.New("no REPL block at line")
	// ErrUnavailable is returned by executors whose interpreter cannot be reached.
	ErrUnavailable = errors.New("execution backend unavailable")
	// ErrMalformedResult is returned when a backend answers with unusable output.
	ErrMalformedResult = errors.New("malformed execution result")
	// ErrStaleRange is returned when the document changed while the block ran.
	ErrStaleRange = errors.New("document changed during execution")
)

// log resolves the package logger on use so that it picks up the backend
// configured by the command line.
func log() commonlog.Logger {
	return commonlog.GetLogger("wingman.repl")
}

// Mode selects how a backend runs the code.
type Mode string

// ModeInteractive runs code as typed at a prompt, echoing expression values.
const ModeInteractive Mode = "interactive"

// Request is one unit of work for an executor.
type Request struct {
	Language string
	Code     string
	Echo     bool
	Mode     Mode
}

// Result is the captured output of an execution.
type Result struct {
	Output string
}

// Executor runs code and returns its captured output.
type Executor interface {
	// Name identifies the executor in logs and history
	Name() string
	// Execute runs req and returns its output. It returns an error wrapping
	// ErrUnavailable when the interpreter cannot be started.
	Execute(ctx context.Context, req Request) (*Result, error)
}

// StreamSink forwards code to a live interpreter without capturing output.
type StreamSink interface {
	Name() string
	Send(ctx context.Context, language string, lines []string) error
}

// Recorder receives one entry per finished run.
type Recorder interface {
	Record(run Run) error
}

// Document is what the orchestrator needs from a text buffer.
type Document interface {
	document.LineSource
	document.EditSink
	LanguageID() string
}

// Run describes a finished (or abandoned) run.
type Run struct {
	HeaderLine int
	Language   string
	Sink       string
	Status     string
	Duration   time.Duration
	Err        error
}

// Run statuses.
const (
	StatusReplaced = "replaced"
	StatusStreamed = "streamed"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// Outcome reports what a successful run did.
type Outcome struct {
	Block       *Block
	Sink        string
	Replacement string
	// Degraded is set when code went to the stream sink and the document
	// was left untouched.
	Degraded bool
}

// Orchestrator executes REPL blocks and writes their output back.
type Orchestrator struct {
	executor Executor
	fallback StreamSink
	recorder Recorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFallback sets the sink used when the executor is unavailable.
func WithFallback(sink StreamSink) Option {
	return func(o *Orchestrator) {
		o.fallback = sink
	}
}

// WithRecorder sets where run history is written.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// NewOrchestrator creates an orchestrator around executor, which may be nil
// when only the stream sink is available.
func NewOrchestrator(executor Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{executor: executor}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ExecutionLanguage maps a document language id to an interpreter language.
func ExecutionLanguage(languageID string) (string, bool) {
	switch strings.ToLower(languageID) {
	case document.LanguagePython:
		return document.LanguagePython, true
	case document.LanguageR:
		return document.LanguageR, true
	default:
		return "", false
	}
}

// Run executes the block whose header is at headerLine. state guards against
// a second run of the same lens while the first is in flight; a busy state
// returns ErrBusy without doing anything else.
func (o *Orchestrator) Run(ctx context.Context, doc Document, headerLine int, state *RunState) (*Outcome, error) {
	if state == nil {
		state = &RunState{}
	}
	if !state.TryStart() {
		log().Debugf("block at line %d already running, dropping request", headerLine+1)
		return nil, ErrBusy
	}
	defer state.Done()

	started := time.Now()
	run := Run{HeaderLine: headerLine, Status: StatusFailed}
	outcome, err := o.run(ctx, doc, headerLine, &run)
	run.Duration = time.Since(started)
	run.Err = err
	o.record(run)

	return outcome, err
}

func (o *Orchestrator) run(ctx context.Context, doc Document, headerLine int, run *Run) (*Outcome, error) {
	lang, ok := ExecutionLanguage(doc.LanguageID())
	if !ok {
		run.Status = StatusSkipped
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, doc.LanguageID())
	}
	run.Language = lang

	// Block boundaries from discovery are not trusted; scan again
	_, block := Scan(doc, headerLine)
	if block == nil {
		run.Status = StatusSkipped
		return nil, fmt.Errorf("%w %d", ErrNoBlock, headerLine+1)
	}

	if foreign := block.ForeignOutput(); len(foreign) > 0 {
		log().Warningf("block at line %d has no comment prefix; %d lines below it that do not look like output will be replaced", headerLine+1, len(foreign))
	}

	req := Request{
		Language: lang,
		Code:     block.Code(),
		Echo:     false,
		Mode:     ModeInteractive,
	}

	var result *Result
	err := fmt.Errorf("%w: no executor configured", ErrUnavailable)
	if o.executor != nil {
		run.Sink = o.executor.Name()
		result, err = o.executor.Execute(ctx, req)
	}
	if err != nil {
		if errors.Is(err, ErrUnavailable) && o.fallback != nil {
			log().Warningf("executor unavailable, sending block at line %d to %s: %v", headerLine+1, o.fallback.Name(), err)
			return o.stream(ctx, block, lang, run)
		}
		log().Errorf("execution of block at line %d failed: %v", headerLine+1, err)
		return nil, err
	}

	if result == nil || !utf8.ValidString(result.Output) {
		log().Errorf("executor %s returned unusable output for block at line %d", run.Sink, headerLine+1)
		return nil, ErrMalformedResult
	}

	replacement := Render(result.Output, block.OutputRange.IsEmpty(), block.Prefix)
	switch {
	case block.AtEnd:
		replacement = "\n" + strings.TrimSuffix(replacement, "\n")
	case !block.OutputRange.IsEmpty():
		// The range already ends at the old terminator's line break
		replacement = strings.TrimSuffix(replacement, "\n")
	}

	// Fail closed when the text moved under us while the code ran
	if !block.Unchanged(doc) {
		log().Warningf("block at line %d changed during execution, output discarded", headerLine+1)
		return nil, ErrStaleRange
	}

	if err := doc.Replace(block.OutputRange, replacement); err != nil {
		log().Errorf("failed to write output of block at line %d: %v", headerLine+1, err)
		return nil, fmt.Errorf("failed to replace output: %w", err)
	}

	run.Status = StatusReplaced
	return &Outcome{Block: block, Sink: run.Sink, Replacement: replacement}, nil
}

func (o *Orchestrator) stream(ctx context.Context, block *Block, lang string, run *Run) (*Outcome, error) {
	run.Sink = o.fallback.Name()
	lines := lineBreak.Split(block.Code(), -1)
	if err := o.fallback.Send(ctx, lang, lines); err != nil {
		log().Errorf("failed to send block at line %d to %s: %v", block.HeaderLine+1, run.Sink, err)
		return nil, fmt.Errorf("failed to send code to terminal: %w", err)
	}
	run.Status = StatusStreamed
	return &Outcome{Block: block, Sink: run.Sink, Degraded: true}, nil
}

func (o *Orchestrator) record(run Run) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(run); err != nil {
		log().Warningf("failed to record run history: %v", err)
	}
}
