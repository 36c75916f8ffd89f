package repl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/wingman/internal/document"
)

// fakeExecutor returns a fixed output and counts dispatches.
type fakeExecutor struct {
	output string
	err    error
	calls  atomic.Int32
	hook   func()
	last   Request
	mu     sync.Mutex
}

func (f *fakeExecutor) Name() string { return "fake" }

func (f *fakeExecutor) Execute(ctx context.Context, req Request) (*Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Output: f.output}, nil
}

type fakeSink struct {
	language string
	lines    []string
	err      error
}

func (f *fakeSink) Name() string { return "terminal" }

func (f *fakeSink) Send(ctx context.Context, language string, lines []string) error {
	f.language = language
	f.lines = lines
	return f.err
}

type fakeRecorder struct {
	runs []Run
}

func (f *fakeRecorder) Record(run Run) error {
	f.runs = append(f.runs, run)
	return nil
}

func TestOrchestrator_ReplacesOutput(t *testing.T) {
	doc := newDoc("x = 40", "# >>> x + 2", "# 41", "#", "print(x)")
	exec := &fakeExecutor{output: "42\n"}
	rec := &fakeRecorder{}

	outcome, err := NewOrchestrator(exec, WithRecorder(rec)).Run(context.Background(), doc, 1, &RunState{})
	require.NoError(t, err)

	assert.Equal(t, "x = 40\n# >>> x + 2\n# 42\n#\nprint(x)", doc.Text())
	assert.Equal(t, "fake", outcome.Sink)
	assert.False(t, outcome.Degraded)
	assert.Equal(t, Request{Language: "python", Code: "x + 2", Mode: ModeInteractive}, exec.last)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, StatusReplaced, rec.runs[0].Status)
	assert.Equal(t, "python", rec.runs[0].Language)
}

func TestOrchestrator_InsertsFreshOutput(t *testing.T) {
	doc := newDoc("# >>> a = 1", "# >>> a", "b = 2")
	exec := &fakeExecutor{output: "1"}

	_, err := NewOrchestrator(exec).Run(context.Background(), doc, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, "# >>> a = 1\n# >>> a\n# 1\n#\nb = 2", doc.Text())
	assert.Equal(t, "a = 1\na", exec.last.Code)
}

func TestOrchestrator_RerunIsIdempotent(t *testing.T) {
	doc := newDoc("# >>> 1+1", "# ")
	exec := &fakeExecutor{output: "2\n"}
	o := NewOrchestrator(exec)

	for i := 0; i < 3; i++ {
		_, err := o.Run(context.Background(), doc, 0, &RunState{})
		require.NoError(t, err)
		assert.Equal(t, "# >>> 1+1\n# 2\n#", doc.Text(), "run %d", i+1)
	}
}

func TestOrchestrator_RerunWithoutOutputIsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Document
		want string
	}{
		{
			name: "terminated block before code",
			doc:  newDoc("# >>> x = 1", "#", "print(x)"),
			want: "# >>> x = 1\n#\nprint(x)",
		},
		{
			name: "fresh block before code",
			doc:  newDoc("# >>> x = 1", "print(x)"),
			want: "# >>> x = 1\n#\nprint(x)",
		},
		{
			name: "block at end of document",
			doc:  newDoc("# >>> x = 1"),
			want: "# >>> x = 1\n#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrchestrator(&fakeExecutor{output: ""})
			for i := 0; i < 3; i++ {
				_, err := o.Run(context.Background(), tt.doc, 0, &RunState{})
				require.NoError(t, err)
				assert.Equal(t, tt.want, tt.doc.Text(), "run %d", i+1)
			}
		})
	}
}

func TestOrchestrator_BlockAtEndOfDocument(t *testing.T) {
	doc := newDoc("x = 1", "# >>> x")
	exec := &fakeExecutor{output: "1\n"}

	_, err := NewOrchestrator(exec).Run(context.Background(), doc, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, "x = 1\n# >>> x\n# 1\n#", doc.Text())
}

func TestOrchestrator_BlankOutputLines(t *testing.T) {
	doc := newDoc("# >>> print('a\\n\\nb')")
	exec := &fakeExecutor{output: "a\n\nb\n"}

	_, err := NewOrchestrator(exec).Run(context.Background(), doc, 0, nil)
	require.NoError(t, err)

	_, block := Scan(doc, 0)
	require.NotNil(t, block)
	assert.Equal(t, []string{"a", "", "b"}, Decode(block.Output, block.Prefix))
}

func TestOrchestrator_BusyStateDropsSecondRun(t *testing.T) {
	doc := newDoc("# >>> slow()", "#")
	started := make(chan struct{})
	release := make(chan struct{})
	exec := &fakeExecutor{output: "done", hook: func() {
		close(started)
		<-release
	}}
	o := NewOrchestrator(exec)
	state := &RunState{}

	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, firstErr = o.Run(context.Background(), doc, 0, state)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never reached the executor")
	}

	_, err := o.Run(context.Background(), doc, 0, state)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	<-done
	require.NoError(t, firstErr)

	assert.Equal(t, int32(1), exec.calls.Load())
	assert.True(t, state.TryStart(), "state released after the run")
}

func TestOrchestrator_UnsupportedLanguage(t *testing.T) {
	for _, lang := range []string{"quarto", "julia", ""} {
		t.Run(fmt.Sprintf("lang=%q", lang), func(t *testing.T) {
			doc := document.New("# >>> 1+1\n", lang)
			exec := &fakeExecutor{output: "2"}
			state := &RunState{}

			_, err := NewOrchestrator(exec).Run(context.Background(), doc, 0, state)

			assert.ErrorIs(t, err, ErrUnsupportedLanguage)
			assert.Equal(t, int32(0), exec.calls.Load())
			assert.True(t, state.TryStart(), "state released after the run")
		})
	}
}

func TestOrchestrator_RLanguage(t *testing.T) {
	doc := document.New("#> >>> 1 + 1\n", document.LanguageR)
	exec := &fakeExecutor{output: "[1] 2\n"}

	_, err := NewOrchestrator(exec).Run(context.Background(), doc, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, "r", exec.last.Language)
	assert.Equal(t, "#> >>> 1 + 1\n#> [1] 2\n#>\n", doc.Text())
}

func TestOrchestrator_NoBlock(t *testing.T) {
	doc := newDoc("x = 1", "# >>> x")
	exec := &fakeExecutor{output: "1"}

	_, err := NewOrchestrator(exec).Run(context.Background(), doc, 0, nil)

	assert.ErrorIs(t, err, ErrNoBlock)
	assert.Equal(t, int32(0), exec.calls.Load())
}

func TestOrchestrator_BackendErrorLeavesDocument(t *testing.T) {
	doc := newDoc("# >>> boom()", "# old", "#")
	exec := &fakeExecutor{err: errors.New("kernel died")}
	sink := &fakeSink{}
	state := &RunState{}

	_, err := NewOrchestrator(exec, WithFallback(sink)).Run(context.Background(), doc, 0, state)

	assert.EqualError(t, err, "kernel died")
	assert.Equal(t, "# >>> boom()\n# old\n#", doc.Text())
	assert.Nil(t, sink.lines, "fallback is only for unavailable backends")
	assert.True(t, state.TryStart(), "state released after the run")
}

func TestOrchestrator_MalformedResult(t *testing.T) {
	doc := newDoc("# >>> b'\\xff'", "#")
	exec := &fakeExecutor{output: "\xff\xfe"}

	_, err := NewOrchestrator(exec).Run(context.Background(), doc, 0, nil)

	assert.ErrorIs(t, err, ErrMalformedResult)
	assert.Equal(t, 0, doc.Version())
}

func TestOrchestrator_StaleRange(t *testing.T) {
	doc := newDoc("# >>> x", "# 1", "#")
	exec := &fakeExecutor{output: "2"}
	exec.hook = func() {
		_ = doc.Insert(document.Position{Line: 0}, "y = 3\n")
	}

	_, err := NewOrchestrator(exec).Run(context.Background(), doc, 0, nil)

	assert.ErrorIs(t, err, ErrStaleRange)
	assert.Equal(t, "y = 3\n# >>> x\n# 1\n#", doc.Text())
}

func TestOrchestrator_FallbackToStreamSink(t *testing.T) {
	doc := newDoc("# >>> a = 1", "# >>> print(a)")
	exec := &fakeExecutor{err: fmt.Errorf("%w: python3 not found", ErrUnavailable)}
	sink := &fakeSink{}
	rec := &fakeRecorder{}

	outcome, err := NewOrchestrator(exec, WithFallback(sink), WithRecorder(rec)).Run(context.Background(), doc, 0, nil)
	require.NoError(t, err)

	assert.True(t, outcome.Degraded)
	assert.Equal(t, "terminal", outcome.Sink)
	assert.Equal(t, "python", sink.language)
	assert.Equal(t, []string{"a = 1", "print(a)"}, sink.lines)
	assert.Equal(t, 0, doc.Version())
	require.Len(t, rec.runs, 1)
	assert.Equal(t, StatusStreamed, rec.runs[0].Status)
}

func TestOrchestrator_NoExecutorUsesFallback(t *testing.T) {
	doc := newDoc("# >>> 1")
	sink := &fakeSink{}

	outcome, err := NewOrchestrator(nil, WithFallback(sink)).Run(context.Background(), doc, 0, nil)
	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
}

func TestOrchestrator_UnavailableWithoutFallback(t *testing.T) {
	doc := newDoc("# >>> 1")

	_, err := NewOrchestrator(nil).Run(context.Background(), doc, 0, nil)

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExecutionLanguage(t *testing.T) {
	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{id: "python", want: "python", wantOK: true},
		{id: "R", want: "r", wantOK: true},
		{id: "quarto", wantOK: false},
		{id: "javascript", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ExecutionLanguage(tt.id)
		assert.Equal(t, tt.wantOK, ok, tt.id)
		assert.Equal(t, tt.want, got, tt.id)
	}
}
