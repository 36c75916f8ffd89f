package terminal

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPool_SendStartsSessionOnce(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	out := &syncBuffer{}
	p := NewPool(map[string]string{"python": "cat"}, 0, out)
	defer p.Close()

	require.NoError(t, p.Send(context.Background(), "python", []string{"print('one')"}))
	require.NoError(t, p.Send(context.Background(), "python", []string{"print('two')"}))

	assert.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "print('one')") && strings.Contains(s, "print('two')")
	}, 5*time.Second, 20*time.Millisecond)

	p.mu.Lock()
	assert.Len(t, p.sessions, 1)
	p.mu.Unlock()
}

func TestPool_UnknownLanguage(t *testing.T) {
	p := NewPool(nil, 0, nil)

	err := p.Send(context.Background(), "julia", []string{"1"})
	assert.ErrorContains(t, err, "no terminal command")
}

func TestPool_DelayHonoursContext(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	p := NewPool(map[string]string{"r": "cat"}, time.Hour, nil)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Send(ctx, "r", []string{"1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(map[string]string{"python": "", "r": "Rscript --vanilla"}, -1, nil)

	assert.Equal(t, DefaultDelay, p.delay)
	assert.Equal(t, "python3 -q", p.commands["python"])
	assert.Equal(t, "Rscript --vanilla", p.commands["r"])
	assert.Equal(t, "terminal", p.Name())
}
