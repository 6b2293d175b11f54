package app

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/glove_computer/internal/motion"
	"github.com/relabs-tech/glove_computer/internal/session"
)

func TestFormatUpdate(t *testing.T) {
	line := formatUpdate(session.Update{
		Seq:  12345,
		Kind: session.KindSample,
		Output: motion.Output{
			State: motion.Motion,
			Force: 1.9641,
			Stats: motion.Stats{EventCount: 1200, MaxSpeed: 4.903, MaxForce: 1.9641},
		},
	})
	assert.True(t, strings.HasPrefix(line, "[GLOVE] #12,345"), line)
	assert.Contains(t, line, "Motion")
	assert.Contains(t, line, "F=   1.96 N")
	assert.Contains(t, line, "v_max=  4.90 m/s")
	assert.Contains(t, line, "count=1,200")

	reset := formatUpdate(session.Update{Kind: session.KindReset, SessionID: "0f7c2a9e-1111-2222"})
	assert.Equal(t, "[RESET] session 0f7c2a9e cleared", reset)
}

func TestIsResetLine(t *testing.T) {
	for _, in := range []string{"r", "R", " reset ", "RESET"} {
		assert.True(t, isResetLine(in), in)
	}
	for _, in := range []string{"", "q", "resets", "rr"} {
		assert.False(t, isResetLine(in), in)
	}
}

func TestReadCommands(t *testing.T) {
	n := 0
	readCommands(context.Background(), strings.NewReader("r\nhello\nreset\n\n"), func() { n++ })
	assert.Equal(t, 2, n)
}

// syncBuffer is a bytes.Buffer safe for the printer goroutine and the test.
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

func TestRunMockConsole(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	out := &syncBuffer{}
	err := RunMockConsole(ctx, 1, strings.NewReader("r\n"), out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "[RESET]")
	assert.Contains(t, text, "[GLOVE]")
}
