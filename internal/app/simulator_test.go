package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/glove_computer/internal/glove"
)

func TestRunSimulator_Sentences(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out := &syncBuffer{}
	require.NoError(t, RunSimulator(ctx, 3, SimulateSentences, out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\r\n")
	require.NotEmpty(t, lines)
	first, err := glove.ParseSentence(lines[0])
	require.NoError(t, err)
	// The mock glove opens with a punch.
	assert.InDelta(t, 6.5, first.Ax, 0.05)
	for _, line := range lines {
		_, err := glove.ParseSentence(line)
		assert.NoError(t, err, line)
	}
}

func TestRunSimulator_UnknownFormat(t *testing.T) {
	err := RunSimulator(context.Background(), 1, "csv", &syncBuffer{})
	assert.Error(t, err)
}
