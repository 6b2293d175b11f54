package glove

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/glove_computer/internal/motion"
)

func TestMockSource_Deterministic(t *testing.T) {
	a := NewMockSource(42, 20)
	b := NewMockSource(42, 20)
	for i := 0; i < 50; i++ {
		ra, err := a.Next(context.Background())
		require.NoError(t, err)
		rb, err := b.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestMockSource_PunchesAreCounted(t *testing.T) {
	src := NewMockSource(7, 20)
	e := motion.NewEngine()
	for i := 0; i < 100; i++ {
		r, err := src.Next(context.Background())
		require.NoError(t, err)
		e.Process(r.Sample(DefaultAzOffset, 0.1))
	}
	assert.Equal(t, 5, e.Stats().EventCount)
}

func TestMockSource_RestIsBelowNoiseFloor(t *testing.T) {
	src := NewMockSource(1, 20)
	for i := 0; i < 40; i++ {
		r, err := src.Next(context.Background())
		require.NoError(t, err)
		if i%20 < len(punchProfile) {
			continue
		}
		s := r.Sample(DefaultAzOffset, 0.1)
		assert.Less(t, math.Abs(s.Accel.X), motion.CleanseThreshold)
		assert.Less(t, math.Abs(s.Accel.Z), motion.CleanseThreshold)
	}
}

func TestMockSource_Close(t *testing.T) {
	src := NewMockSource(1, 0)
	require.NoError(t, src.Close())
	_, err := src.Next(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestIsPolled(t *testing.T) {
	assert.True(t, IsPolled(NewMockSource(1, 20)))
	assert.False(t, IsPolled(NewLineSource(io.NopCloser(strings.NewReader("")))))
	assert.False(t, IsPolled(&MQTTSource{}))
}
