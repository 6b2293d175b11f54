package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/glove_computer/internal/motion"
)

var punch = motion.Sample{Accel: motion.Vec3{X: 10}, RawForce: 0.1, Elapsed: 0.05}

func startSession(t *testing.T, opts ...motion.Option) (*Session, chan Update) {
	t.Helper()
	s := New(opts...)
	ch := make(chan Update, 64)
	sub := s.Subscribe(ch)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Error("session did not stop")
		}
		sub.Unsubscribe()
	})
	return s, ch
}

func recv(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestSession_InitialSnapshot(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.SessionID)
	assert.Equal(t, motion.Static, snap.State)
	assert.Equal(t, motion.Stats{}, snap.Stats)
	assert.NotEmpty(t, s.ID())
}

func TestSession_SampleUpdate(t *testing.T) {
	s, ch := startSession(t)
	require.NoError(t, s.Submit(context.Background(), punch))

	u := recv(t, ch)
	assert.Equal(t, KindSample, u.Kind)
	assert.Equal(t, uint64(1), u.Seq)
	assert.Equal(t, s.ID(), u.SessionID)
	assert.Equal(t, motion.Motion, u.State)
	assert.Equal(t, 1, u.EventCount)
	assert.InDelta(t, 4.903325, u.MaxSpeed, 1e-9)
	assert.InDelta(t, 0.05, u.Elapsed, 1e-12)
	assert.Equal(t, u, s.Snapshot())
}

func TestSession_RejectsMalformed(t *testing.T) {
	s, ch := startSession(t)
	err := s.Submit(context.Background(), motion.Sample{Accel: motion.Vec3{X: 10}, Elapsed: 0})
	assert.ErrorIs(t, err, motion.ErrMalformedSample)
	assert.Equal(t, uint64(1), s.Rejected())

	require.NoError(t, s.Submit(context.Background(), punch))
	u := recv(t, ch)
	assert.Equal(t, uint64(1), u.Seq, "rejected sample must not produce an update")
}

func TestSession_ResetAppliedBeforePendingSample(t *testing.T) {
	s, ch := startSession(t)
	require.NoError(t, s.Submit(context.Background(), punch))
	first := recv(t, ch)
	require.Equal(t, 1, first.EventCount)

	s.Reset()
	require.NoError(t, s.Submit(context.Background(), punch))

	reset := recv(t, ch)
	assert.Equal(t, KindReset, reset.Kind)
	assert.Equal(t, motion.Static, reset.State)
	assert.Equal(t, motion.Stats{}, reset.Stats)

	after := recv(t, ch)
	assert.Equal(t, KindSample, after.Kind)
	assert.Equal(t, 1, after.EventCount, "punch after reset starts a fresh count")
	assert.InDelta(t, 4.903325, after.MaxSpeed, 1e-9)
	assert.Greater(t, after.Seq, reset.Seq)
}

func TestSession_ResetsCoalesce(t *testing.T) {
	s, ch := startSession(t)
	s.Reset()
	s.Reset()
	s.Reset()
	u := recv(t, ch)
	assert.Equal(t, KindReset, u.Kind)

	require.NoError(t, s.Submit(context.Background(), punch))
	next := recv(t, ch)
	assert.Equal(t, KindSample, next.Kind)
}

func TestSession_SubmitHonoursContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Submit(ctx, punch)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestUpdate_JSON(t *testing.T) {
	u := Update{
		SessionID: "abc",
		Seq:       7,
		Kind:      KindSample,
		Elapsed:   0.1,
		Output: motion.Output{
			State: motion.Motion,
			Force: 1.5,
			Stats: motion.Stats{EventCount: 2, MaxSpeed: 3.5, MaxForce: 4},
		},
	}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"state":"Motion"`)
	assert.Contains(t, string(b), `"event_count":2`)

	var back Update
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, u.Output, back.Output)
	assert.Equal(t, u.Kind, back.Kind)
}
