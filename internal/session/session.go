// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package session runs one acquisition session: a single goroutine owns the
// motion engine, takes samples and reset commands over channels, and fans
// every result out to subscribers.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"

	"github.com/relabs-tech/glove_computer/internal/motion"
)

// Kind tells subscribers whether an Update follows a sample or a reset.
type Kind string

const (
	KindSample Kind = "sample"
	KindReset  Kind = "reset"
)

// Update is published after every processed sample and every reset.
type Update struct {
	SessionID string    `json:"session_id"`
	Seq       uint64    `json:"seq"`
	Time      time.Time `json:"time"`
	Kind      Kind      `json:"kind"`
	Elapsed   float64   `json:"elapsed,omitempty"` // seconds, sample updates only
	motion.Output
}

// Session serialises samples and resets onto one motion.Engine.
type Session struct {
	id     string
	engine *motion.Engine

	samples chan motion.Sample
	resets  chan struct{}

	feed event.FeedOf[Update]

	mu   sync.RWMutex
	last Update
	seq  uint64

	rejected atomic.Uint64

	now    func() time.Time
	logger *slog.Logger
}

// New creates a session in the engine's initial state. Options are passed
// through to motion.NewEngine.
func New(opts ...motion.Option) *Session {
	id := uuid.NewString()
	s := &Session{
		id:      id,
		engine:  motion.NewEngine(opts...),
		samples: make(chan motion.Sample),
		resets:  make(chan struct{}, 1),
		now:     time.Now,
		logger:  slog.With("component", "session", "session", id),
	}
	s.last = Update{SessionID: id, Kind: KindReset, Time: s.now(), Output: s.engine.Current()}
	return s
}

func (s *Session) ID() string { return s.id }

// Subscribe registers ch for every future Update. Delivery is synchronous:
// a subscriber that stops draining its channel stalls the session, so
// subscribers should use a buffered channel and unsubscribe when done.
func (s *Session) Subscribe(ch chan<- Update) event.Subscription {
	return s.feed.Subscribe(ch)
}

// Submit validates smp and hands it to the session loop. Malformed samples
// are counted and rejected with motion.ErrMalformedSample.
func (s *Session) Submit(ctx context.Context, smp motion.Sample) error {
	if err := smp.Validate(); err != nil {
		s.rejected.Add(1)
		return err
	}
	select {
	case s.samples <- smp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset asks the loop to reinitialise the engine. It never blocks; several
// resets pending at once collapse into one.
func (s *Session) Reset() {
	select {
	case s.resets <- struct{}{}:
	default:
	}
}

// Rejected is the number of malformed samples refused by Submit.
func (s *Session) Rejected() uint64 { return s.rejected.Load() }

// Snapshot returns the most recent Update.
func (s *Session) Snapshot() Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run owns the engine until ctx is cancelled. A reset that is pending when
// a sample arrives is applied before that sample.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started", "peak_scope", s.engine.PeakScope())
	defer s.logger.Info("session stopped", "rejected", s.Rejected())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.resets:
			s.applyReset()
		case smp := <-s.samples:
			select {
			case <-s.resets:
				s.applyReset()
			default:
			}
			s.applySample(smp)
		}
	}
}

func (s *Session) applyReset() {
	s.engine.Reset()
	s.logger.Info("internal state has been reset")
	s.publish(Update{Kind: KindReset, Output: s.engine.Current()})
}

func (s *Session) applySample(smp motion.Sample) {
	out := s.engine.Process(smp)
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug(fmt.Sprintf("state = %s", out.State),
			"ax", out.Accel.X, "ay", out.Accel.Y, "az", out.Accel.Z,
			"force", out.Force, "v_max", out.MaxSpeed, "f_max", out.MaxForce,
			"count", out.EventCount, "elapsed", smp.Elapsed)
	}
	s.publish(Update{Kind: KindSample, Elapsed: smp.Elapsed, Output: out})
}

func (s *Session) publish(u Update) {
	s.mu.Lock()
	s.seq++
	u.SessionID = s.id
	u.Seq = s.seq
	u.Time = s.now()
	s.last = u
	s.mu.Unlock()

	s.feed.Send(u)
}
