// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package glove

import (
	"context"
	"math/rand/v2"
	"sync"
)

// punchProfile is the x-axis acceleration (g) and raw force of one
// simulated jab, one entry per reading.
var punchProfile = []struct{ ax, force float64 }{
	{6.5, 0.15},
	{9.0, 0.42},
	{3.5, 0.30},
	{-7.5, 0.10},
	{-4.0, 0.05},
}

// MockSource generates rest noise with a punch every period readings. It
// is deterministic for a given seed.
type MockSource struct {
	mu     sync.Mutex
	rng    *rand.Rand
	period int
	i      int
	closed bool
}

// NewMockSource creates a mock glove. period is clamped so a full punch
// and its rest window fit in one cycle.
func NewMockSource(seed uint64, period int) *MockSource {
	if period < len(punchProfile)+10 {
		period = len(punchProfile) + 10
	}
	return &MockSource{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		period: period,
	}
}

func (m *MockSource) Next(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Reading{}, ErrSourceClosed
	}

	// Sensor noise stays below the conditioner's 0.05 g floor.
	noise := func() float64 { return (m.rng.Float64()*2 - 1) * 0.04 }
	r := Reading{
		Ax:    noise(),
		Ay:    noise(),
		Az:    DefaultAzOffset + noise(),
		Force: m.rng.Float64() * 0.01,
	}
	if step := m.i % m.period; step < len(punchProfile) {
		r.Ax = punchProfile[step].ax + noise()
		r.Force = punchProfile[step].force
	}
	m.i++
	return r, nil
}

// Polled is always true: the mock has a reading ready on every call.
func (m *MockSource) Polled() bool { return true }

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
