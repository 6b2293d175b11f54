// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package history keeps the most recent conditioned samples for plotting.
package history

import (
	"sync"
	"time"

	"github.com/relabs-tech/glove_computer/internal/motion"
)

// DefaultLength matches the plot window of the glove dashboard.
const DefaultLength = 1000

// Point is one conditioned sample.
type Point struct {
	Time  time.Time    `json:"time"`
	Accel motion.Vec3  `json:"accel"`
	Force float64      `json:"force"`
	State motion.State `json:"state"`
}

// Buffer is a fixed-size ring of points, safe for concurrent use.
type Buffer struct {
	mu     sync.RWMutex
	points []Point
	start  int
	n      int
}

// NewBuffer returns an empty ring holding at most capacity points.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultLength
	}
	return &Buffer{points: make([]Point, capacity)}
}

// Push appends p, evicting the oldest point when full.
func (b *Buffer) Push(p Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.n < len(b.points) {
		b.points[(b.start+b.n)%len(b.points)] = p
		b.n++
		return
	}
	b.points[b.start] = p
	b.start = (b.start + 1) % len(b.points)
}

// Points returns a copy, oldest first.
func (b *Buffer) Points() []Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Point, b.n)
	for i := range out {
		out[i] = b.points[(b.start+i)%len(b.points)]
	}
	return out
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.n
}

func (b *Buffer) Cap() int { return len(b.points) }

// Clear drops every point.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start, b.n = 0, 0
}
