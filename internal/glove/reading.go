// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package glove decodes raw glove readings from the transports that carry
// them (serial bridge, MQTT, mock) and turns them into motion samples.
package glove

import (
	"context"
	"errors"

	"github.com/relabs-tech/glove_computer/internal/motion"
)

// DefaultAzOffset is the gravity bias the glove firmware leaves on the
// vertical axis, in g.
const DefaultAzOffset = 1.0

// ErrSourceClosed is returned by Next after Close.
var ErrSourceClosed = errors.New("glove source closed")

// Reading is one raw glove reading as transmitted. Az still carries the
// gravity offset.
type Reading struct {
	Ax    float64 `json:"ax"` // g
	Ay    float64 `json:"ay"`
	Az    float64 `json:"az"`
	Force float64 `json:"force"` // raw, pre-calibration
}

// Sample removes the vertical offset and attaches the measured elapsed
// time. The result still has to pass motion.Sample.Validate.
func (r Reading) Sample(azOffset, elapsed float64) motion.Sample {
	return motion.Sample{
		Accel:    motion.Vec3{X: r.Ax, Y: r.Ay, Z: r.Az - azOffset},
		RawForce: r.Force,
		Elapsed:  elapsed,
	}
}

// Source is anything that yields glove readings. Next blocks until a
// reading is available, ctx is done or the transport fails.
type Source interface {
	Next(ctx context.Context) (Reading, error)
	Close() error
}

// Polled is implemented by sources that produce a reading whenever asked.
// The caller paces them; sources without it push readings at their own
// rate and are read as fast as they arrive.
type Polled interface {
	Polled() bool
}

// IsPolled reports whether src must be paced by its reader.
func IsPolled(src Source) bool {
	p, ok := src.(Polled)
	return ok && p.Polled()
}
