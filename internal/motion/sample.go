// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedSample is returned by Sample.Validate. Malformed samples must
// never reach an Engine.
var ErrMalformedSample = errors.New("malformed sample")

// Sample is a single glove reading after transport decoding.
type Sample struct {
	Accel    Vec3    `json:"accel"`     // g, gravity offset already removed
	RawForce float64 `json:"raw_force"` // pre-calibration
	Elapsed  float64 `json:"elapsed"`   // seconds since the previous read, > 0
}

// Validate rejects non-finite values and non-positive elapsed times.
func (s Sample) Validate() error {
	fields := [...]struct {
		name string
		v    float64
	}{
		{"ax", s.Accel.X},
		{"ay", s.Accel.Y},
		{"az", s.Accel.Z},
		{"raw_force", s.RawForce},
		{"elapsed", s.Elapsed},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite (%v)", ErrMalformedSample, f.name, f.v)
		}
	}
	if s.Elapsed <= 0 {
		return fmt.Errorf("%w: elapsed %v s is not positive", ErrMalformedSample, s.Elapsed)
	}
	return nil
}
