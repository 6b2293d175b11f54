// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "fmt"

// Stats are the per-event statistics shown to the user.
type Stats struct {
	EventCount int     `json:"event_count"`
	MaxSpeed   float64 `json:"max_speed"` // m/s
	MaxForce   float64 `json:"max_force"` // N
}

// PeakScope selects whether MaxForce is cleared on every return to Static
// (per punch) or kept for the whole session until Reset.
type PeakScope uint8

const (
	PeakPerEvent PeakScope = iota
	PeakPerSession
)

func (p PeakScope) String() string {
	if p == PeakPerSession {
		return "session"
	}
	return "event"
}

// ParsePeakScope accepts "event" or "session".
func ParsePeakScope(v string) (PeakScope, error) {
	switch v {
	case "event", "":
		return PeakPerEvent, nil
	case "session":
		return PeakPerSession, nil
	default:
		return PeakPerEvent, fmt.Errorf("unknown peak scope %q (want event or session)", v)
	}
}

// CalibrateForce converts a raw force reading to Newtons. The calibration
// is quadratic, so the result is never negative.
func CalibrateForce(raw float64) float64 {
	return ForceCalibrationScale * raw * raw
}

// Estimator integrates acceleration into velocity while in Motion and
// tracks the event statistics.
type Estimator struct {
	velocity Vec3
	stats    Stats
	scope    PeakScope
}

// NewEstimator returns a zeroed estimator.
func NewEstimator(scope PeakScope) *Estimator {
	return &Estimator{scope: scope}
}

// Update applies one classified sample and returns the statistics together
// with the instantaneous calibrated force.
func (e *Estimator) Update(prev, next State, accel Vec3, elapsed, rawForce float64) (Stats, float64) {
	force := CalibrateForce(rawForce)

	if next != Motion {
		// Rest confirmed: drop whatever velocity drift accumulated.
		e.velocity = Vec3{}
		e.stats.MaxSpeed = 0
		if e.scope == PeakPerEvent {
			e.stats.MaxForce = 0
		}
		return e.stats, force
	}

	e.velocity = e.velocity.Add(accel.Scale(GToMS2 * elapsed))
	e.stats.MaxSpeed = max(e.stats.MaxSpeed, e.velocity.Norm())
	e.stats.MaxForce = max(e.stats.MaxForce, force)
	if prev == Static {
		e.stats.EventCount++
	}
	return e.stats, force
}

func (e *Estimator) Velocity() Vec3 { return e.velocity }

// Speed is the magnitude of the integrated velocity.
func (e *Estimator) Speed() float64 { return e.velocity.Norm() }

func (e *Estimator) Stats() Stats { return e.stats }

// Reset zeroes velocity and statistics. The peak scope is kept.
func (e *Estimator) Reset() {
	e.velocity = Vec3{}
	e.stats = Stats{}
}
