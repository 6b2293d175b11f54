// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion classifies glove motion into Static/Motion states and
// dead-reckons punch speed from conditioned acceleration samples.
//
// Data flows one sample at a time:
//
//	Sample → Condition → Classify (previous state) → Estimator.Update (new state) → Output
//
// Nothing in this package blocks, allocates per sample or touches global
// state. Callers own an Engine and must not drive it from more than one
// goroutine at a time.
package motion

import "math"

const (
	// GToMS2 converts g-units to m/s².
	GToMS2 = 9.80665

	// CleanseThreshold is the per-axis noise floor in g. Smaller readings are
	// zeroed before classification and integration.
	CleanseThreshold = 0.05

	// MotionThreshold is the jerk level (m/s-equivalent) above which a sample
	// counts as active.
	MotionThreshold = 3.0

	// RestTicks is the number of consecutive quiet samples needed to confirm
	// rest after motion.
	RestTicks = 5

	// ForceCalibrationScale maps the raw force reading to Newtons:
	// force = ForceCalibrationScale * raw².
	ForceCalibrationScale = 196.4092
)

// Vec3 is a three-axis quantity: g for acceleration, m/s for velocity.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Scale returns v * k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
