// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// Jerk is the activity metric used for classification: acceleration
// magnitude in m/s² scaled by the sample window. It is an impulse proxy,
// not the derivative of acceleration.
func Jerk(accel Vec3, elapsed float64) float64 {
	return accel.Norm() * GToMS2 * elapsed
}

// Classify is the hysteresis transition function.
//
//	Static, jerk >  threshold → Motion, counter = RestTicks
//	Static, jerk <= threshold → Static, counter unchanged
//	Motion, jerk >  threshold → Motion, counter = RestTicks
//	Motion, jerk <= threshold → counter-1; on reaching 0 → Static, counter = RestTicks
//
// Starting in Motion with counter c, Static is returned on exactly the c-th
// consecutive quiet sample.
func Classify(accel Vec3, elapsed float64, prev State, counter int) (State, int) {
	active := Jerk(accel, elapsed) > MotionThreshold

	if prev != Motion {
		if active {
			return Motion, RestTicks
		}
		return Static, counter
	}

	if active {
		return Motion, RestTicks
	}
	counter--
	if counter <= 0 {
		return Static, RestTicks
	}
	return Motion, counter
}

// Classifier holds the state machine between samples.
type Classifier struct {
	state   State
	counter int
}

// NewClassifier returns a classifier in Static with a full rest window.
func NewClassifier() *Classifier {
	c := &Classifier{}
	c.Reset()
	return c
}

// Step classifies one conditioned sample and returns the state before and
// after it.
func (c *Classifier) Step(accel Vec3, elapsed float64) (prev, next State) {
	prev = c.state
	c.state, c.counter = Classify(accel, elapsed, c.state, c.counter)
	return prev, c.state
}

func (c *Classifier) State() State { return c.state }

func (c *Classifier) Counter() int { return c.counter }

// Reset puts the classifier back to Static with counter RestTicks.
func (c *Classifier) Reset() {
	c.state = Static
	c.counter = RestTicks
}
