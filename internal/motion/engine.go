// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// Output is everything the presentation side needs after one sample.
type Output struct {
	State State   `json:"state"`
	Force float64 `json:"force"` // N, instantaneous
	Speed float64 `json:"speed"` // m/s, instantaneous
	Accel Vec3    `json:"accel"` // conditioned, g
	Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithPeakScope sets how long MaxForce is retained.
func WithPeakScope(scope PeakScope) Option {
	return func(e *Engine) {
		e.estimator.scope = scope
	}
}

// Engine chains Condition, Classifier and Estimator over one mutable state
// bundle. It is not safe for concurrent use.
type Engine struct {
	classifier Classifier
	estimator  Estimator
}

// NewEngine returns an engine in its initial state: Static, counter
// RestTicks, zero velocity and statistics.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Process runs one validated sample through the pipeline.
func (e *Engine) Process(s Sample) Output {
	accel := Condition(s.Accel)
	prev, next := e.classifier.Step(accel, s.Elapsed)
	stats, force := e.estimator.Update(prev, next, accel, s.Elapsed, s.RawForce)
	return Output{
		State: next,
		Force: force,
		Speed: e.estimator.Speed(),
		Accel: accel,
		Stats: stats,
	}
}

// Reset reinitialises the whole state bundle.
func (e *Engine) Reset() {
	e.classifier.Reset()
	e.estimator.Reset()
}

// Current reports the engine state as it would be published right after a
// reset or between samples.
func (e *Engine) Current() Output {
	return Output{
		State: e.classifier.State(),
		Speed: e.estimator.Speed(),
		Stats: e.estimator.Stats(),
	}
}

func (e *Engine) State() State { return e.classifier.State() }

func (e *Engine) Counter() int { return e.classifier.Counter() }

func (e *Engine) Velocity() Vec3 { return e.estimator.Velocity() }

func (e *Engine) Stats() Stats { return e.estimator.Stats() }

func (e *Engine) PeakScope() PeakScope { return e.estimator.scope }
