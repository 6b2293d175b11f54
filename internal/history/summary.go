// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package history

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/relabs-tech/glove_computer/internal/motion"
)

// Summary describes the force and acceleration over a window of points.
type Summary struct {
	Count       int     `json:"count"`
	MeanForce   float64 `json:"mean_force"`
	MaxForce    float64 `json:"max_force"`
	P95Force    float64 `json:"p95_force"`
	StdDevForce float64 `json:"stddev_force"`
	MaxAccel    float64 `json:"max_accel"` // g, magnitude
	MotionShare float64 `json:"motion_share"`
}

// Summarize computes a Summary. An empty window yields the zero Summary.
func Summarize(points []Point) (Summary, error) {
	if len(points) == 0 {
		return Summary{}, nil
	}

	force := make(stats.Float64Data, len(points))
	accel := make(stats.Float64Data, len(points))
	moving := 0
	for i, p := range points {
		force[i] = p.Force
		accel[i] = p.Accel.Norm()
		if p.State == motion.Motion {
			moving++
		}
	}

	s := Summary{Count: len(points), MotionShare: float64(moving) / float64(len(points))}
	var err error
	if s.MeanForce, err = force.Mean(); err != nil {
		return Summary{}, fmt.Errorf("mean force: %w", err)
	}
	if s.MaxForce, err = force.Max(); err != nil {
		return Summary{}, fmt.Errorf("max force: %w", err)
	}
	if s.P95Force, err = stats.Percentile(force, 95); err != nil {
		return Summary{}, fmt.Errorf("p95 force: %w", err)
	}
	if s.StdDevForce, err = stats.StandardDeviationPopulation(force); err != nil {
		return Summary{}, fmt.Errorf("stddev force: %w", err)
	}
	if s.MaxAccel, err = accel.Max(); err != nil {
		return Summary{}, fmt.Errorf("max accel: %w", err)
	}
	return s, nil
}
