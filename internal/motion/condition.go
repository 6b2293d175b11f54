// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "math"

// Condition removes sub-threshold noise from each axis independently.
// Values with |v| < CleanseThreshold become exactly 0, everything else
// passes through unchanged, so Condition(Condition(v)) == Condition(v).
func Condition(v Vec3) Vec3 {
	return Vec3{X: cleanse(v.X), Y: cleanse(v.Y), Z: cleanse(v.Z)}
}

func cleanse(x float64) float64 {
	if math.Abs(x) < CleanseThreshold {
		return 0
	}
	return x
}
