package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSample_Validate(t *testing.T) {
	good := Sample{Accel: Vec3{X: 1, Y: -0.2, Z: 0}, RawForce: -0.3, Elapsed: 0.1}
	assert.NoError(t, good.Validate())

	bad := []Sample{
		{Elapsed: 0},
		{Elapsed: -0.01},
		{Elapsed: math.NaN()},
		{Elapsed: math.Inf(1)},
		{Accel: Vec3{X: math.NaN()}, Elapsed: 0.1},
		{Accel: Vec3{Y: math.Inf(-1)}, Elapsed: 0.1},
		{Accel: Vec3{Z: math.Inf(1)}, Elapsed: 0.1},
		{RawForce: math.NaN(), Elapsed: 0.1},
	}
	for _, s := range bad {
		assert.ErrorIs(t, s.Validate(), ErrMalformedSample, "%+v", s)
	}
}
