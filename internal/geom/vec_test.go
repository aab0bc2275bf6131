package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLerp_ClampsAndInterpolates(t *testing.T) {
	a := Zero
	b := Splat(2)

	assert.Equal(t, a, Lerp(a, b, -1))
	assert.Equal(t, b, Lerp(a, b, 3))
	assert.Equal(t, One(), Lerp(a, b, 0.5))
}

func TestDistanceAndMagnitude(t *testing.T) {
	assert.InDelta(t, 5.0, V(0, 0, 0).Distance(V(3, 4, 0)), 1e-9)
	assert.InDelta(t, 12.0, V(2, 2, 2).SqrMagnitude(), 1e-9)
	assert.True(t, Vec3{}.IsZero())
	assert.False(t, V(0, 0.001, 0).IsZero())
}
