package mathhelp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapLongitude(t *testing.T) {
	tests := []struct {
		lon  float64
		want float64
	}{
		0: {lon: 0, want: 0},
		1: {lon: 180, want: -180},
		2: {lon: 359.75, want: -0.25},
		3: {lon: -180, want: -180},
		4: {lon: -200, want: 160},
		5: {lon: 540, want: -180},
		6: {lon: 179.75, want: 179.75},
		7: {lon: 360, want: 0},
	}
	for i, tt := range tests {
		got := WrapLongitude(tt.lon)
		assert.InDeltaf(t, tt.want, got, 1e-12, "test %d", i)
		assert.GreaterOrEqualf(t, got, -180., "test %d", i)
		assert.Lessf(t, got, 180., "test %d", i)
	}
}

func TestFloatEuclidianModNeverReturnsModulus(t *testing.T) {
	got := FloatEuclidianMod(-1e-17, 360)
	assert.GreaterOrEqual(t, got, 0.)
	assert.Less(t, got, 360.)
}

func TestBetweenInc(t *testing.T) {
	assert.True(t, BetweenInc(5., 10., 0.))
	assert.True(t, BetweenInc(0, 0, 10))
	assert.False(t, BetweenInc(-1, 0, 10))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 31))
	assert.Equal(t, 31, Clamp(40, 0, 31))
	assert.Equal(t, 2.5, Clamp(2.5, 0., 31.))
}

func TestIsFinite(t *testing.T) {
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
	assert.True(t, IsFinite(27.5))
}
