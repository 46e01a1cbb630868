package vecmath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/progmatch/pkg/vecmath"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"self", []float32{0.3, -1.2, 4}, []float32{0.3, -1.2, 4}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 2}, []float32{-1, -2}, -1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"zero norm", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vecmath.Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := vecmath.Cosine([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, vecmath.ErrDimensionMismatch)
}

func TestMean(t *testing.T) {
	got, err := vecmath.Mean([][]float32{{1, 2}, {3, 4}, {5, 0}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{3, 2}, got, 1e-6)

	_, err = vecmath.Mean(nil)
	assert.Error(t, err)

	_, err = vecmath.Mean([][]float32{{1}, {1, 2}})
	assert.ErrorIs(t, err, vecmath.ErrDimensionMismatch)
}

func TestRound4(t *testing.T) {
	assert.InDelta(t, 0.6861, vecmath.Round4(0.686149), 1e-12)
	assert.InDelta(t, 0.6862, vecmath.Round4(0.686172), 1e-12)
	assert.InDelta(t, -0.1235, vecmath.Round4(-0.12346), 1e-12)
	assert.Equal(t, 1.0, vecmath.Round4(0.99999999))
}
