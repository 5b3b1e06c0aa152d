package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextRating(t *testing.T) {
	tests := []struct {
		name       string
		mean       float64
		n          int
		rating     float64
		wantMean   float64
		wantTotals int
	}{
		{"first rating", 0, 0, 4, 4, 1},
		{"half rounds up", 4.0, 3, 5, 4.3, 4},
		{"stays put", 3.5, 2, 3.5, 3.5, 3},
		{"zero rating", 5, 1, 0, 2.5, 2},
		{"repeating decimal", 4, 2, 5, 4.3, 3},
		{"rounds down", 4, 2, 4.2, 4.1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, n := NextRating(tt.mean, tt.n, tt.rating)
			assert.InDelta(t, tt.wantMean, mean, 1e-9)
			assert.Equal(t, tt.wantTotals, n)
		})
	}
}

func TestValidRating(t *testing.T) {
	assert.True(t, validRating(0))
	assert.True(t, validRating(5))
	assert.True(t, validRating(2.5))
	assert.False(t, validRating(-1))
	assert.False(t, validRating(5.1))
	assert.False(t, validRating(math.NaN()))
}
