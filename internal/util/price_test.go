package util

import (
	"math"
	"testing"
)

func TestRoundToTick(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		tick     float64
		expected float64
	}{
		{
			name:     "basic rounding down",
			x:        1.2345,
			tick:     0.01,
			expected: 1.23,
		},
		{
			name:     "tie rounds away from zero",
			x:        1.235,
			tick:     0.01,
			expected: 1.24,
		},
		{
			name:     "negative tie rounds away from zero",
			x:        -1.235,
			tick:     0.01,
			expected: -1.24,
		},
		{
			name:     "percent grid",
			x:        66.666666,
			tick:     0.1,
			expected: 66.7,
		},
		{
			name:     "larger tick size",
			x:        1.27,
			tick:     0.05,
			expected: 1.25,
		},
		{
			name:     "exact multiple",
			x:        1.25,
			tick:     0.05,
			expected: 1.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToTick(tt.x, tt.tick)
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("RoundToTick(%v, %v) = %v, expected %v", tt.x, tt.tick, result, tt.expected)
			}
		})
	}
}

func TestRoundToTickEdgeCases(t *testing.T) {
	t.Run("non-positive tick returns input", func(t *testing.T) {
		input := 1.2345
		if result := RoundToTick(input, 0); result != input {
			t.Errorf("RoundToTick(%v, 0) = %v, expected %v", input, result, input)
		}
		if result := RoundToTick(input, -0.01); result != input {
			t.Errorf("RoundToTick(%v, -0.01) = %v, expected %v", input, result, input)
		}
	})

	t.Run("NaN input returns NaN", func(t *testing.T) {
		if result := RoundToTick(math.NaN(), 0.01); !math.IsNaN(result) {
			t.Errorf("RoundToTick(NaN, 0.01) = %v, expected NaN", result)
		}
	})

	t.Run("infinite inputs return unchanged", func(t *testing.T) {
		posInf := math.Inf(1)
		if result := RoundToTick(posInf, 0.01); result != posInf {
			t.Errorf("RoundToTick(+Inf, 0.01) = %v, expected +Inf", result)
		}
	})
}
