package topology

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedianFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  []int
		window int
		want   []int
	}{
		{"empty", []int{}, 5, []int{}},
		{"single", []int{7}, 5, []int{7}},
		{"shrinking window", []int{1, 9, 2, 8, 3}, 5, []int{1, 2, 3, 3, 3}},
		{"spike removed", []int{0, 0, 0, 1000, 0, 0, 0}, 5, []int{0, 0, 0, 0, 0, 0, 0}},
		{"window one copies", []int{4, 1, 3}, 1, []int{4, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MedianFilter(tt.input, tt.window))
		})
	}
}

func TestMedianFilterDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := []int{5, 3, 9, 1, 7}
	_ = MedianFilter(input, 5)
	assert.Equal(t, []int{5, 3, 9, 1, 7}, input)
}

func TestMedianFilterProperties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		n := 1 + rng.IntN(60)
		input := make([]int, n)
		for i := range input {
			input[i] = rng.IntN(1001)
		}

		out := MedianFilter(input, 5)
		require.Len(t, out, n)
		assert.Equal(t, input[0], out[0])
		assert.Equal(t, input[n-1], out[n-1])

		constant := fill(n, input[0])
		assert.Equal(t, constant, MedianFilter(constant, 5))
	}
}
