package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_RandIntn(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := RandIntn(10)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 10)
	}
}

func Test_SelectWithoutReplacement(t *testing.T) {
	seed := []byte("a fixed seed for reproducibility")

	numbers, err := SelectWithoutReplacement(seed, 1000, 10)
	require.NoError(t, err)
	require.Len(t, numbers, 10)

	seen := map[int]bool{}
	for _, n := range numbers {
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 1000)
		require.False(t, seen[n], "number %d selected twice", n)
		seen[n] = true
	}

	// Same seed replays to the same numbers in the same order.
	replayed, err := SelectWithoutReplacement(seed, 1000, 10)
	require.NoError(t, err)
	require.Equal(t, numbers, replayed)

	// A different seed diverges.
	other, err := SelectWithoutReplacement([]byte("another seed"), 1000, 10)
	require.NoError(t, err)
	require.NotEqual(t, numbers, other)
}

func Test_SelectWithoutReplacement_FullRange(t *testing.T) {
	// Selecting everything must yield a permutation of [1, n].
	numbers, err := SelectWithoutReplacement([]byte("seed"), 8, 8)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, numbers)
}

func Test_SelectWithoutReplacement_Invalid(t *testing.T) {
	_, err := SelectWithoutReplacement([]byte("seed"), 0, 1)
	require.Error(t, err)

	_, err = SelectWithoutReplacement([]byte("seed"), 5, 6)
	require.Error(t, err)

	_, err = SelectWithoutReplacement([]byte("seed"), 5, 0)
	require.Error(t, err)
}
