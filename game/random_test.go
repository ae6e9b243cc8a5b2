package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDoorNeverExcluded(t *testing.T) {
	for doors := 2; doors <= 6; doors++ {
		for exclusive := 0; exclusive < doors; exclusive++ {
			for i := 0; i < 200; i++ {
				got := randomDoor(doors, exclusive)
				require.NotEqual(t, exclusive, got)
				require.GreaterOrEqual(t, got, 0)
				require.Less(t, got, doors)
			}
		}
	}
}

func TestRandomDoorCoversAllCandidates(t *testing.T) {
	const doors, exclusive, samples = 5, 2, 20000

	counts := make([]int, doors)
	for i := 0; i < samples; i++ {
		counts[randomDoor(doors, exclusive)]++
	}

	assert.Zero(t, counts[exclusive])
	// Each of the four candidates expects samples/4 draws; a quarter of
	// that as slack is far beyond any plausible statistical wobble.
	expected := samples / (doors - 1)
	for door, n := range counts {
		if door == exclusive {
			continue
		}
		assert.InDelta(t, expected, n, float64(expected)/4, "door %d", door)
	}
}

func TestRandomDoorPanicsOnBadExclusive(t *testing.T) {
	assert.Panics(t, func() { randomDoor(3, 3) })
	assert.Panics(t, func() { randomDoor(3, -1) })
}

func TestRandomDoorTwoDoors(t *testing.T) {
	// With two doors there is exactly one candidate.
	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, randomDoor(2, 0))
		assert.Equal(t, 0, randomDoor(2, 1))
	}
}
