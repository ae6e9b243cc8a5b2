package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gengteng/ndoors/game"
)

func TestSummarize(t *testing.T) {
	results := []game.RoundResult{
		// Switch off the prize: win, host left the prize door.
		{Prize: 0, Chosen: 1, Left: 0, Decision: game.Switch, Win: true},
		// Stick on the prize: win, first choice was correct.
		{Prize: 2, Chosen: 2, Left: 1, Decision: game.Stick, Win: true},
		// Stick off the prize: loss.
		{Prize: 0, Chosen: 1, Left: 0, Decision: game.Stick, Win: false},
		// Switch from the prize: loss, first choice was correct.
		{Prize: 1, Chosen: 1, Left: 2, Decision: game.Switch, Win: false},
	}

	s := game.Summarize(3, results)

	assert.Equal(t, game.Settings{Doors: 3, Rounds: 4}, s.Settings)
	assert.Equal(t, 2, s.Win)
	assert.Equal(t, 2, s.ChosenWin)
	assert.Equal(t, 2, s.LeftWin)
	assert.Equal(t, 2, s.Switch)
	assert.Equal(t, 2, s.Stick)
	assert.Equal(t, 1, s.SwitchWin)
	assert.Equal(t, 1, s.StickWin)
}

func TestSummarizeEmpty(t *testing.T) {
	s := game.Summarize(3, nil)
	assert.Equal(t, game.Summary{Settings: game.Settings{Doors: 3}}, s)
}

// TestSwitchAdvantage plays many randomized rounds and checks the
// classic result: switching wins (doors-1)/doors of the time, sticking
// 1/doors.
func TestSwitchAdvantage(t *testing.T) {
	const doors, rounds = 3, 30000

	room := joinedRoom(t, doors, rounds)
	for i := 0; i < rounds; i++ {
		if _, err := room.StartRandom(); err != nil {
			t.Fatal(err)
		}
		if _, err := room.ChooseRandom(); err != nil {
			t.Fatal(err)
		}
		if _, err := room.RevealRandom(); err != nil {
			t.Fatal(err)
		}
		decision := game.Stick
		if i%2 == 0 {
			decision = game.Switch
		}
		if _, err := room.Decide(decision); err != nil {
			t.Fatal(err)
		}
	}

	results, err := room.Complete(false)
	if err != nil {
		t.Fatal(err)
	}
	s := game.Summarize(doors, results)

	assert.InDelta(t, 2.0/3.0, float64(s.SwitchWin)/float64(s.Switch), 0.03)
	assert.InDelta(t, 1.0/3.0, float64(s.StickWin)/float64(s.Stick), 0.03)
}
