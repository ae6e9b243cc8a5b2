package game

// Summary aggregates a finished game's round results. It is a plain
// fold over immutable data; nothing here touches room state.
type Summary struct {
	Settings  Settings `json:"settings"`
	Win       int      `json:"win"`
	ChosenWin int      `json:"chosen_win"`
	LeftWin   int      `json:"left_win"`
	Switch    int      `json:"switch"`
	Stick     int      `json:"stick"`
	SwitchWin int      `json:"switch_win"`
	StickWin  int      `json:"stick_win"`
}

// Summarize computes the aggregate counts for results played with the
// given door count: total wins, rounds where the first choice was
// already correct, rounds where the host left the prize door, and the
// per-decision counts and win counts.
func Summarize(doors int, results []RoundResult) Summary {
	s := Summary{
		Settings: Settings{Doors: doors, Rounds: len(results)},
	}

	for _, r := range results {
		if r.Chosen == r.Prize {
			s.ChosenWin++
		}
		if r.Left == r.Prize {
			s.LeftWin++
		}

		switch r.Decision {
		case Switch:
			s.Switch++
			if r.Win {
				s.Win++
				s.SwitchWin++
			}
		case Stick:
			s.Stick++
			if r.Win {
				s.Win++
				s.StickWin++
			}
		}
	}

	return s
}
