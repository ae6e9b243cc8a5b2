package main

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gengteng/ndoors/game"
)

// newSimulateCmd plays a room against itself: random prize placement,
// random choices, a fair coin for the final decision. Useful for
// demonstrating that switching wins about (doors-1)/doors of the time.
func newSimulateCmd() *cobra.Command {
	var doors, rounds int

	cmd := &cobra.Command{
		Use:           "simulate",
		Short:         "Play a full game against itself and print aggregate results.",
		Args:          cobra.ExactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(doors, rounds)
		},
	}

	cmd.Flags().IntVar(&doors, "doors", 3, "number of doors")
	cmd.Flags().IntVar(&rounds, "rounds", 100000, "number of rounds to play")

	return cmd
}

func simulate(doors, rounds int) error {
	room, err := game.Create(uuid.New(), game.Settings{Doors: doors, Rounds: rounds})
	if err != nil {
		return err
	}

	if err := room.AcceptContestant(uuid.New()); err != nil {
		return err
	}
	if err := room.SetReady(true); err != nil {
		return err
	}

	for i := 0; i < rounds; i++ {
		if _, err := room.StartRandom(); err != nil {
			return err
		}
		if _, err := room.ChooseRandom(); err != nil {
			return err
		}
		if _, err := room.RevealRandom(); err != nil {
			return err
		}

		decision := game.Stick
		if rand.Intn(2) == 0 {
			decision = game.Switch
		}
		if _, err := room.Decide(decision); err != nil {
			return err
		}
	}

	results, err := room.Complete(false)
	if err != nil {
		return err
	}

	s := game.Summarize(doors, results)
	printSummary(s)
	return nil
}

func printSummary(s game.Summary) {
	rounds := s.Settings.Rounds

	fmt.Printf("Settings: %d doors, %d rounds played.\n", s.Settings.Doors, rounds)
	fmt.Printf("Won %d rounds, lost %d, win rate %.2f%%.\n",
		s.Win, rounds-s.Win, percent(s.Win, rounds))
	fmt.Printf("First choice correct in %d rounds (%.2f%%).\n",
		s.ChosenWin, percent(s.ChosenWin, rounds))
	fmt.Printf("Stuck %d times, winning %d (%.2f%%).\n",
		s.Stick, s.StickWin, percent(s.StickWin, s.Stick))
	fmt.Printf("Switched %d times, winning %d (%.2f%%).\n",
		s.Switch, s.SwitchWin, percent(s.SwitchWin, s.Switch))
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
