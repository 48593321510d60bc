package game

import "github.com/scythe504/undercover-backend/internal"

// Tally counts, per suspect id, how many voters named them.
func Tally(votes map[string]string) map[string]int {
	tally := make(map[string]int, len(votes))
	for _, suspect := range votes {
		tally[suspect]++
	}
	return tally
}

// TopSuspect returns the suspect holding a strictly unique maximum. Ties and
// an empty tally yield no top suspect.
func TopSuspect(tally map[string]int) (string, bool) {
	top, best, tied := "", 0, false
	for suspect, n := range tally {
		switch {
		case n > best:
			top, best, tied = suspect, n, false
		case n == best:
			tied = true
		}
	}
	if best == 0 || tied {
		return "", false
	}
	return top, true
}

// Resolve computes the round outcome from the room's votes and roles without
// mutating the room. Civilians win only when the top suspect is a spy.
// Caller holds room.Mu.
func Resolve(room *internal.Room) internal.GameOverData {
	tally := Tally(room.Votes)

	spies := make([]string, 0, 1)
	for _, p := range room.Players {
		if p.Role == internal.RoleSpy {
			spies = append(spies, p.Name)
		}
	}

	result := internal.GameOverData{
		SecretWord: room.SecretWord,
		Spies:      spies,
		Winner:     internal.WinnerSpy,
		Votes:      tally,
		Players:    room.PlayerRefs(),
		Round:      room.Round,
	}

	if top, ok := TopSuspect(tally); ok {
		if p := room.GetPlayer(top); p != nil && p.Role == internal.RoleSpy {
			result.Winner = internal.WinnerCivilians
			result.CaughtSpy = true
		}
	}
	return result
}
