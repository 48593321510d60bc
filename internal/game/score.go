package game

import (
	"slices"

	"github.com/scythe504/undercover-backend/internal"
)

// awardPoints gives one point to every player on the winning side.
func awardPoints(room *internal.Room, winner internal.Winner) {
	for _, p := range room.Players {
		spy := p.Role == internal.RoleSpy
		if (winner == internal.WinnerSpy) == spy {
			p.Score++
		}
	}
}

// Leaderboard ranks players by score, highest first. Equal scores keep join
// order and share a position (1, 1, 3).
func Leaderboard(players []*internal.Player) []internal.LeaderboardEntry {
	entries := make([]internal.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, internal.LeaderboardEntry{
			PlayerID: p.Id,
			Name:     p.Name,
			Score:    p.Score,
		})
	}

	slices.SortStableFunc(entries, func(a, b internal.LeaderboardEntry) int {
		return b.Score - a.Score
	})
	for idx := range entries {
		if idx > 0 && entries[idx].Score == entries[idx-1].Score {
			entries[idx].Position = entries[idx-1].Position
			continue
		}
		entries[idx].Position = idx + 1
	}
	return entries
}
