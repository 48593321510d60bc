package game

import (
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/testutil"
	"github.com/scythe504/undercover-backend/internal/utils"
)

// Random interleavings of every action keep the room consistent: a live room
// is never empty, has exactly one host, and holds a word only mid-round.
func TestRegistry_InvariantsUnderRandomActions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const code = "AB12"
		reg := NewRegistry(fixedCatalog{word: testWord},
			WithLogger(zap.NewNop()),
			WithCodeGenerator(codeSeq(code)),
			WithMaxPlayers(5))

		ids := []string{"a", "b", "c", "d", "e", "f"}
		idGen := rapid.SampledFrom(ids)

		steps := rapid.IntRange(1, 80).Draw(t, "steps")
		for range steps {
			id := idGen.Draw(t, "player")
			switch rapid.IntRange(0, 9).Draw(t, "action") {
			case 0:
				if reg.GetRoom(code) == nil {
					_, _ = reg.CreateRoom(id, id, testutil.NewRecordingConn())
				}
			case 1, 2:
				_, _ = reg.JoinRoom(code, id, id, testutil.NewRecordingConn())
			case 3:
				reg.Leave(code, id)
			case 4:
				_ = reg.StartGame(code, id)
			case 5:
				_ = reg.StartVoting(code, id)
			case 6:
				_ = reg.SubmitVote(code, id, idGen.Draw(t, "suspect"))
			case 7:
				_ = reg.ForceReveal(code, id)
			case 8:
				_ = reg.ResetLobby(code, id)
			case 9:
				spies := rapid.IntRange(-2, 8).Draw(t, "spies")
				_ = reg.UpdateSettings(code, id, internal.UpdateSettingsData{SpiesCount: &spies})
			}

			room := reg.GetRoom(code)
			if room == nil {
				continue
			}
			room.Mu.Lock()
			n := len(room.Players)
			err := utils.ValidateGameState(room)
			spiesSetting := room.Settings.SpiesCount
			room.Mu.Unlock()

			if n == 0 {
				t.Fatalf("empty room %s still registered", code)
			}
			if err != nil {
				t.Fatalf("invalid state: %v", err)
			}
			if spiesSetting < 1 || spiesSetting >= room.Capacity() {
				t.Fatalf("spies setting %d outside [1, %d)", spiesSetting, room.Capacity())
			}
		}
	})
}
