package game

import (
	"strings"

	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/utils"
)

// =============================================================================
// SETTINGS & ROUND START (host only)
// =============================================================================

// UpdateSettings applies the supplied fields and broadcasts the result. It is
// accepted in any phase; changes take effect at the next round start.
func (r *Registry) UpdateSettings(code, playerID string, upd internal.UpdateSettingsData) error {
	room, _, err := r.host(code, playerID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	s := &room.Settings
	if upd.Category != nil {
		if category := strings.TrimSpace(*upd.Category); category != "" {
			s.Category = category
		}
	}
	if upd.SpiesCount != nil {
		s.SpiesCount = utils.Clamp(*upd.SpiesCount, 1, room.Capacity()-1)
	}
	if upd.CustomWords != nil {
		s.CustomWords = utils.SanitizeWords(*upd.CustomWords)
	}
	if upd.TimerSeconds != nil {
		s.TimerSeconds = utils.Clamp(*upd.TimerSeconds, 0, internal.MaxTimerSeconds)
	}

	r.logger.Info("settings updated",
		zap.String("room", room.Code),
		zap.String("category", s.Category),
		zap.Int("spies", s.SpiesCount),
		zap.Int("custom_words", len(s.CustomWords)),
		zap.Int("timer_seconds", s.TimerSeconds),
		zap.String("phase", string(room.Phase)))

	broadcastToRoom(r.logger, room, settingsMessage(room))
	return nil
}

// StartGame picks the round word, assigns roles and privately tells every
// player their role. It is valid from the lobby or straight from results.
func (r *Registry) StartGame(code, playerID string) error {
	room, _, err := r.host(code, playerID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	// 1. Gate on phase and roster
	if !room.Phase.CanTransitionTo(internal.PhaseInProgress) {
		return internal.ErrGameAlreadyStarted
	}
	if !room.CanStartGame() {
		return internal.ErrTooFewPlayers
	}

	// 2. Pick the word
	word, err := r.pickWord(room.Settings)
	if err != nil {
		return err
	}

	// 3. Assign spies over a uniformly random subset
	n := len(room.Players)
	spies := utils.Clamp(room.Settings.SpiesCount, 1, n-1)
	room.Settings.SpiesCount = spies
	for _, p := range room.Players {
		p.Role = internal.RoleCivilian
	}
	for _, i := range utils.SampleIndices(n, spies, r.intn) {
		room.Players[i].Role = internal.RoleSpy
	}

	// 4. Informational first speaker
	first := room.Players[r.intn(n)]

	room.Phase = internal.PhaseInProgress
	room.SecretWord = word
	room.FirstSpeaker = first.Name
	room.Votes = make(map[string]string)
	room.Round++

	r.logger.Info("round started",
		zap.String("room", room.Code),
		zap.Int("round", room.Round),
		zap.Int("players", n),
		zap.Int("spies", spies),
		zap.String("category", room.Settings.Category))

	// 5. Individually addressed roles; nobody learns another player's role
	for _, p := range room.Players {
		data := internal.GameStartData{
			Role:        p.Role,
			Word:        word,
			FirstPlayer: first.Name,
			Round:       room.Round,
		}
		if p.Role == internal.RoleSpy {
			data.Word = internal.SpyMarker
		}
		sendTo(r.logger, room, p, internal.Message[internal.GameStartData]{
			Type: internal.EventGameStart,
			Data: data,
		})
	}

	r.validate(room)
	return nil
}

func (r *Registry) pickWord(s internal.Settings) (string, error) {
	if s.Category == internal.CustomCategory {
		if len(s.CustomWords) == 0 {
			return "", internal.ErrNoCustomWords
		}
		return utils.PickRandom(s.CustomWords, r.intn), nil
	}
	word := r.catalog.PickWord(s.Category)
	if word == "" || word == internal.SpyMarker {
		return "", internal.ErrNoWords
	}
	return word, nil
}
