package game

import (
	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
)

// =============================================================================
// GAME FLOW - VOTING & RESOLUTION
// =============================================================================

// StartVoting opens (or restarts) the vote. Host only.
func (r *Registry) StartVoting(code, playerID string) error {
	room, _, err := r.host(code, playerID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if !room.Phase.CanTransitionTo(internal.PhaseVoting) {
		return internal.ErrInvalidPhase
	}

	room.Votes = make(map[string]string)
	room.Phase = internal.PhaseVoting

	r.logger.Info("voting started", zap.String("room", room.Code), zap.Int("round", room.Round))

	broadcastToRoom(r.logger, room, internal.Message[internal.VotingPhaseData]{
		Type: internal.EventVotingPhase,
		Data: internal.VotingPhaseData{Players: room.PlayerRefs()},
	})
	return nil
}

// SubmitVote records or overwrites the caller's vote. The vote that completes
// the roster resolves the round in the same critical section.
func (r *Registry) SubmitVote(code, voterID, suspectID string) error {
	room, _, err := r.member(code, voterID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if room.Phase != internal.PhaseVoting {
		return internal.ErrInvalidPhase
	}
	if room.GetPlayer(suspectID) == nil {
		return internal.ErrUnknownSuspect
	}

	room.Votes[voterID] = suspectID

	r.logger.Debug("vote recorded",
		zap.String("room", room.Code),
		zap.String("player", voterID),
		zap.Int("count", len(room.Votes)),
		zap.Int("total", len(room.Players)))

	r.broadcastVoteCount(room)

	if room.HaveAllVoted() {
		r.resolveLocked(room)
	}
	return nil
}

// ForceReveal resolves the round with whatever votes are in. Any member may
// call it; on a resolved room it re-broadcasts the same result.
func (r *Registry) ForceReveal(code, playerID string) error {
	room, _, err := r.member(code, playerID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if !room.Phase.CanTransitionTo(internal.PhaseResolved) {
		return internal.ErrInvalidPhase
	}

	r.logger.Info("reveal forced", zap.String("room", room.Code), zap.String("player", playerID))
	r.resolveLocked(room)
	return nil
}

// ResetLobby sends everyone back to the lobby. Settings and scores survive.
func (r *Registry) ResetLobby(code, playerID string) error {
	room, _, err := r.host(code, playerID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if room.Phase == internal.PhaseLobby || !room.Phase.CanTransitionTo(internal.PhaseLobby) {
		return internal.ErrInvalidPhase
	}

	room.ResetRoundState()
	room.Phase = internal.PhaseLobby

	r.logger.Info("returned to lobby", zap.String("room", room.Code))

	broadcastToRoom(r.logger, room, internal.Message[struct{}]{Type: internal.EventReturnToLobby})
	r.validate(room)
	return nil
}

// resolveLocked tallies, scores the first resolution of a round and
// broadcasts game_over. Caller holds room.Mu.
func (r *Registry) resolveLocked(room *internal.Room) {
	result := Resolve(room)

	if room.Phase == internal.PhaseVoting {
		awardPoints(room, result.Winner)
		r.logger.Info("round resolved",
			zap.String("room", room.Code),
			zap.Int("round", room.Round),
			zap.String("winner", string(result.Winner)),
			zap.Bool("caught_spy", result.CaughtSpy),
			zap.Int("votes", len(room.Votes)))
	}
	result.Leaderboard = Leaderboard(room.Players)
	room.Phase = internal.PhaseResolved

	broadcastToRoom(r.logger, room, internal.Message[internal.GameOverData]{
		Type: internal.EventGameOver,
		Data: result,
	})
	r.validate(room)
}
