package game

import (
	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
)

// =============================================================================
// TIMER RELAY
// =============================================================================

// TimerAction relays a start/stop/reset to the room with the configured
// duration. No clock runs server side; clients count down.
func (r *Registry) TimerAction(code, playerID string, action internal.TimerAction) error {
	if !action.Valid() {
		return internal.ErrInvalidTimerAction
	}

	room, _, err := r.member(code, playerID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	r.logger.Debug("timer relayed",
		zap.String("room", room.Code),
		zap.String("player", playerID),
		zap.String("action", string(action)))

	broadcastToRoom(r.logger, room, internal.Message[internal.TimerUpdateData]{
		Type: internal.EventTimerUpdate,
		Data: internal.TimerUpdateData{Action: action, Value: room.Settings.TimerSeconds},
	})
	return nil
}
