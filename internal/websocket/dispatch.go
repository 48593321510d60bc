package websocket

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/game"
)

// dispatch routes one inbound frame to the registry. It runs on the read
// pump, so actions from a single connection are applied in arrival order.
func (g *Gateway) dispatch(c *client, msg internal.Message[json.RawMessage]) {
	logger := c.logger.With(zap.String("action", msg.Type))

	var err error
	switch msg.Type {
	case internal.ActionCreateRoom:
		var data internal.CreateRoomData
		if !decode(logger, msg.Data, &data) {
			return
		}
		var room *internal.Room
		if room, err = g.registry.CreateRoom(c.id, data.PlayerName, c); err == nil {
			g.moveTo(c, room.Code)
		}

	case internal.ActionJoinRoom:
		var data internal.JoinRoomData
		if !decode(logger, msg.Data, &data) {
			return
		}
		err = g.join(c, data)

	case internal.ActionUpdateSettings:
		var data internal.UpdateSettingsData
		if !decode(logger, msg.Data, &data) {
			return
		}
		err = g.registry.UpdateSettings(data.RoomCode, c.id, data)

	case internal.ActionTimer:
		var data internal.TimerActionData
		if !decode(logger, msg.Data, &data) {
			return
		}
		err = g.registry.TimerAction(data.RoomCode, c.id, data.Action)

	case internal.ActionSubmitVote:
		var data internal.SubmitVoteData
		if !decode(logger, msg.Data, &data) {
			return
		}
		err = g.registry.SubmitVote(data.RoomCode, c.id, data.SuspectID)

	case internal.ActionStartGame, internal.ActionStartVoting, internal.ActionForceReveal, internal.ActionResetLobby:
		var data internal.RoomCodeData
		if !decode(logger, msg.Data, &data) {
			return
		}
		err = g.roomAction(msg.Type, data.RoomCode, c.id)

	default:
		logger.Debug("unknown action")
		return
	}

	if err != nil {
		g.reportError(c, logger, msg.Type, err)
	}
}

func (g *Gateway) roomAction(action, code, playerID string) error {
	switch action {
	case internal.ActionStartGame:
		return g.registry.StartGame(code, playerID)
	case internal.ActionStartVoting:
		return g.registry.StartVoting(code, playerID)
	case internal.ActionForceReveal:
		return g.registry.ForceReveal(code, playerID)
	default:
		return g.registry.ResetLobby(code, playerID)
	}
}

// join seats the session in the requested room. Rejoining the current room
// is left to the registry, which resends the welcome.
func (g *Gateway) join(c *client, data internal.JoinRoomData) error {
	room, err := g.registry.JoinRoom(data.RoomCode, c.id, data.PlayerName, c)
	if err != nil {
		return err
	}
	g.moveTo(c, room.Code)
	return nil
}

// moveTo records code as the session's room once the new seat exists, then
// leaves the previous room. A rejected create or join never touches it.
func (g *Gateway) moveTo(c *client, code string) {
	if c.room != "" && c.room != code {
		g.registry.Leave(c.room, c.id)
	}
	c.room = code
}

func (g *Gateway) leaveCurrent(c *client) {
	if c.room == "" {
		return
	}
	g.registry.Leave(c.room, c.id)
	c.room = ""
}

func (g *Gateway) disconnect(c *client) {
	g.leaveCurrent(c)
	c.logger.Debug("connection closed")
}

// reportError delivers user-facing errors to the caller. A missing room is
// only worth telling the caller about when they asked to join it.
func (g *Gateway) reportError(c *client, logger *zap.Logger, action string, err error) {
	if errors.Is(err, internal.ErrRoomNotFound) && action != internal.ActionJoinRoom {
		logger.Debug("action on missing room ignored", zap.Error(err))
		return
	}
	if !game.IsUserError(err) {
		logger.Error("action failed", zap.Error(err))
		return
	}
	logger.Debug("action rejected", zap.Error(err))
	msg := internal.Message[internal.ErrorData]{
		Type: internal.EventError,
		Data: internal.ErrorData{Text: err.Error()},
	}
	if werr := c.WriteJSON(msg); werr != nil {
		logger.Warn("failed to deliver error", zap.Error(werr))
	}
}

func decode(logger *zap.Logger, raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Debug("dropping malformed payload", zap.Error(errors.Join(errMalformedFrame, err)))
		return false
	}
	return true
}
