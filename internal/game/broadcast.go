package game

import (
	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================
//
// Every helper here expects the caller to hold room.Mu. Connections enqueue
// without blocking, so sending under the room lock keeps per-room event order
// identical for every member.

func broadcastToRoom[T any](logger *zap.Logger, room *internal.Room, msg internal.Message[T]) {
	failed := 0
	for _, p := range room.Players {
		if err := p.SafeWriteJSON(msg); err != nil {
			failed++
			logger.Warn("broadcast failed",
				zap.String("room", room.Code),
				zap.String("player", p.Id),
				zap.String("type", msg.Type),
				zap.Error(err))
		}
	}
	logger.Debug("broadcast",
		zap.String("room", room.Code),
		zap.String("type", msg.Type),
		zap.Int("sent", len(room.Players)-failed),
		zap.Int("players", len(room.Players)))
}

func sendTo[T any](logger *zap.Logger, room *internal.Room, p *internal.Player, msg internal.Message[T]) {
	if err := p.SafeWriteJSON(msg); err != nil {
		logger.Warn("send failed",
			zap.String("room", room.Code),
			zap.String("player", p.Id),
			zap.String("type", msg.Type),
			zap.Error(err))
	}
}

func (r *Registry) broadcastPlayers(room *internal.Room) {
	broadcastToRoom(r.logger, room, internal.Message[[]internal.PublicPlayer]{
		Type: internal.EventUpdatePlayers,
		Data: room.PublicPlayers(),
	})
}

func (r *Registry) broadcastVoteCount(room *internal.Room) {
	broadcastToRoom(r.logger, room, internal.Message[internal.VoteUpdateData]{
		Type: internal.EventVoteUpdate,
		Data: internal.VoteUpdateData{Count: len(room.Votes), Total: len(room.Players)},
	})
}

func joinedMessage(room *internal.Room, p *internal.Player) internal.Message[internal.RoomJoinedData] {
	return internal.Message[internal.RoomJoinedData]{
		Type: internal.EventRoomJoined,
		Data: internal.RoomJoinedData{RoomCode: room.Code, IsHost: p.IsHost, PlayerID: p.Id},
	}
}

func settingsMessage(room *internal.Room) internal.Message[internal.SettingsData] {
	return internal.Message[internal.SettingsData]{
		Type: internal.EventUpdateSettings,
		Data: room.SettingsData(),
	}
}
