package game

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/utils"
)

// maxCodeAttempts bounds room code regeneration on collision.
const maxCodeAttempts = 32

// WordCatalog supplies one word per round for a category id.
type WordCatalog interface {
	PickWord(category string) string
}

// Registry owns every live room. Lock order: never hold mu while taking a
// room lock, except for a room that is not yet published.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room

	catalog    WordCatalog
	logger     *zap.Logger
	intn       func(int) int
	newCode    func() string
	now        func() time.Time
	defaults   internal.Settings
	maxPlayers int
}

type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithIntN replaces the random source used for words, spies and first speaker.
func WithIntN(intn func(int) int) Option {
	return func(r *Registry) { r.intn = intn }
}

func WithCodeGenerator(gen func() string) Option {
	return func(r *Registry) { r.newCode = gen }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithDefaults sets the settings every new room starts with.
func WithDefaults(s internal.Settings) Option {
	return func(r *Registry) { r.defaults = s }
}

func WithMaxPlayers(n int) Option {
	return func(r *Registry) { r.maxPlayers = n }
}

func NewRegistry(catalog WordCatalog, opts ...Option) *Registry {
	r := &Registry{
		rooms:   make(map[string]*internal.Room),
		catalog: catalog,
		logger:  zap.NewNop(),
		intn:    rand.IntN,
		newCode: utils.GenerateRoomCode,
		now:     time.Now,
		defaults: internal.Settings{
			Category:   internal.DefaultCategory,
			SpiesCount: 1,
		},
		maxPlayers: internal.MaxPlayersPerRoom,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.maxPlayers = utils.Clamp(r.maxPlayers, internal.MinPlayersToStart, internal.MaxPlayersPerRoom)
	r.defaults.SpiesCount = utils.Clamp(r.defaults.SpiesCount, 1, r.maxPlayers-1)
	r.defaults.TimerSeconds = utils.Clamp(r.defaults.TimerSeconds, 0, internal.MaxTimerSeconds)
	if r.defaults.Category == "" {
		r.defaults.Category = internal.DefaultCategory
	}
	return r
}

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

// CreateRoom allocates a fresh code and seats the caller as host.
func (r *Registry) CreateRoom(playerID, playerName string, conn internal.Conn) (*internal.Room, error) {
	name, ok := utils.NormalizeName(playerName)
	if !ok {
		return nil, internal.ErrInvalidName
	}

	host := r.newPlayer(playerID, name, conn)
	host.IsHost = true

	room := &internal.Room{
		MaxPlayers: r.maxPlayers,
		Players:    []*internal.Player{host},
		Phase:      internal.PhaseLobby,
		Settings:   r.defaultSettings(),
		Votes:      make(map[string]string),
		CreatedAt:  r.now(),
	}

	// The room is locked before it is published so the host's welcome
	// messages go out before anything a joiner could trigger.
	room.Mu.Lock()
	defer room.Mu.Unlock()

	r.mu.Lock()
	code, err := r.allocateCodeLocked()
	if err != nil {
		total := len(r.rooms)
		r.mu.Unlock()
		r.logger.Error("room code space exhausted", zap.Int("rooms", total))
		return nil, err
	}
	room.Code = code
	r.rooms[code] = room
	total := len(r.rooms)
	r.mu.Unlock()

	r.logger.Info("room created",
		zap.String("room", code),
		zap.String("player", playerID),
		zap.Int("rooms", total))

	sendTo(r.logger, room, host, internal.Message[internal.RoomJoinedData]{
		Type: internal.EventRoomJoined,
		Data: internal.RoomJoinedData{RoomCode: code, IsHost: true, PlayerID: playerID},
	})
	r.broadcastPlayers(room)
	sendTo(r.logger, room, host, settingsMessage(room))

	return room, nil
}

// allocateCodeLocked regenerates on collision with a live room. Caller holds r.mu.
func (r *Registry) allocateCodeLocked() (string, error) {
	for range maxCodeAttempts {
		code := utils.NormalizeRoomCode(r.newCode())
		if code == "" {
			continue
		}
		if _, exists := r.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", internal.ErrNoRoomCodeAvailable
}

// GetRoom returns the live room for code, or nil.
func (r *Registry) GetRoom(code string) *internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[utils.NormalizeRoomCode(code)]
}

// RemoveRoom deletes code only if it still maps to room, so a late removal
// never evicts a newer room that reused the code.
func (r *Registry) RemoveRoom(code string, room *internal.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.rooms[code]; ok && current == room {
		delete(r.rooms, code)
		r.logger.Info("room removed", zap.String("room", code), zap.Int("rooms", len(r.rooms)))
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) snapshot() []*internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*internal.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetJoinableRoom returns the code of a lobby room with a free seat, or "".
func (r *Registry) GetJoinableRoom() string {
	// Rooms are inspected one at a time after the registry lock is released.
	for _, room := range r.snapshot() {
		room.Mu.Lock()
		joinable := !room.Closed && room.Phase == internal.PhaseLobby && !room.IsFull()
		code := room.Code
		room.Mu.Unlock()

		if joinable {
			r.logger.Debug("found joinable room", zap.String("room", code))
			return code
		}
	}
	return ""
}

// RoomInfo describes a live room for HTTP lookups.
func (r *Registry) RoomInfo(code string) (internal.RoomInfoData, error) {
	room := r.GetRoom(code)
	if room == nil {
		return internal.RoomInfoData{}, internal.ErrRoomNotFound
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.Closed {
		return internal.RoomInfoData{}, internal.ErrRoomNotFound
	}
	return room.Info(), nil
}

// =============================================================================
// MEMBERSHIP
// =============================================================================

// JoinRoom seats a non-host player. Checks run in order: room exists, game not
// started, room not full.
func (r *Registry) JoinRoom(code, playerID, playerName string, conn internal.Conn) (*internal.Room, error) {
	name, ok := utils.NormalizeName(playerName)
	if !ok {
		return nil, internal.ErrInvalidName
	}

	room := r.GetRoom(code)
	if room == nil {
		return nil, internal.ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	switch {
	case room.Closed:
		return nil, internal.ErrRoomNotFound
	case room.Phase != internal.PhaseLobby:
		return nil, internal.ErrGameAlreadyStarted
	case room.GetPlayer(playerID) != nil:
		// Already seated; repeat the welcome without touching the roster.
		p := room.GetPlayer(playerID)
		sendTo(r.logger, room, p, joinedMessage(room, p))
		sendTo(r.logger, room, p, settingsMessage(room))
		return room, nil
	case room.IsFull():
		return nil, internal.ErrRoomFull
	}

	player := r.newPlayer(playerID, name, conn)
	room.Players = append(room.Players, player)

	r.logger.Info("player joined",
		zap.String("room", room.Code),
		zap.String("player", playerID),
		zap.Int("players", len(room.Players)))

	sendTo(r.logger, room, player, joinedMessage(room, player))
	r.broadcastPlayers(room)
	sendTo(r.logger, room, player, settingsMessage(room))
	r.validate(room)

	return room, nil
}

// Leave removes playerID from the room. Host passes to the earliest joiner
// still present. The last player out destroys the room.
func (r *Registry) Leave(code, playerID string) {
	room := r.GetRoom(code)
	if room == nil {
		return
	}

	room.Mu.Lock()
	idx := room.IndexOf(playerID)
	if room.Closed || idx < 0 {
		room.Mu.Unlock()
		return
	}

	leaving := room.Players[idx]
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	delete(room.Votes, playerID)

	if len(room.Players) == 0 {
		room.Closed = true
		room.Mu.Unlock()
		r.logger.Info("player left, room empty", zap.String("room", code), zap.String("player", playerID))
		r.RemoveRoom(room.Code, room)
		return
	}

	r.logger.Info("player left",
		zap.String("room", room.Code),
		zap.String("player", playerID),
		zap.Int("players", len(room.Players)))

	if leaving.IsHost {
		next := room.Players[0]
		next.IsHost = true
		r.logger.Info("host transferred",
			zap.String("room", room.Code),
			zap.String("from", playerID),
			zap.String("to", next.Id))
		sendTo(r.logger, room, next, internal.Message[struct{}]{Type: internal.EventYouAreHost})
	}
	r.broadcastPlayers(room)

	if room.Phase == internal.PhaseVoting {
		r.broadcastVoteCount(room)
		if room.HaveAllVoted() {
			r.resolveLocked(room)
		}
	}

	r.validate(room)
	room.Mu.Unlock()
}

func (r *Registry) newPlayer(id, name string, conn internal.Conn) *internal.Player {
	return &internal.Player{
		Id:   id,
		Name: name,
		Role: internal.RoleUnassigned,
		Conn: conn,
	}
}

func (r *Registry) defaultSettings() internal.Settings {
	s := r.defaults
	s.CustomWords = nil
	return s
}

// member locks the room for an action by playerID. On success the caller must
// unlock room.Mu.
func (r *Registry) member(code, playerID string) (*internal.Room, *internal.Player, error) {
	room := r.GetRoom(code)
	if room == nil {
		return nil, nil, internal.ErrRoomNotFound
	}
	room.Mu.Lock()
	if room.Closed {
		room.Mu.Unlock()
		return nil, nil, internal.ErrRoomNotFound
	}
	p := room.GetPlayer(playerID)
	if p == nil {
		room.Mu.Unlock()
		return nil, nil, internal.ErrNotInRoom
	}
	return room, p, nil
}

// host is member plus a host check.
func (r *Registry) host(code, playerID string) (*internal.Room, *internal.Player, error) {
	room, p, err := r.member(code, playerID)
	if err != nil {
		return nil, nil, err
	}
	if room.Host() != p {
		room.Mu.Unlock()
		return nil, nil, internal.ErrNotHost
	}
	return room, p, nil
}

func (r *Registry) validate(room *internal.Room) {
	if err := utils.ValidateGameState(room); err != nil {
		r.logger.Error("inconsistent room state", zap.String("room", room.Code), zap.Error(err))
	}
}

// IsUserError reports whether err belongs to the user-facing taxonomy.
func IsUserError(err error) bool {
	for _, target := range []error{
		internal.ErrRoomNotFound, internal.ErrGameAlreadyStarted, internal.ErrRoomFull,
		internal.ErrNotHost, internal.ErrTooFewPlayers, internal.ErrNoCustomWords,
		internal.ErrNoWords, internal.ErrInvalidPhase, internal.ErrNotInRoom,
		internal.ErrUnknownSuspect, internal.ErrInvalidName, internal.ErrInvalidTimerAction,
		internal.ErrNoRoomCodeAvailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
