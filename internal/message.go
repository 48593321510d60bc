package internal

import "time"

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound action types
const (
	ActionCreateRoom     = "create_room"
	ActionJoinRoom       = "join_room"
	ActionUpdateSettings = "update_settings"
	ActionStartGame      = "start_game"
	ActionTimer          = "timer_action"
	ActionStartVoting    = "start_voting"
	ActionSubmitVote     = "submit_vote"
	ActionForceReveal    = "force_reveal"
	ActionResetLobby     = "reset_lobby"
)

// Outbound event types
const (
	EventRoomJoined     = "room_joined"
	EventError          = "error_message"
	EventUpdatePlayers  = "update_players"
	EventUpdateSettings = "update_settings"
	EventGameStart      = "game_start"
	EventTimerUpdate    = "timer_update"
	EventVotingPhase    = "voting_phase"
	EventVoteUpdate     = "vote_update"
	EventGameOver       = "game_over"
	EventYouAreHost     = "you_are_host"
	EventReturnToLobby  = "return_to_lobby"
)

type CreateRoomData struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// UpdateSettingsData carries a partial update: nil fields are left unchanged.
type UpdateSettingsData struct {
	RoomCode     string    `json:"roomCode"`
	Category     *string   `json:"category,omitempty"`
	SpiesCount   *int      `json:"spiesCount,omitempty"`
	CustomWords  *[]string `json:"customWords,omitempty"`
	TimerSeconds *int      `json:"timerSeconds,omitempty"`
}

type RoomCodeData struct {
	RoomCode string `json:"roomCode"`
}

type TimerActionData struct {
	RoomCode string      `json:"roomCode"`
	Action   TimerAction `json:"action"`
}

type SubmitVoteData struct {
	RoomCode  string `json:"roomCode"`
	SuspectID string `json:"suspectId"`
}

type RoomJoinedData struct {
	RoomCode string `json:"roomCode"`
	IsHost   bool   `json:"isHost"`
	PlayerID string `json:"playerId"`
}

type ErrorData struct {
	Text string `json:"text"`
}

type SettingsData struct {
	Category       string `json:"category"`
	SpiesCount     int    `json:"spiesCount"`
	HasCustomWords bool   `json:"hasCustomWords"`
	TimerSeconds   int    `json:"timerSeconds"`
}

type GameStartData struct {
	Role        Role   `json:"role"`
	Word        string `json:"word"`
	FirstPlayer string `json:"firstPlayer"`
	Round       int    `json:"round"`
}

type TimerUpdateData struct {
	Action TimerAction `json:"action"`
	Value  int         `json:"value"`
}

type VotingPhaseData struct {
	Players []PlayerRef `json:"players"`
}

type VoteUpdateData struct {
	Count int `json:"count"`
	Total int `json:"total"`
}

type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

type GameOverData struct {
	SecretWord  string             `json:"secretWord"`
	Spies       []string           `json:"spies"`
	Winner      Winner             `json:"winner"`
	CaughtSpy   bool               `json:"caughtSpy"`
	Votes       map[string]int     `json:"votes"`
	Players     []PlayerRef        `json:"players"`
	Round       int                `json:"round"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type CategoryData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomInfoData struct {
	Code       string    `json:"code"`
	Phase      GamePhase `json:"phase"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	Host       string    `json:"host"`
	CreatedAt  time.Time `json:"createdAt"`
}
