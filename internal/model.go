package internal

import (
	"sync"
	"time"
)

const (
	MaxPlayersPerRoom = 20
	MinPlayersToStart = 3
	RoomCodeLength    = 4
	MaxNameLength     = 24
	MaxTimerSeconds   = 3600

	DefaultCategory = "general"
	CustomCategory  = "custom"

	// SpyMarker is what spies receive in place of the secret word.
	SpyMarker = "You are the spy!"
)

type GamePhase string

const (
	PhaseLobby      GamePhase = "lobby"
	PhaseInProgress GamePhase = "in_progress"
	PhaseVoting     GamePhase = "voting"
	PhaseResolved   GamePhase = "resolved"
)

var phaseTransitions = map[GamePhase][]GamePhase{
	PhaseLobby:      {PhaseInProgress},
	PhaseInProgress: {PhaseVoting, PhaseLobby},
	PhaseVoting:     {PhaseVoting, PhaseResolved, PhaseLobby},
	PhaseResolved:   {PhaseResolved, PhaseInProgress, PhaseLobby},
}

// CanTransitionTo reports whether the state machine allows moving from p to target.
// Self transitions restart voting or re-broadcast a result.
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, next := range phaseTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

// HasSecretWord reports whether a round word must be set while in this phase.
func (p GamePhase) HasSecretWord() bool {
	return p == PhaseInProgress || p == PhaseVoting || p == PhaseResolved
}

type Role string

const (
	RoleUnassigned Role = ""
	RoleCivilian   Role = "civilian"
	RoleSpy        Role = "spy"
)

type Winner string

const (
	WinnerSpy       Winner = "spy"
	WinnerCivilians Winner = "civilians"
)

type TimerAction string

const (
	TimerStart TimerAction = "start"
	TimerStop  TimerAction = "stop"
	TimerReset TimerAction = "reset"
)

func (a TimerAction) Valid() bool {
	switch a {
	case TimerStart, TimerStop, TimerReset:
		return true
	}
	return false
}

type Category struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Words []string `json:"-"`
}

// Settings is the host-controlled round configuration. It persists across rounds.
type Settings struct {
	Category     string   `json:"category"`
	SpiesCount   int      `json:"spiesCount"`
	CustomWords  []string `json:"-"`
	TimerSeconds int      `json:"timerSeconds"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

type Room struct {
	Code       string
	MaxPlayers int

	// Join order. Players[0] inherits host when the host leaves.
	Players []*Player

	Phase    GamePhase
	Settings Settings

	// Round state
	Round        int
	SecretWord   string
	FirstSpeaker string
	Votes        map[string]string // voter id -> suspect id

	CreatedAt time.Time

	// Closed is set once the last player leaves; a closed room accepts nothing.
	Closed bool

	Mu sync.Mutex `json:"-"`
}
