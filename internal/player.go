package internal

import "sync"

// Conn is the outbound half of a player's connection. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Player struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Role   Role   `json:"-"`
	Score  int    `json:"-"`

	Conn Conn       `json:"-"`
	Mu   sync.Mutex `json:"-"`
}

// PublicPlayer is the roster entry everyone may see. It never carries a role.
type PublicPlayer struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

type PlayerRef struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

func (p *Player) ResetRoundState() {
	p.Role = RoleUnassigned
}

func (p *Player) ToPublicPlayer() PublicPlayer {
	return PublicPlayer{
		Id:     p.Id,
		Name:   p.Name,
		IsHost: p.IsHost,
	}
}

func (p *Player) Ref() PlayerRef {
	return PlayerRef{Id: p.Id, Name: p.Name}
}

func (p *Player) SafeWriteJSON(v any) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if p.Conn == nil {
		return nil
	}
	return p.Conn.WriteJSON(v)
}
