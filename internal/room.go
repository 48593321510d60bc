package internal

// Methods (Room Struct). Callers hold room.Mu.

func (r *Room) Capacity() int {
	if r.MaxPlayers <= 0 || r.MaxPlayers > MaxPlayersPerRoom {
		return MaxPlayersPerRoom
	}
	return r.MaxPlayers
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.Capacity()
}

func (r *Room) IndexOf(playerID string) int {
	for i, p := range r.Players {
		if p.Id == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) GetPlayer(playerID string) *Player {
	if i := r.IndexOf(playerID); i >= 0 {
		return r.Players[i]
	}
	return nil
}

func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) CanStartGame() bool {
	return len(r.Players) >= MinPlayersToStart
}

// HaveAllVoted reports whether every current player holds a live vote.
func (r *Room) HaveAllVoted() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if _, ok := r.Votes[p.Id]; !ok {
			return false
		}
	}
	return true
}

func (r *Room) PublicPlayers() []PublicPlayer {
	out := make([]PublicPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p.ToPublicPlayer())
	}
	return out
}

func (r *Room) PlayerRefs() []PlayerRef {
	out := make([]PlayerRef, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p.Ref())
	}
	return out
}

func (r *Room) SettingsData() SettingsData {
	return SettingsData{
		Category:       r.Settings.Category,
		SpiesCount:     r.Settings.SpiesCount,
		HasCustomWords: len(r.Settings.CustomWords) > 0,
		TimerSeconds:   r.Settings.TimerSeconds,
	}
}

func (r *Room) Info() RoomInfoData {
	info := RoomInfoData{
		Code:       r.Code,
		Phase:      r.Phase,
		Players:    len(r.Players),
		MaxPlayers: r.Capacity(),
		CreatedAt:  r.CreatedAt,
	}
	if host := r.Host(); host != nil {
		info.Host = host.Name
	}
	return info
}

// ResetRoundState clears everything a round produced but keeps settings and scores.
func (r *Room) ResetRoundState() {
	r.SecretWord = ""
	r.FirstSpeaker = ""
	r.Votes = make(map[string]string)
	for _, p := range r.Players {
		p.ResetRoundState()
	}
}
