package internal

import "sort"

// Room helpers. Every method here assumes the caller holds r.Mu.

// AddPlayer seats a player at the end of the join order. The first
// player to sit down becomes host.
func (r *Room) AddPlayer(p *Player) {
	r.Players[p.ID] = p
	r.Order = append(r.Order, p.ID)
	p.Room = r
	if len(r.Players) == 1 {
		r.HostID = p.ID
		p.IsHost = true
	}
}

// RemovePlayer unseats a player and, when the host left, promotes the
// next player in seat order. Returns the new host, or nil when the host
// did not change.
func (r *Room) RemovePlayer(id string) *Player {
	p, ok := r.Players[id]
	if !ok {
		return nil
	}
	delete(r.Players, id)
	for i, pid := range r.Order {
		if pid == id {
			r.Order = append(r.Order[:i], r.Order[i+1:]...)
			break
		}
	}
	p.Room = nil

	if r.HostID != id || len(r.Order) == 0 {
		return nil
	}
	next := r.Players[r.Order[0]]
	r.HostID = next.ID
	next.IsHost = true
	return next
}

// SeatedPlayers returns the players in seat order.
func (r *Room) SeatedPlayers() []*Player {
	out := make([]*Player, 0, len(r.Order))
	for _, id := range r.Order {
		if p, ok := r.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) Host() *Player {
	return r.Players[r.HostID]
}

// AllConnectedReady reports whether every connected player is ready.
func (r *Room) AllConnectedReady() bool {
	for _, p := range r.Players {
		if p.IsConnected && !p.IsReady {
			return false
		}
	}
	return true
}

// AllConnectedSubmitted reports whether every connected player has
// handed in answers this round. False when nobody is connected.
func (r *Room) AllConnectedSubmitted() bool {
	connected := 0
	for _, p := range r.Players {
		if !p.IsConnected {
			continue
		}
		connected++
		if !p.HasSubmitted {
			return false
		}
	}
	return connected > 0
}

// State builds the broadcast projection. Per-player answers and the
// used-letter set are deliberately absent.
func (r *Room) State() *RoomState {
	return &RoomState{
		Code:     r.Code,
		HostID:   r.HostID,
		Players:  r.SeatedPlayers(),
		Settings: r.Settings,
		PublicState: GameState{
			Phase:            r.Phase,
			CurrentLetter:    r.CurrentLetter,
			ActiveCategories: r.ActiveCategories,
			CategoryOrder:    r.CategoryOrder,
			CurrentRound:     r.CurrentRound,
			StoppedBy:        r.StoppedBy,
			StopTimerArmed:   r.StopTimerArmed,
			AllSubmitted:     r.AllSubmitted,
		},
	}
}

// Standings ranks players by total score, descending; ties keep seat
// order because the sort is stable over the seat-ordered slice.
func (r *Room) Standings() []Standing {
	seated := r.SeatedPlayers()
	sort.SliceStable(seated, func(i, j int) bool {
		return seated[i].TotalScore > seated[j].TotalScore
	})
	standings := make([]Standing, 0, len(seated))
	for i, p := range seated {
		standings = append(standings, Standing{
			Rank:       i + 1,
			PlayerID:   p.ID,
			Nick:       p.Nick,
			AvatarSeed: p.AvatarSeed,
			TotalScore: p.TotalScore,
		})
	}
	return standings
}

// PublicInfo is the HTTP lobby-list entry. The 'Guest' fallback is
// unreachable while the host invariant holds but must not panic.
func (r *Room) PublicInfo() PublicRoomInfo {
	hostNick := "Guest"
	hostAvatar := ""
	if host := r.Host(); host != nil {
		hostNick = host.Nick
		hostAvatar = host.AvatarSeed
	}
	return PublicRoomInfo{
		Code:        r.Code,
		HostNick:    hostNick,
		HostAvatar:  hostAvatar,
		PlayerCount: len(r.Players),
		MaxPlayers:  MaxPlayersPerRoom,
		Settings: PublicRoomSettings{
			Rounds:   r.Settings.MaxRounds,
			HasBonus: r.Settings.UseBonus,
		},
	}
}
