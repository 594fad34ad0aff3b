package game

import (
	"log"
	"sync"
	"time"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// SESSION DIRECTORY
// =============================================================================

// sessions maps an opaque client token to a seat. A token resolves to at
// most one live player; rebinding a token evicts the old mapping.
// reconnectTimers holds at most one pending-reconnect timer per player.
var (
	sessions        = make(map[string]internal.Session)
	reconnectTimers = make(map[string]*time.Timer)
	sessionsMu      sync.Mutex
)

// BindSession records token -> (room, player), replacing any prior
// mapping for the token.
func BindSession(token, roomCode, playerID string) {
	if token == "" {
		return
	}
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	sessions[token] = internal.Session{Token: token, RoomCode: roomCode, PlayerID: playerID}
}

// DropSession forgets a token.
func DropSession(token string) {
	if token == "" {
		return
	}
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	delete(sessions, token)
}

// ResolveSession looks a token up.
func ResolveSession(token string) (internal.Session, bool) {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	s, ok := sessions[token]
	return s, ok
}

// ArmReconnectTimer starts the disconnect grace period for a player.
// Re-arming replaces the previous timer, so rapid disconnect cycles keep
// exactly one pending removal.
func ArmReconnectTimer(roomCode, playerID string) {
	sessionsMu.Lock()
	if prev, ok := reconnectTimers[playerID]; ok {
		prev.Stop()
	}
	reconnectTimers[playerID] = time.AfterFunc(internal.ReconnectGrace, func() {
		expireReconnect(roomCode, playerID)
	})
	sessionsMu.Unlock()
	log.Printf("[ArmReconnectTimer] room %s: player %s has %s to reconnect", roomCode, playerID, internal.ReconnectGrace)
}

// CancelReconnectTimer stops a pending removal. Reports whether one was
// pending, which session restore uses to decide the reconnect broadcast.
func CancelReconnectTimer(playerID string) bool {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	timer, ok := reconnectTimers[playerID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(reconnectTimers, playerID)
	return ok
}

// expireReconnect fires when the grace period lapses. The player may
// already be gone (left, kicked, room deleted) or freshly restored; the
// disconnected check and the removal are atomic under the room lock so a
// restore that wins the race keeps its seat.
func expireReconnect(roomCode, playerID string) {
	sessionsMu.Lock()
	delete(reconnectTimers, playerID)
	sessionsMu.Unlock()

	room := GetRoom(roomCode)
	if room == nil {
		return
	}
	room.Mu.RLock()
	player := room.Players[playerID]
	room.Mu.RUnlock()
	if player == nil {
		return
	}

	if RemoveFromRoomIfDisconnected(room, player) {
		log.Printf("[expireReconnect] room %s: removed %s after grace period", roomCode, playerID)
	}
}

// RepairScan is the fallback for a lost token mapping: walk every room
// for a player whose (id, token) pair matches and rebuild the entry.
// Deliberately O(rooms x players); it only runs on a directory miss.
func RepairScan(token, playerID string) *internal.Room {
	RoomsMu.RLock()
	defer RoomsMu.RUnlock()

	for _, room := range Rooms {
		room.Mu.RLock()
		player, ok := room.Players[playerID]
		matched := ok && player.SessionToken == token
		code := room.Code
		room.Mu.RUnlock()
		if matched {
			log.Printf("[RepairScan] repaired session for player %s in room %s", playerID, code)
			BindSession(token, code, playerID)
			return room
		}
	}
	return nil
}
