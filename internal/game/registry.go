package game

import (
	"crypto/rand"
	"log"
	"sync"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

// Rooms is the process-global room index. RoomsMu orders strictly above
// per-room locks: a room's mutex is never held while taking RoomsMu.
var (
	Rooms   = make(map[string]*internal.Room)
	RoomsMu sync.RWMutex
)

// CreateRoom allocates a room under a fresh unique code.
func CreateRoom() *internal.Room {
	RoomsMu.Lock()
	defer RoomsMu.Unlock()

	var code string
	for {
		code = generateRoomCode()
		if _, exists := Rooms[code]; !exists {
			break
		}
	}

	room := internal.NewRoom(code)
	Rooms[code] = room
	log.Printf("[CreateRoom] created room %s", code)
	return room
}

// GetRoom returns the live room for a code, or nil.
func GetRoom(code string) *internal.Room {
	RoomsMu.RLock()
	defer RoomsMu.RUnlock()
	return Rooms[code]
}

// DeleteRoom drops a room from the index. Callers delete a room exactly
// when its player map empties.
func DeleteRoom(code string) {
	RoomsMu.Lock()
	defer RoomsMu.Unlock()
	if _, exists := Rooms[code]; exists {
		delete(Rooms, code)
		log.Printf("[DeleteRoom] deleted room %s", code)
	}
}

// generateRoomCode draws a candidate code from the unambiguous alphabet.
func generateRoomCode() string {
	b := make([]byte, internal.RoomCodeLength)
	rand.Read(b)
	for i := range b {
		b[i] = internal.RoomCodeAlphabet[int(b[i])%len(internal.RoomCodeAlphabet)]
	}
	return string(b)
}

// =============================================================================
// PUBLIC ROOM INDEX
// =============================================================================

// ListPublicRooms projects every joinable lobby for the HTTP list
// endpoint: lobby phase, below the seat cap, no tokens or player ids.
func ListPublicRooms() []internal.PublicRoomInfo {
	RoomsMu.RLock()
	defer RoomsMu.RUnlock()

	out := make([]internal.PublicRoomInfo, 0, len(Rooms))
	for _, room := range Rooms {
		room.Mu.RLock()
		if room.Phase == internal.PhaseLobby && len(room.Players) < internal.MaxPlayersPerRoom {
			out = append(out, room.PublicInfo())
		}
		room.Mu.RUnlock()
	}
	return out
}
