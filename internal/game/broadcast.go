package game

import (
	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// BROADCAST FANOUT
// =============================================================================

// Frames are enqueued while the room lock is held, so every client
// observes broadcasts in the order the room produced them. Enqueue never
// blocks; a slow client drops frames instead of stalling the room.

func sendTo(conn *internal.Conn, msgType string, data any) {
	conn.Enqueue(internal.Encode(msgType, data))
}

func sendError(conn *internal.Conn, errType, message string) {
	sendTo(conn, errType, internal.ErrorData{Message: message})
}

// broadcastLocked fans a frame out to every connected member.
func broadcastLocked(room *internal.Room, msgType string, data any) {
	frame := internal.Encode(msgType, data)
	for _, p := range room.Players {
		if p.Conn != nil {
			p.Conn.Enqueue(frame)
		}
	}
}

// broadcastExceptLocked fans out to everyone but one player.
func broadcastExceptLocked(room *internal.Room, except *internal.Player, msgType string, data any) {
	frame := internal.Encode(msgType, data)
	for _, p := range room.Players {
		if p != except && p.Conn != nil {
			p.Conn.Enqueue(frame)
		}
	}
}

// broadcastRoomUpdateLocked closes out a mutation with the shared room
// projection. Every handler that changes externally visible state ends
// with this.
func broadcastRoomUpdateLocked(room *internal.Room) {
	broadcastLocked(room, "room:update", room.State())
}
