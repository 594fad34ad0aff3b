package game

import (
	"strings"
	"time"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// CHAT
// =============================================================================

// HandleChatMessage relays a chat line to the whole room, truncated to
// the message cap in runes so Georgian text is never split mid-glyph.
func HandleChatMessage(room *internal.Room, player *internal.Player, data internal.ChatData) {
	message := strings.TrimSpace(data.Message)
	if message == "" {
		return
	}
	if runes := []rune(message); len(runes) > internal.ChatMessageLimit {
		message = string(runes[:internal.ChatMessageLimit])
	}

	room.Mu.RLock()
	broadcastLocked(room, "chat:message", internal.ChatMessageData{
		PlayerID:  player.ID,
		Nick:      player.Nick,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	room.Mu.RUnlock()
}

// HandleTyping relays a typing indicator to everyone but the sender.
func HandleTyping(room *internal.Room, player *internal.Player, data internal.TypingData) {
	room.Mu.RLock()
	broadcastExceptLocked(room, player, "player:typing", internal.TypingBroadcastData{
		PlayerID: player.ID,
		Nick:     player.Nick,
		Category: data.Category,
	})
	room.Mu.RUnlock()
}
