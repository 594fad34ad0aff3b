package game

import (
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// LOBBY MANAGEMENT
// =============================================================================

func sanitizeNick(nick string) string {
	nick = strings.TrimSpace(nick)
	if nick == "" {
		return "Guest"
	}
	if runes := []rune(nick); len(runes) > 24 {
		nick = string(runes[:24])
	}
	return nick
}

// HandleCreateRoom opens a fresh room with the sender seated as host.
func HandleCreateRoom(conn *internal.Conn, data internal.RoomCreateData) (*internal.Room, *internal.Player) {
	room := CreateRoom()

	player := internal.NewPlayer(uuid.NewString(), sanitizeNick(data.Nick), data.AvatarSeed)
	player.Conn = conn
	player.IsConnected = true
	player.SessionToken = data.Token

	room.Mu.Lock()
	room.AddPlayer(player)
	player.IsReady = true // host is always ready
	sendTo(conn, "room:created", map[string]any{
		"code":     room.Code,
		"playerId": player.ID,
		"roomData": room.State(),
	})
	broadcastRoomUpdateLocked(room)
	room.Mu.Unlock()

	BindSession(data.Token, room.Code, player.ID)
	log.Printf("[HandleCreateRoom] room %s: created by %s (%s)", room.Code, player.Nick, player.ID)
	return room, player
}

// HandleJoinRoom seats the sender in an existing room. Join is refused
// outside the lobby phase and at the seat cap.
func HandleJoinRoom(conn *internal.Conn, data internal.RoomJoinData) (*internal.Room, *internal.Player) {
	code := strings.ToUpper(strings.TrimSpace(data.Code))
	room := GetRoom(code)
	if room == nil {
		sendError(conn, "room:error", internal.ErrRoomNotFound)
		return nil, nil
	}

	room.Mu.Lock()
	if room.Phase != internal.PhaseLobby {
		room.Mu.Unlock()
		sendError(conn, "room:error", internal.ErrGameStarted)
		return nil, nil
	}
	if len(room.Players) >= internal.MaxPlayersPerRoom {
		room.Mu.Unlock()
		sendError(conn, "room:error", internal.ErrRoomFull)
		return nil, nil
	}

	player := internal.NewPlayer(uuid.NewString(), sanitizeNick(data.Nick), data.AvatarSeed)
	player.Conn = conn
	player.IsConnected = true
	player.SessionToken = data.Token
	room.AddPlayer(player)

	broadcastExceptLocked(room, player, "player:joined", map[string]string{
		"playerId":   player.ID,
		"nick":       player.Nick,
		"avatarSeed": player.AvatarSeed,
	})
	sendTo(conn, "room:joined", map[string]any{
		"code":     room.Code,
		"playerId": player.ID,
		"roomData": room.State(),
	})
	broadcastRoomUpdateLocked(room)
	room.Mu.Unlock()

	BindSession(data.Token, room.Code, player.ID)
	log.Printf("[HandleJoinRoom] room %s: %s (%s) joined", room.Code, player.Nick, player.ID)
	return room, player
}

// HandleReady toggles the sender's ready flag while in the lobby.
func HandleReady(room *internal.Room, player *internal.Player, data internal.ReadyData) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhaseLobby {
		return
	}
	player.IsReady = data.Ready
	broadcastRoomUpdateLocked(room)
}

// HandleSettingsUpdate merges a partial settings change from the host.
// Invalid fields are clamped rather than rejected.
func HandleSettingsUpdate(room *internal.Room, player *internal.Player, data internal.SettingsUpdateData) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if player.ID != room.HostID {
		log.Printf("[HandleSettingsUpdate] room %s: non-host %s tried to change settings", room.Code, player.ID)
		return
	}
	if room.Phase != internal.PhaseLobby {
		return
	}

	if data.MinTime != nil && *data.MinTime >= 0 {
		room.Settings.MinTime = *data.MinTime
	}
	if data.MaxRounds != nil && *data.MaxRounds >= 1 {
		room.Settings.MaxRounds = *data.MaxRounds
	}
	if data.UseBonus != nil {
		room.Settings.UseBonus = *data.UseBonus
	}
	if data.Categories != nil {
		categories := make([]string, 0, len(data.Categories))
		for _, c := range data.Categories {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
		if len(categories) > 0 {
			room.Settings.Categories = categories
		}
	}

	broadcastRoomUpdateLocked(room)
}

// removeSeatLocked unseats a player and emits the departure broadcasts.
// Caller holds room.Mu. Returns the session token read under the lock.
func removeSeatLocked(room *internal.Room, player *internal.Player, reason string) string {
	token := player.SessionToken
	newHost := room.RemovePlayer(player.ID)
	if len(room.Players) > 0 {
		broadcastLocked(room, "player:left", map[string]string{
			"playerId": player.ID,
			"nick":     player.Nick,
			"reason":   reason,
		})
		if newHost != nil {
			broadcastLocked(room, "host:changed", map[string]string{
				"playerId": newHost.ID,
				"nick":     newHost.Nick,
			})
			log.Printf("[removeSeatLocked] room %s: host passed to %s", room.Code, newHost.ID)
		}
		broadcastRoomUpdateLocked(room)
	} else {
		cancelTimersLocked(room)
	}
	return token
}

// finishRemoval runs the cleanup that must not happen under room.Mu.
func finishRemoval(room *internal.Room, player *internal.Player, token, reason string, empty bool) {
	CancelReconnectTimer(player.ID)
	DropSession(token)
	if empty {
		DeleteRoom(room.Code)
	}
	log.Printf("[RemoveFromRoom] room %s: %s removed (%s)", room.Code, player.ID, reason)
}

// RemoveFromRoom permanently unseats a player: session dropped, pending
// reconnect cancelled, host succession applied, empty room deleted.
// Reason is one of "left", "kicked".
func RemoveFromRoom(room *internal.Room, player *internal.Player, reason string) {
	room.Mu.Lock()
	token := removeSeatLocked(room, player, reason)
	empty := len(room.Players) == 0
	room.Mu.Unlock()

	finishRemoval(room, player, token, reason, empty)
}

// RemoveFromRoomIfDisconnected is the reconnect-timeout removal. The
// disconnected check and the unseating share one critical section, so a
// restore serialized before the check keeps the seat and a restore
// serialized after it finds the player gone and fails cleanly. Reports
// whether the player was removed.
func RemoveFromRoomIfDisconnected(room *internal.Room, player *internal.Player) bool {
	room.Mu.Lock()
	if room.Players[player.ID] != player || player.IsConnected {
		room.Mu.Unlock()
		return false
	}
	token := removeSeatLocked(room, player, "timeout")
	empty := len(room.Players) == 0
	room.Mu.Unlock()

	finishRemoval(room, player, token, "timeout", empty)
	return true
}

// HandleLeave removes the sender at their own request.
func HandleLeave(room *internal.Room, player *internal.Player) {
	RemoveFromRoom(room, player, "left")
}

// HandleKick lets the host eject another player. The target gets a
// dedicated frame before their socket is closed.
func HandleKick(room *internal.Room, player *internal.Player, data internal.KickData) {
	room.Mu.RLock()
	authorized := player.ID == room.HostID && data.TargetPlayerID != player.ID
	target := room.Players[data.TargetPlayerID]
	// Capture the transport under the lock; restore may rebind it.
	var targetConn *internal.Conn
	if target != nil {
		targetConn = target.Conn
	}
	room.Mu.RUnlock()

	if !authorized || target == nil {
		log.Printf("[HandleKick] room %s: rejected kick of %s by %s", room.Code, data.TargetPlayerID, player.ID)
		return
	}

	if targetConn != nil {
		sendTo(targetConn, "player:kicked", map[string]string{"by": player.Nick})
	}
	RemoveFromRoom(room, target, "kicked")
	if targetConn != nil {
		targetConn.Close()
	}
}
