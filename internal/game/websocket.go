package game

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// WEBSOCKET GATEWAY
// =============================================================================

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the request and runs the connection's read
// loop until the client goes away.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HandleWebSocket] upgrade failed: %v", err)
		return
	}

	conn := internal.NewConn(ws)
	log.Printf("[HandleWebSocket] connection %s opened from %s", conn.ID, r.RemoteAddr)

	go writePump(conn)
	readLoop(conn)
}

// writePump drains the send queue onto the socket and keeps the
// connection alive with pings. It exits on the first failed write or
// when the queue closes.
func writePump(c *internal.Conn) {
	ticker := time.NewTicker(internal.PingInterval)
	defer func() {
		ticker.Stop()
		c.WS.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			if !ok {
				return
			}
			c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop dispatches inbound frames. A connection starts unbound; it
// binds to a player through room:create, room:join or session:restore
// and stays bound until the player leaves or the socket dies.
func readLoop(c *internal.Conn) {
	var (
		room   *internal.Room
		player *internal.Player
	)

	defer func() {
		c.WS.Close()
		handleDisconnect(c, room, player)
	}()

	c.WS.SetReadDeadline(time.Now().Add(internal.PongTimeout))
	c.WS.SetPongHandler(func(string) error {
		c.WS.SetReadDeadline(time.Now().Add(internal.PongTimeout))
		return nil
	})

	for {
		_, raw, err := c.WS.ReadMessage()
		if err != nil {
			log.Printf("[readLoop] connection %s closed: %v", c.ID, err)
			return
		}

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[readLoop] connection %s: bad frame: %v", c.ID, err)
			continue
		}

		switch msg.Type {
		case "session:restore":
			var data internal.SessionRestoreData
			if json.Unmarshal(msg.Data, &data) == nil {
				room, player = handleSessionRestore(c, data)
			}
			continue
		case "room:create":
			if player != nil {
				continue
			}
			var data internal.RoomCreateData
			if json.Unmarshal(msg.Data, &data) == nil {
				room, player = HandleCreateRoom(c, data)
			}
			continue
		case "room:join":
			if player != nil {
				continue
			}
			var data internal.RoomJoinData
			if json.Unmarshal(msg.Data, &data) == nil {
				room, player = HandleJoinRoom(c, data)
			}
			continue
		}

		if player == nil || room == nil {
			log.Printf("[readLoop] connection %s: %s before binding to a room", c.ID, msg.Type)
			continue
		}

		switch msg.Type {
		case "room:leave":
			HandleLeave(room, player)
			room, player = nil, nil
		case "player:ready":
			var data internal.ReadyData
			if json.Unmarshal(msg.Data, &data) == nil {
				HandleReady(room, player, data)
			}
		case "settings:update":
			var data internal.SettingsUpdateData
			if json.Unmarshal(msg.Data, &data) == nil {
				HandleSettingsUpdate(room, player, data)
			}
		case "player:kick":
			var data internal.KickData
			if json.Unmarshal(msg.Data, &data) == nil {
				HandleKick(room, player, data)
			}
		case "game:start":
			HandleStartGame(room, player)
		case "sticks:draw":
			HandleSticksDraw(room, player)
		case "answers:submit":
			var data internal.AnswersSubmitData
			if json.Unmarshal(msg.Data, &data) == nil {
				HandleSubmitAnswers(room, player, data)
			}
		case "round:stop":
			HandleRoundStop(room, player)
		case "answer:invalidate":
			var data internal.InvalidateData
			if json.Unmarshal(msg.Data, &data) == nil {
				HandleInvalidate(room, player, data)
			}
		case "game:nextRound":
			HandleNextRound(room, player)
		case "game:returnToLobby":
			HandleReturnToLobby(room, player)
		case "chat:message":
			var data internal.ChatData
			if json.Unmarshal(msg.Data, &data) == nil {
				HandleChatMessage(room, player, data)
			}
		case "player:typing":
			var data internal.TypingData
			if json.Unmarshal(msg.Data, &data) == nil {
				HandleTyping(room, player, data)
			}
		default:
			log.Printf("[readLoop] connection %s: unknown message type %q", c.ID, msg.Type)
		}
	}
}

// handleSessionRestore rebinds a returning client to its seat: directory
// lookup first, full repair scan on a miss, stale-token eviction when
// both fail.
func handleSessionRestore(c *internal.Conn, data internal.SessionRestoreData) (*internal.Room, *internal.Player) {
	var (
		room   *internal.Room
		player *internal.Player
	)

	if entry, ok := ResolveSession(data.Token); ok {
		if room = GetRoom(entry.RoomCode); room != nil {
			room.Mu.RLock()
			player = room.Players[entry.PlayerID]
			room.Mu.RUnlock()
		}
	}
	if player == nil {
		if room = RepairScan(data.Token, data.PlayerID); room != nil {
			room.Mu.RLock()
			player = room.Players[data.PlayerID]
			room.Mu.RUnlock()
		}
	}
	if player == nil {
		DropSession(data.Token)
		sendTo(c, "session:restored", internal.SessionRestoredData{Success: false})
		log.Printf("[handleSessionRestore] connection %s: no seat for token", c.ID)
		return nil, nil
	}

	hadPending := CancelReconnectTimer(player.ID)

	room.Mu.Lock()
	player.Conn = c
	player.IsConnected = true
	// IsConnected was set on the line above, so the second clause can
	// never fire; the broadcast hinges on hadPending alone.
	if hadPending || !player.IsConnected {
		broadcastExceptLocked(room, player, "player:reconnected", map[string]string{
			"playerId": player.ID,
			"nick":     player.Nick,
		})
	}
	sendTo(c, "session:restored", internal.SessionRestoredData{
		Success:    true,
		RoomCode:   room.Code,
		PlayerID:   player.ID,
		RoomData:   room.State(),
		PlayerData: player.PrivateView(),
	})
	broadcastRoomUpdateLocked(room)
	room.Mu.Unlock()

	log.Printf("[handleSessionRestore] room %s: %s restored on connection %s", room.Code, player.ID, c.ID)
	return room, player
}

// handleDisconnect marks a bound player disconnected and starts the
// reconnect grace period. A transport that was already replaced by a
// newer connection must not touch the player.
func handleDisconnect(c *internal.Conn, room *internal.Room, player *internal.Player) {
	if room == nil || player == nil {
		return
	}

	room.Mu.Lock()
	if player.Conn == nil || player.Conn.ID != c.ID {
		room.Mu.Unlock()
		return
	}
	player.Conn = nil
	player.IsConnected = false

	stillSeated := room.Players[player.ID] == player
	if stillSeated {
		broadcastLocked(room, "player:disconnected", map[string]string{
			"playerId": player.ID,
			"nick":     player.Nick,
		})
		broadcastRoomUpdateLocked(room)
	}
	room.Mu.Unlock()

	if stillSeated {
		ArmReconnectTimer(room.Code, player.ID)
	}
}
