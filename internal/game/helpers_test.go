package game

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// newTestConn builds a transport with no socket behind it. Enqueue works
// and tests read broadcast frames straight off the Send queue.
func newTestConn() *internal.Conn {
	return &internal.Conn{
		ID:   uuid.NewString(),
		Send: make(chan []byte, 64),
	}
}

// drainFrames empties a connection's send queue into decoded envelopes.
func drainFrames(t *testing.T, c *internal.Conn) []internal.Message[json.RawMessage] {
	t.Helper()
	var out []internal.Message[json.RawMessage]
	for {
		select {
		case frame := <-c.Send:
			var msg internal.Message[json.RawMessage]
			if err := json.Unmarshal(frame, &msg); err != nil {
				t.Fatalf("undecodable frame %q: %v", frame, err)
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

// lastFrame returns the most recent frame of a type, or nil.
func lastFrame(frames []internal.Message[json.RawMessage], msgType string) json.RawMessage {
	var data json.RawMessage
	for _, f := range frames {
		if f.Type == msgType {
			data = f.Data
		}
	}
	return data
}

func hasFrame(frames []internal.Message[json.RawMessage], msgType string) bool {
	return lastFrame(frames, msgType) != nil
}

// setupRoom creates a room through the real handlers: the first nick is
// the host, the rest join. The room is deregistered when the test ends.
func setupRoom(t *testing.T, nicks ...string) (*internal.Room, []*internal.Player, []*internal.Conn) {
	t.Helper()

	conns := make([]*internal.Conn, len(nicks))
	players := make([]*internal.Player, len(nicks))

	conns[0] = newTestConn()
	room, host := HandleCreateRoom(conns[0], internal.RoomCreateData{
		Nick:  nicks[0],
		Token: "token-" + nicks[0],
	})
	if room == nil || host == nil {
		t.Fatal("room creation failed")
	}
	players[0] = host
	t.Cleanup(func() { DeleteRoom(room.Code) })

	for i := 1; i < len(nicks); i++ {
		conns[i] = newTestConn()
		r, p := HandleJoinRoom(conns[i], internal.RoomJoinData{
			Code:  room.Code,
			Nick:  nicks[i],
			Token: "token-" + nicks[i],
		})
		if r != room || p == nil {
			t.Fatalf("join failed for %s", nicks[i])
		}
		players[i] = p
	}
	return room, players, conns
}

// shrinkTimers drops the phase timings to a few milliseconds so flow
// tests run at test speed.
func shrinkTimers(t *testing.T) {
	t.Helper()
	origDraw := internal.DrawAnimationDuration
	origReveal := internal.LetterRevealDuration
	origStop := internal.StopCountdownDuration
	origEnd := internal.EndGameCooldown
	origGrace := internal.ReconnectGrace

	internal.DrawAnimationDuration = 5 * time.Millisecond
	internal.LetterRevealDuration = 5 * time.Millisecond
	internal.StopCountdownDuration = 10 * time.Millisecond
	internal.EndGameCooldown = 50 * time.Millisecond
	internal.ReconnectGrace = 30 * time.Millisecond

	t.Cleanup(func() {
		internal.DrawAnimationDuration = origDraw
		internal.LetterRevealDuration = origReveal
		internal.StopCountdownDuration = origStop
		internal.EndGameCooldown = origEnd
		internal.ReconnectGrace = origGrace
	})
}

// waitForPhase polls until the room reaches a phase or the deadline
// passes.
func waitForPhase(t *testing.T, room *internal.Room, phase internal.GamePhase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		room.Mu.RLock()
		current := room.Phase
		room.Mu.RUnlock()
		if current == phase {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("room %s never reached phase %s", room.Code, phase)
}

// answersFor fills every active category with a valid unique-ish answer
// starting with the round letter.
func answersFor(room *internal.Room, suffix string) internal.AnswersSubmitData {
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	answers := make(map[string]string, len(room.CategoryOrder))
	for i, key := range room.CategoryOrder {
		answers[key] = fmt.Sprintf("%s%s%d", room.CurrentLetter, suffix, i)
	}
	return internal.AnswersSubmitData{Answers: answers}
}
