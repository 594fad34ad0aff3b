package game

import (
	"log"
	"time"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// GAME FLOW
// =============================================================================

// advancePhaseLocked moves the room to a new phase. Bumping PhaseSeq
// invalidates every timer callback scheduled before the transition.
func advancePhaseLocked(room *internal.Room, phase internal.GamePhase) {
	room.Phase = phase
	room.PhaseSeq++
}

// schedulePhaseLocked arms the room's phase timer. The callback is
// dropped when the room was deleted or moved to another phase before it
// fired; fn reacquires the room lock itself.
func schedulePhaseLocked(room *internal.Room, d time.Duration, fn func(*internal.Room)) {
	seq := room.PhaseSeq
	room.PhaseTimer = time.AfterFunc(d, func() {
		if GetRoom(room.Code) != room {
			return
		}
		room.Mu.RLock()
		stale := room.PhaseSeq != seq
		room.Mu.RUnlock()
		if stale {
			return
		}
		fn(room)
	})
}

func scheduleMinTimeLocked(room *internal.Room, d time.Duration) {
	seq := room.PhaseSeq
	room.MinTimeTimer = time.AfterFunc(d, func() {
		if GetRoom(room.Code) != room {
			return
		}
		room.Mu.RLock()
		stale := room.PhaseSeq != seq
		room.Mu.RUnlock()
		if stale {
			return
		}
		armStopButton(room)
	})
}

func cancelTimersLocked(room *internal.Room) {
	if room.PhaseTimer != nil {
		room.PhaseTimer.Stop()
		room.PhaseTimer = nil
	}
	if room.MinTimeTimer != nil {
		room.MinTimeTimer.Stop()
		room.MinTimeTimer = nil
	}
}

// clearRoundLocked wipes the room-level round state when entering the
// sticks phase. Per-player round state is wiped when play begins.
func clearRoundLocked(room *internal.Room) {
	room.CurrentLetter = ""
	room.DrawnLetter = ""
	room.ActiveCategories = nil
	room.CategoryOrder = nil
	room.StoppedBy = ""
	room.StopTimerArmed = false
	room.AllSubmitted = false
}

// HandleStartGame launches a game from the lobby. Host only; every
// connected player must be ready.
func HandleStartGame(room *internal.Room, player *internal.Player) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if player.ID != room.HostID {
		log.Printf("[HandleStartGame] room %s: non-host %s tried to start", room.Code, player.ID)
		return
	}
	if room.Phase != internal.PhaseLobby {
		sendError(player.Conn, "game:error", internal.ErrWrongPhase)
		return
	}
	if len(room.Players) == 0 || !room.AllConnectedReady() {
		sendError(player.Conn, "game:error", internal.ErrPlayersNotReady)
		return
	}

	room.UsedLetters = make(map[string]bool)
	room.CurrentRound = 0
	for _, p := range room.Players {
		p.ResetGameState()
	}
	clearRoundLocked(room)
	advancePhaseLocked(room, internal.PhaseSticks)

	log.Printf("[HandleStartGame] room %s: game started by %s", room.Code, player.Nick)
	broadcastLocked(room, "phase:sticks", struct{}{})
	broadcastRoomUpdateLocked(room)
}

// HandleSticksDraw runs the host's letter draw: stage a letter, play the
// draw animation, reveal, then start the round.
func HandleSticksDraw(room *internal.Room, player *internal.Player) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if player.ID != room.HostID {
		log.Printf("[HandleSticksDraw] room %s: non-host %s tried to draw", room.Code, player.ID)
		return
	}
	if room.Phase != internal.PhaseSticks {
		sendError(player.Conn, "game:error", internal.ErrWrongPhase)
		return
	}
	if room.DrawnLetter != "" {
		// A draw is already in flight.
		return
	}

	room.DrawnLetter = drawLetterLocked(room)
	log.Printf("[HandleSticksDraw] room %s: drew %q for round %d", room.Code, room.DrawnLetter, room.CurrentRound+1)

	broadcastLocked(room, "sticks:drawing", map[string]int64{
		"duration": internal.DrawAnimationDuration.Milliseconds(),
	})
	schedulePhaseLocked(room, internal.DrawAnimationDuration, revealLetter)
}

// revealLetter fires when the draw animation ends.
func revealLetter(room *internal.Room) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhaseSticks || room.DrawnLetter == "" {
		return
	}
	broadcastLocked(room, "sticks:result", map[string]string{"letter": room.DrawnLetter})
	schedulePhaseLocked(room, internal.LetterRevealDuration, beginPlaying)
}

// beginPlaying promotes the staged letter, resets per-player round state
// and opens the round.
func beginPlaying(room *internal.Room) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhaseSticks || room.DrawnLetter == "" {
		return
	}

	advancePhaseLocked(room, internal.PhasePlaying)
	room.CurrentRound++
	room.CurrentLetter = room.DrawnLetter
	room.DrawnLetter = ""
	room.StoppedBy = ""
	room.StopTimerArmed = false
	room.AllSubmitted = false
	for _, p := range room.Players {
		p.ResetRoundState()
	}
	assembleCategoriesLocked(room)

	log.Printf("[beginPlaying] room %s: round %d started with letter %q", room.Code, room.CurrentRound, room.CurrentLetter)
	broadcastLocked(room, "round:start", internal.RoundStartData{
		Round:         room.CurrentRound,
		Letter:        room.CurrentLetter,
		Categories:    room.ActiveCategories,
		CategoryOrder: room.CategoryOrder,
		MinTime:       room.Settings.MinTime,
	})

	if room.Settings.MinTime <= 0 {
		room.StopTimerArmed = true
		broadcastLocked(room, "stop:enabled", struct{}{})
	} else {
		scheduleMinTimeLocked(room, time.Duration(room.Settings.MinTime)*time.Second)
	}
	broadcastRoomUpdateLocked(room)
}

// armStopButton fires when the minimum round time elapses.
func armStopButton(room *internal.Room) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhasePlaying || room.StopTimerArmed {
		return
	}
	room.StopTimerArmed = true
	broadcastLocked(room, "stop:enabled", struct{}{})
	broadcastRoomUpdateLocked(room)
}

// HandleRoundStop lets any player stop the round once the minimum time
// has armed the button. A stop starts the submit countdown.
func HandleRoundStop(room *internal.Room, player *internal.Player) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhasePlaying {
		log.Printf("[HandleRoundStop] room %s: late stop from %s in phase %s", room.Code, player.ID, room.Phase)
		return
	}
	if !room.StopTimerArmed {
		sendError(player.Conn, "game:error", internal.ErrStopNotArmed)
		return
	}

	advancePhaseLocked(room, internal.PhaseStopped)
	room.StoppedBy = player.Nick

	log.Printf("[HandleRoundStop] room %s: round %d stopped by %s", room.Code, room.CurrentRound, player.Nick)
	broadcastLocked(room, "round:stopped", internal.RoundStoppedData{
		StoppedBy: player.Nick,
		Countdown: internal.StopCountdownSeconds,
	})
	schedulePhaseLocked(room, internal.StopCountdownDuration, finishRound)
	broadcastRoomUpdateLocked(room)
}

// finishRound fires when the stop countdown lapses: score everything and
// publish the round results.
func finishRound(room *internal.Room) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhaseStopped {
		return
	}

	advancePhaseLocked(room, internal.PhaseResults)
	scoreRoundLocked(room)

	results := make([]internal.PlayerResult, 0, len(room.Order))
	for _, p := range room.SeatedPlayers() {
		results = append(results, internal.PlayerResult{
			PlayerID:       p.ID,
			Nick:           p.Nick,
			CategoryScores: p.CategoryScores,
			RoundScore:     p.RoundScore,
			TotalScore:     p.TotalScore,
		})
	}

	log.Printf("[finishRound] room %s: round %d scored", room.Code, room.CurrentRound)
	broadcastLocked(room, "round:results", internal.RoundResultsData{
		Round:       room.CurrentRound,
		Letter:      room.CurrentLetter,
		IsLastRound: room.CurrentRound >= room.Settings.MaxRounds,
		Results:     results,
	})
	broadcastRoomUpdateLocked(room)
}

// HandleSubmitAnswers records a player's answers. Accepted while playing
// and during the stop countdown, so clients can flush on round:stopped.
// Submissions never advance the phase; only the countdown does.
func HandleSubmitAnswers(room *internal.Room, player *internal.Player, data internal.AnswersSubmitData) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhasePlaying && room.Phase != internal.PhaseStopped {
		log.Printf("[HandleSubmitAnswers] room %s: late submit from %s in phase %s", room.Code, player.ID, room.Phase)
		return
	}

	answers := make(map[string]string, len(room.ActiveCategories))
	for key, value := range data.Answers {
		if _, ok := room.ActiveCategories[key]; ok {
			answers[key] = value
		}
	}
	player.Answers = answers
	player.HasSubmitted = true

	if !room.AllSubmitted && room.AllConnectedSubmitted() {
		room.AllSubmitted = true
		broadcastLocked(room, "all:submitted", struct{}{})
	}
	broadcastRoomUpdateLocked(room)
}

// HandleInvalidate toggles the validity of one scored answer during the
// results phase and broadcasts the adjusted scores.
func HandleInvalidate(room *internal.Room, player *internal.Player, data internal.InvalidateData) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhaseResults {
		return
	}
	target, ok := room.Players[data.TargetPlayerID]
	if !ok {
		return
	}
	score := toggleInvalidationLocked(room, player, target, data.Category)
	if score == nil {
		return
	}

	broadcastLocked(room, "answer:invalidated", internal.InvalidatedData{
		TargetPlayerID: target.ID,
		Category:       data.Category,
		InvalidatedBy:  score.InvalidatedBy,
		Points:         score.Points,
		RoundScore:     target.RoundScore,
		TotalScore:     target.TotalScore,
	})
	broadcastRoomUpdateLocked(room)
}

// HandleNextRound moves the room out of the results phase: back to the
// sticks draw, or to the final standings after the last round.
func HandleNextRound(room *internal.Room, player *internal.Player) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if player.ID != room.HostID {
		log.Printf("[HandleNextRound] room %s: non-host %s tried to advance", room.Code, player.ID)
		return
	}
	if room.Phase != internal.PhaseResults {
		sendError(player.Conn, "game:error", internal.ErrWrongPhase)
		return
	}

	if room.CurrentRound >= room.Settings.MaxRounds {
		endGameLocked(room)
	} else {
		clearRoundLocked(room)
		advancePhaseLocked(room, internal.PhaseSticks)
		broadcastLocked(room, "phase:sticks", struct{}{})
	}
	broadcastRoomUpdateLocked(room)
}

// endGameLocked publishes the final standings and schedules the
// automatic return to the lobby.
func endGameLocked(room *internal.Room) {
	clearRoundLocked(room)
	advancePhaseLocked(room, internal.PhaseEnded)

	log.Printf("[endGameLocked] room %s: game over after round %d", room.Code, room.CurrentRound)
	broadcastLocked(room, "game:ended", internal.GameEndedData{Standings: room.Standings()})
	schedulePhaseLocked(room, internal.EndGameCooldown, cooldownToLobby)
}

// cooldownToLobby fires when the post-game cooldown lapses.
func cooldownToLobby(room *internal.Room) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Phase != internal.PhaseEnded {
		return
	}
	resetToLobbyLocked(room)
}

// HandleReturnToLobby lets the host skip ahead to the lobby from the
// results screen or the standings.
func HandleReturnToLobby(room *internal.Room, player *internal.Player) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if player.ID != room.HostID {
		log.Printf("[HandleReturnToLobby] room %s: non-host %s tried to reset", room.Code, player.ID)
		return
	}
	if room.Phase != internal.PhaseResults && room.Phase != internal.PhaseEnded {
		sendError(player.Conn, "game:error", internal.ErrWrongPhase)
		return
	}
	resetToLobbyLocked(room)
}

// resetToLobbyLocked wipes all game state and unreadies everyone except
// the host, matching a freshly assembled lobby.
func resetToLobbyLocked(room *internal.Room) {
	cancelTimersLocked(room)
	clearRoundLocked(room)
	advancePhaseLocked(room, internal.PhaseLobby)
	room.CurrentRound = 0
	room.UsedLetters = make(map[string]bool)
	for _, p := range room.Players {
		p.ResetGameState()
		p.IsReady = p.IsHost
	}

	log.Printf("[resetToLobbyLocked] room %s: back to lobby", room.Code)
	broadcastLocked(room, "game:reset", struct{}{})
	broadcastRoomUpdateLocked(room)
}
