package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalakobana/kalakobana-backend/internal"
)

func intPtr(v int) *int { return &v }

// startPlaying runs a two-player room through lobby, sticks and the
// letter draw until the round is live.
func startPlaying(t *testing.T, minTime int) (*internal.Room, []*internal.Player, []*internal.Conn) {
	t.Helper()
	shrinkTimers(t)

	room, players, conns := setupRoom(t, "ana", "beka")
	HandleSettingsUpdate(room, players[0], internal.SettingsUpdateData{
		MinTime:   intPtr(minTime),
		MaxRounds: intPtr(1),
	})
	HandleReady(room, players[1], internal.ReadyData{Ready: true})

	HandleStartGame(room, players[0])
	waitForPhase(t, room, internal.PhaseSticks)

	HandleSticksDraw(room, players[0])
	waitForPhase(t, room, internal.PhasePlaying)
	return room, players, conns
}

func TestStartGameRequiresEveryoneReady(t *testing.T) {
	room, players, conns := setupRoom(t, "ana", "beka")
	drainFrames(t, conns[0])

	HandleStartGame(room, players[0])

	frames := drainFrames(t, conns[0])
	data := lastFrame(frames, "game:error")
	require.NotNil(t, data)
	var errData internal.ErrorData
	require.NoError(t, json.Unmarshal(data, &errData))
	assert.Equal(t, "ყველა მოთამაშე მზად არ არის", errData.Message)

	room.Mu.RLock()
	assert.Equal(t, internal.PhaseLobby, room.Phase)
	room.Mu.RUnlock()
}

func TestStartGameHostOnly(t *testing.T) {
	room, players, _ := setupRoom(t, "ana", "beka")
	HandleReady(room, players[1], internal.ReadyData{Ready: true})

	HandleStartGame(room, players[1])

	room.Mu.RLock()
	assert.Equal(t, internal.PhaseLobby, room.Phase)
	room.Mu.RUnlock()
}

func TestSticksDrawRevealsLetterAndStartsRound(t *testing.T) {
	room, _, conns := startPlaying(t, 0)

	frames := drainFrames(t, conns[1])
	assert.True(t, hasFrame(frames, "sticks:drawing"))
	assert.True(t, hasFrame(frames, "sticks:result"))

	data := lastFrame(frames, "round:start")
	require.NotNil(t, data)
	var start internal.RoundStartData
	require.NoError(t, json.Unmarshal(data, &start))
	assert.Equal(t, 1, start.Round)
	assert.Contains(t, internal.Alphabet, start.Letter)
	assert.NotEmpty(t, start.CategoryOrder)

	room.Mu.RLock()
	assert.Equal(t, start.Letter, room.CurrentLetter)
	assert.Empty(t, room.DrawnLetter)
	room.Mu.RUnlock()
}

func TestStopBeforeMinTimeRejected(t *testing.T) {
	room, players, conns := startPlaying(t, 60)
	drainFrames(t, conns[1])

	HandleRoundStop(room, players[1])

	frames := drainFrames(t, conns[1])
	data := lastFrame(frames, "game:error")
	require.NotNil(t, data)
	var errData internal.ErrorData
	require.NoError(t, json.Unmarshal(data, &errData))
	assert.Equal(t, "დაელოდეთ ტაიმერს", errData.Message)

	room.Mu.RLock()
	assert.Equal(t, internal.PhasePlaying, room.Phase)
	room.Mu.RUnlock()
}

func TestStopOutsideRoundSilentlyIgnored(t *testing.T) {
	room, players, conns := startPlaying(t, 0)
	HandleRoundStop(room, players[0])
	waitForPhase(t, room, internal.PhaseResults)
	drainFrames(t, conns[1])

	// A stop left over from the finished round is stale, not an error.
	HandleRoundStop(room, players[1])

	assert.False(t, hasFrame(drainFrames(t, conns[1]), "game:error"))
	room.Mu.RLock()
	assert.Equal(t, internal.PhaseResults, room.Phase)
	room.Mu.RUnlock()
}

func TestZeroMinTimeArmsStopImmediately(t *testing.T) {
	room, _, conns := startPlaying(t, 0)

	room.Mu.RLock()
	assert.True(t, room.StopTimerArmed)
	room.Mu.RUnlock()
	assert.True(t, hasFrame(drainFrames(t, conns[0]), "stop:enabled"))
}

func TestSubmitNeverAdvancesPhase(t *testing.T) {
	room, players, conns := startPlaying(t, 0)
	drainFrames(t, conns[0])

	HandleSubmitAnswers(room, players[0], answersFor(room, "ana"))
	HandleSubmitAnswers(room, players[1], answersFor(room, "beka"))

	frames := drainFrames(t, conns[0])
	assert.True(t, hasFrame(frames, "all:submitted"))

	room.Mu.RLock()
	assert.True(t, room.AllSubmitted)
	assert.Equal(t, internal.PhasePlaying, room.Phase)
	room.Mu.RUnlock()
}

func TestFullRoundFlow(t *testing.T) {
	room, players, conns := startPlaying(t, 0)

	HandleSubmitAnswers(room, players[0], answersFor(room, "ana"))
	HandleSubmitAnswers(room, players[1], answersFor(room, "beka"))

	HandleRoundStop(room, players[1])
	room.Mu.RLock()
	assert.Equal(t, internal.PhaseStopped, room.Phase)
	assert.Equal(t, "beka", room.StoppedBy)
	room.Mu.RUnlock()

	waitForPhase(t, room, internal.PhaseResults)

	frames := drainFrames(t, conns[0])
	data := lastFrame(frames, "round:results")
	require.NotNil(t, data)
	var results internal.RoundResultsData
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Equal(t, 1, results.Round)
	assert.True(t, results.IsLastRound)
	require.Len(t, results.Results, 2)
	for _, r := range results.Results {
		// Every answer was unique and started with the round letter.
		assert.Equal(t, 20*len(room.CategoryOrder), r.RoundScore)
	}

	stopData := lastFrame(frames, "round:stopped")
	require.NotNil(t, stopData)
	var stopped internal.RoundStoppedData
	require.NoError(t, json.Unmarshal(stopData, &stopped))
	assert.Equal(t, 5, stopped.Countdown)
}

func TestLateSubmitDuringCountdownCounts(t *testing.T) {
	room, players, _ := startPlaying(t, 0)

	HandleRoundStop(room, players[0])
	// The stop countdown is running; a flush-on-stop submit still lands.
	HandleSubmitAnswers(room, players[1], answersFor(room, "beka"))

	room.Mu.RLock()
	assert.True(t, players[1].HasSubmitted)
	room.Mu.RUnlock()

	waitForPhase(t, room, internal.PhaseResults)
	room.Mu.RLock()
	assert.Positive(t, players[1].RoundScore)
	room.Mu.RUnlock()
}

func TestInvalidateBroadcast(t *testing.T) {
	room, players, conns := startPlaying(t, 0)
	HandleSubmitAnswers(room, players[1], answersFor(room, "beka"))
	HandleRoundStop(room, players[0])
	waitForPhase(t, room, internal.PhaseResults)
	drainFrames(t, conns[0])

	category := room.CategoryOrder[0]
	HandleInvalidate(room, players[0], internal.InvalidateData{
		TargetPlayerID: players[1].ID,
		Category:       category,
	})

	data := lastFrame(drainFrames(t, conns[0]), "answer:invalidated")
	require.NotNil(t, data)
	var inv internal.InvalidatedData
	require.NoError(t, json.Unmarshal(data, &inv))
	assert.Equal(t, players[1].ID, inv.TargetPlayerID)
	assert.Equal(t, category, inv.Category)
	assert.Equal(t, players[0].ID, inv.InvalidatedBy)
	assert.Equal(t, 20, inv.Points)
}

func TestLastRoundEndsGameWithStandings(t *testing.T) {
	room, players, conns := startPlaying(t, 0)
	HandleSubmitAnswers(room, players[1], answersFor(room, "beka"))
	HandleRoundStop(room, players[0])
	waitForPhase(t, room, internal.PhaseResults)
	drainFrames(t, conns[0])

	HandleNextRound(room, players[0])
	room.Mu.RLock()
	assert.Equal(t, internal.PhaseEnded, room.Phase)
	assert.Empty(t, room.CurrentLetter)
	room.Mu.RUnlock()

	data := lastFrame(drainFrames(t, conns[0]), "game:ended")
	require.NotNil(t, data)
	var ended internal.GameEndedData
	require.NoError(t, json.Unmarshal(data, &ended))
	require.Len(t, ended.Standings, 2)
	assert.Equal(t, 1, ended.Standings[0].Rank)
	// Only beka submitted, so beka tops the standings.
	assert.Equal(t, "beka", ended.Standings[0].Nick)

	// The cooldown returns everyone to the lobby on its own.
	waitForPhase(t, room, internal.PhaseLobby)
	room.Mu.RLock()
	assert.Zero(t, players[1].TotalScore)
	assert.False(t, players[1].IsReady)
	assert.True(t, players[0].IsReady) // host stays ready
	room.Mu.RUnlock()
	assert.True(t, hasFrame(drainFrames(t, conns[1]), "game:reset"))
}

func TestReturnToLobbyFromResults(t *testing.T) {
	room, players, conns := startPlaying(t, 0)
	HandleRoundStop(room, players[0])
	waitForPhase(t, room, internal.PhaseResults)
	drainFrames(t, conns[0])

	HandleReturnToLobby(room, players[0])

	room.Mu.RLock()
	assert.Equal(t, internal.PhaseLobby, room.Phase)
	assert.Zero(t, room.CurrentRound)
	room.Mu.RUnlock()
	assert.True(t, hasFrame(drainFrames(t, conns[0]), "game:reset"))
}

func TestNextRoundReturnsToSticks(t *testing.T) {
	shrinkTimers(t)
	room, players, _ := setupRoom(t, "ana", "beka")
	HandleSettingsUpdate(room, players[0], internal.SettingsUpdateData{
		MinTime:   intPtr(0),
		MaxRounds: intPtr(3),
	})
	HandleReady(room, players[1], internal.ReadyData{Ready: true})
	HandleStartGame(room, players[0])
	HandleSticksDraw(room, players[0])
	waitForPhase(t, room, internal.PhasePlaying)
	HandleRoundStop(room, players[0])
	waitForPhase(t, room, internal.PhaseResults)

	HandleNextRound(room, players[0])

	room.Mu.RLock()
	assert.Equal(t, internal.PhaseSticks, room.Phase)
	assert.Equal(t, 1, room.CurrentRound)
	assert.Empty(t, room.CurrentLetter)
	room.Mu.RUnlock()

	// A second draw must produce a different letter.
	HandleSticksDraw(room, players[0])
	waitForPhase(t, room, internal.PhasePlaying)
	room.Mu.RLock()
	assert.Equal(t, 2, room.CurrentRound)
	assert.Len(t, room.UsedLetters, 2)
	room.Mu.RUnlock()

	// Give the round timers time to settle before cleanup.
	time.Sleep(20 * time.Millisecond)
}
