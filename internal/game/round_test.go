package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalakobana/kalakobana-backend/internal"
)

func TestDrawLetterNoRepeatsUntilExhausted(t *testing.T) {
	room := internal.NewRoom("DRAW1")

	seen := make(map[string]bool)
	for i := 0; i < len(internal.Alphabet); i++ {
		letter := drawLetterLocked(room)
		assert.False(t, seen[letter], "letter %q drawn twice before exhaustion", letter)
		seen[letter] = true
	}
	assert.Len(t, seen, len(internal.Alphabet))

	// The next draw rolls the used set over and starts again.
	letter := drawLetterLocked(room)
	assert.True(t, seen[letter])
	assert.Len(t, room.UsedLetters, 1)
}

func TestAssembleCategories(t *testing.T) {
	room := internal.NewRoom("CATS1")
	room.Settings.Categories = []string{"ქალაქი", "მდინარე"}
	room.Settings.UseBonus = true

	assembleCategoriesLocked(room)

	require.Equal(t, []string{"cat_0", "cat_1", "bonus"}, room.CategoryOrder)
	assert.Equal(t, "ქალაქი", room.ActiveCategories["cat_0"])
	assert.Equal(t, "მდინარე", room.ActiveCategories["cat_1"])
	assert.Contains(t, internal.BonusCategories, room.ActiveCategories[internal.BonusCategoryKey])

	room.Settings.UseBonus = false
	assembleCategoriesLocked(room)
	assert.Equal(t, []string{"cat_0", "cat_1"}, room.CategoryOrder)
	assert.NotContains(t, room.ActiveCategories, internal.BonusCategoryKey)
}

func scoredRoom(t *testing.T) (*internal.Room, *internal.Player, *internal.Player, *internal.Player) {
	t.Helper()
	room := internal.NewRoom("SCORE")
	p1 := internal.NewPlayer("p1", "ana", "")
	p2 := internal.NewPlayer("p2", "beka", "")
	p3 := internal.NewPlayer("p3", "gio", "")
	room.AddPlayer(p1)
	room.AddPlayer(p2)
	room.AddPlayer(p3)

	room.CurrentLetter = "ბ"
	room.ActiveCategories = map[string]string{"cat_0": "ქალაქი", "cat_1": "ცხოველი"}
	room.CategoryOrder = []string{"cat_0", "cat_1"}

	p1.Answers = map[string]string{"cat_0": "ბათუმი", "cat_1": "ბუ"}
	p2.Answers = map[string]string{"cat_0": " ბათუმი ", "cat_1": "თხა"} // dup after normalize; wrong letter
	p3.Answers = map[string]string{"cat_0": "ბორჯომი", "cat_1": ""}

	scoreRoundLocked(room)
	return room, p1, p2, p3
}

func TestScoreRound(t *testing.T) {
	_, p1, p2, p3 := scoredRoom(t)

	// Duplicate answers score 10 each, case and whitespace folded.
	assert.Equal(t, 10, p1.CategoryScores["cat_0"].Points)
	assert.Equal(t, 10, p2.CategoryScores["cat_0"].Points)
	assert.True(t, p2.CategoryScores["cat_0"].IsValid)

	// Unique valid answer scores 20.
	assert.Equal(t, 20, p3.CategoryScores["cat_0"].Points)

	// Unique valid answer in the second category.
	assert.Equal(t, 20, p1.CategoryScores["cat_1"].Points)

	// Wrong first letter and empty answers score 0 and are invalid.
	assert.Equal(t, 0, p2.CategoryScores["cat_1"].Points)
	assert.False(t, p2.CategoryScores["cat_1"].IsValid)
	assert.Equal(t, 0, p3.CategoryScores["cat_1"].Points)
	assert.False(t, p3.CategoryScores["cat_1"].IsValid)

	assert.Equal(t, 30, p1.RoundScore)
	assert.Equal(t, 10, p2.RoundScore)
	assert.Equal(t, 20, p3.RoundScore)
	assert.Equal(t, 30, p1.TotalScore)
}

func TestScoreRoundAccumulatesTotals(t *testing.T) {
	room, p1, _, _ := scoredRoom(t)

	p1.ResetRoundState()
	p1.Answers = map[string]string{"cat_0": "ბოლნისი"}
	for _, p := range room.Players {
		if p != p1 {
			p.ResetRoundState()
		}
	}
	scoreRoundLocked(room)

	assert.Equal(t, 20, p1.RoundScore)
	assert.Equal(t, 50, p1.TotalScore)
}

func TestInvalidationToggleMovesCachedPoints(t *testing.T) {
	room, p1, _, p3 := scoredRoom(t)

	score := toggleInvalidationLocked(room, p1, p3, "cat_0")
	require.NotNil(t, score)
	assert.Equal(t, p1.ID, score.InvalidatedBy)
	assert.Equal(t, 0, p3.RoundScore)
	assert.Equal(t, 0, p3.TotalScore)
	// Points stay cached so a second toggle restores them.
	assert.Equal(t, 20, score.Points)

	score = toggleInvalidationLocked(room, p1, p3, "cat_0")
	require.NotNil(t, score)
	assert.Empty(t, score.InvalidatedBy)
	assert.Equal(t, 20, p3.RoundScore)
	assert.Equal(t, 20, p3.TotalScore)
}

func TestInvalidationOfZeroPointAnswerIsVisibleNoop(t *testing.T) {
	room, p1, p2, _ := scoredRoom(t)

	score := toggleInvalidationLocked(room, p1, p2, "cat_1")
	require.NotNil(t, score)
	assert.Equal(t, p1.ID, score.InvalidatedBy)
	assert.Equal(t, 10, p2.RoundScore)
	assert.Equal(t, 10, p2.TotalScore)
}

func TestInvalidationUnknownCategory(t *testing.T) {
	room, p1, p2, _ := scoredRoom(t)
	assert.Nil(t, toggleInvalidationLocked(room, p1, p2, "cat_99"))
}
