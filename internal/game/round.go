package game

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/kalakobana/kalakobana-backend/internal"
)

// =============================================================================
// ROUND ENGINE
// =============================================================================

// drawLetterLocked picks a letter uniformly from the unused part of the
// alphabet and marks it used. When every letter has been drawn the used
// set resets and the full alphabet is available again.
func drawLetterLocked(room *internal.Room) string {
	available := make([]string, 0, len(internal.Alphabet))
	for _, letter := range internal.Alphabet {
		if !room.UsedLetters[letter] {
			available = append(available, letter)
		}
	}
	if len(available) == 0 {
		room.UsedLetters = make(map[string]bool)
		available = append(available, internal.Alphabet...)
	}

	letter := available[rand.Intn(len(available))]
	room.UsedLetters[letter] = true
	return letter
}

// assembleCategoriesLocked keys the configured categories cat_0..cat_n
// in settings order and, with the bonus enabled, appends a random bonus
// category. The keys stay stable for the whole round and identify
// categories in every answer and score message.
func assembleCategoriesLocked(room *internal.Room) {
	categories := make(map[string]string, len(room.Settings.Categories)+1)
	order := make([]string, 0, len(room.Settings.Categories)+1)

	for i, name := range room.Settings.Categories {
		key := fmt.Sprintf("cat_%d", i)
		categories[key] = name
		order = append(order, key)
	}
	if room.Settings.UseBonus {
		categories[internal.BonusCategoryKey] = internal.BonusCategories[rand.Intn(len(internal.BonusCategories))]
		order = append(order, internal.BonusCategoryKey)
	}

	room.ActiveCategories = categories
	room.CategoryOrder = order
}

func normalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// scoreRoundLocked runs the deterministic scoring pass over every seated
// player: 0 for empty or wrong first letter, 20 for a unique valid
// answer, 10 when two or more players gave the identical answer.
func scoreRoundLocked(room *internal.Room) {
	letter := strings.ToLower(room.CurrentLetter)

	// Occurrences of each normalized answer per category, all players.
	counts := make(map[string]map[string]int, len(room.CategoryOrder))
	for _, key := range room.CategoryOrder {
		counts[key] = make(map[string]int)
		for _, p := range room.Players {
			if a := normalizeAnswer(p.Answers[key]); a != "" {
				counts[key][a]++
			}
		}
	}

	for _, p := range room.Players {
		p.CategoryScores = make(map[string]*internal.CategoryScore, len(room.CategoryOrder))
		roundScore := 0
		for _, key := range room.CategoryOrder {
			raw := p.Answers[key]
			score := &internal.CategoryScore{Answer: raw}
			a := normalizeAnswer(raw)
			switch {
			case a == "" || !strings.HasPrefix(a, letter):
				// points stay 0, isValid false
			case counts[key][a] > 1:
				score.IsValid = true
				score.Points = 10
			default:
				score.IsValid = true
				score.Points = 20
			}
			p.CategoryScores[key] = score
			roundScore += score.Points
		}
		p.RoundScore = roundScore
		p.TotalScore += roundScore
	}
}

// toggleInvalidationLocked flips the validity of one scored answer. The
// cached scoring-pass points move out of (or back into) the target's
// round and total scores; nothing is recomputed. A zero-point score
// still toggles its invalidatedBy marker, a visible no-op.
func toggleInvalidationLocked(room *internal.Room, toggler, target *internal.Player, category string) *internal.CategoryScore {
	score, ok := target.CategoryScores[category]
	if !ok {
		return nil
	}
	if score.InvalidatedBy == "" {
		score.InvalidatedBy = toggler.ID
		target.RoundScore -= score.Points
		target.TotalScore -= score.Points
	} else {
		score.InvalidatedBy = ""
		target.RoundScore += score.Points
		target.TotalScore += score.Points
	}
	return score
}
