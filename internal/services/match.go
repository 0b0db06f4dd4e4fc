package services

import (
	"github.com/luckpool/backend/internal/models"
)

// MatchResult is the outcome of evaluating one ticket against a drawing.
type MatchResult struct {
	MainMatches int
	BonusMatch  bool
	Tier        PrizeTier
	IsWinner    bool
}

// EvaluateTicket compares a ticket's numbers against the drawing's winning
// numbers. Pure function: no I/O, safe to call in any order.
func EvaluateTicket(numbers []int64, bonusNumber int64, drawing *models.Drawing) MatchResult {
	winning := make(map[int64]bool, len(drawing.WinningNumbers))
	for _, n := range drawing.WinningNumbers {
		winning[n] = true
	}

	result := MatchResult{}
	seen := make(map[int64]bool, len(numbers))
	for _, n := range numbers {
		if seen[n] {
			continue
		}
		seen[n] = true
		if winning[n] {
			result.MainMatches++
		}
	}

	result.BonusMatch = bonusNumber == drawing.BonusNumber
	result.Tier, result.IsWinner = ResolveTier(result.MainMatches, result.BonusMatch)
	return result
}
