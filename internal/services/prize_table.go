package services

import (
	"github.com/luckpool/backend/internal/models"
)

// PrizeTier is a closed enumeration of prize categories. Tier resolution is
// a pure function of how many main numbers matched and whether the bonus
// ball matched; the two supported games share the same tier topology and
// differ only in payout amounts.
type PrizeTier string

const (
	TierJackpot     PrizeTier = "jackpot"
	TierMatch5      PrizeTier = "match_5"
	TierMatch4Bonus PrizeTier = "match_4_bonus"
	TierMatch4      PrizeTier = "match_4"
	TierMatch3Bonus PrizeTier = "match_3_bonus"
	TierMatch3      PrizeTier = "match_3"
	TierMatch2Bonus PrizeTier = "match_2_bonus"
	TierMatch1Bonus PrizeTier = "match_1_bonus"
	TierMatchBonus  PrizeTier = "match_bonus"
)

// prizeEntry carries a fixed payout in cents, or marks the tier as resolved
// from the drawing's jackpot field.
type prizeEntry struct {
	amountCents int64
	fromDrawing bool
}

var powerballPrizes = map[PrizeTier]prizeEntry{
	TierJackpot:     {fromDrawing: true},
	TierMatch5:      {amountCents: 100_000_000}, // $1,000,000
	TierMatch4Bonus: {amountCents: 5_000_000},   // $50,000
	TierMatch4:      {amountCents: 10_000},
	TierMatch3Bonus: {amountCents: 10_000},
	TierMatch3:      {amountCents: 700},
	TierMatch2Bonus: {amountCents: 700},
	TierMatch1Bonus: {amountCents: 400},
	TierMatchBonus:  {amountCents: 400},
}

var megaMillionsPrizes = map[PrizeTier]prizeEntry{
	TierJackpot:     {fromDrawing: true},
	TierMatch5:      {amountCents: 100_000_000}, // $1,000,000
	TierMatch4Bonus: {amountCents: 1_000_000},   // $10,000
	TierMatch4:      {amountCents: 50_000},
	TierMatch3Bonus: {amountCents: 20_000},
	TierMatch3:      {amountCents: 1_000},
	TierMatch2Bonus: {amountCents: 1_000},
	TierMatch1Bonus: {amountCents: 400},
	TierMatchBonus:  {amountCents: 200},
}

func prizeTable(game models.GameType) map[PrizeTier]prizeEntry {
	if game == models.GameMegaMillions {
		return megaMillionsPrizes
	}
	return powerballPrizes
}

// ResolveTier maps (main matches, bonus match) to a prize tier. The second
// return value is false for non-winning combinations.
func ResolveTier(mainMatches int, bonusMatch bool) (PrizeTier, bool) {
	switch {
	case mainMatches == 5 && bonusMatch:
		return TierJackpot, true
	case mainMatches == 5:
		return TierMatch5, true
	case mainMatches == 4 && bonusMatch:
		return TierMatch4Bonus, true
	case mainMatches == 4:
		return TierMatch4, true
	case mainMatches == 3 && bonusMatch:
		return TierMatch3Bonus, true
	case mainMatches == 3:
		return TierMatch3, true
	case mainMatches == 2 && bonusMatch:
		return TierMatch2Bonus, true
	case mainMatches == 1 && bonusMatch:
		return TierMatch1Bonus, true
	case mainMatches == 0 && bonusMatch:
		return TierMatchBonus, true
	}
	return "", false
}

// PrizeAmount returns the payout in cents for a tier of the given game.
// The jackpot tier is resolved from the drawing's jackpot amount; when that
// amount is not on file the returned amount is nil and pendingReview is
// true. An unknown jackpot is never treated as zero.
func PrizeAmount(game models.GameType, tier PrizeTier, jackpotAmount *int64) (amount *int64, pendingReview bool) {
	entry, ok := prizeTable(game)[tier]
	if !ok {
		return nil, false
	}

	if entry.fromDrawing {
		if jackpotAmount == nil {
			return nil, true
		}
		v := *jackpotAmount
		return &v, false
	}

	v := entry.amountCents
	return &v, false
}

// TierLabel returns the human-readable name used in notifications and
// win emails.
func TierLabel(tier PrizeTier) string {
	switch tier {
	case TierJackpot:
		return "Jackpot"
	case TierMatch5:
		return "Match 5"
	case TierMatch4Bonus:
		return "Match 4 + Bonus"
	case TierMatch4:
		return "Match 4"
	case TierMatch3Bonus:
		return "Match 3 + Bonus"
	case TierMatch3:
		return "Match 3"
	case TierMatch2Bonus:
		return "Match 2 + Bonus"
	case TierMatch1Bonus:
		return "Match 1 + Bonus"
	case TierMatchBonus:
		return "Bonus Ball"
	}
	return string(tier)
}
