package services

import (
	"testing"

	"github.com/luckpool/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name        string
		mainMatches int
		bonusMatch  bool
		wantTier    PrizeTier
		wantWinner  bool
	}{
		{"five plus bonus is the jackpot", 5, true, TierJackpot, true},
		{"five without bonus", 5, false, TierMatch5, true},
		{"four plus bonus", 4, true, TierMatch4Bonus, true},
		{"four without bonus", 4, false, TierMatch4, true},
		{"three plus bonus", 3, true, TierMatch3Bonus, true},
		{"three without bonus", 3, false, TierMatch3, true},
		{"two plus bonus", 2, true, TierMatch2Bonus, true},
		{"one plus bonus", 1, true, TierMatch1Bonus, true},
		{"bonus only", 0, true, TierMatchBonus, true},
		{"two without bonus is not a win", 2, false, "", false},
		{"one without bonus is not a win", 1, false, "", false},
		{"nothing matched", 0, false, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tier, winner := ResolveTier(tc.mainMatches, tc.bonusMatch)
			assert.Equal(t, tc.wantTier, tier)
			assert.Equal(t, tc.wantWinner, winner)
		})
	}
}

func TestPrizeAmount(t *testing.T) {
	t.Run("fixed tiers differ per game", func(t *testing.T) {
		amount, pending := PrizeAmount(models.GamePowerball, TierMatch4Bonus, nil)
		assert.False(t, pending)
		assert.Equal(t, int64(5_000_000), *amount)

		amount, pending = PrizeAmount(models.GameMegaMillions, TierMatch4Bonus, nil)
		assert.False(t, pending)
		assert.Equal(t, int64(1_000_000), *amount)

		amount, pending = PrizeAmount(models.GameMegaMillions, TierMatchBonus, nil)
		assert.False(t, pending)
		assert.Equal(t, int64(200), *amount)
	})

	t.Run("jackpot resolved from drawing", func(t *testing.T) {
		jackpot := int64(32_500_000_000)
		amount, pending := PrizeAmount(models.GamePowerball, TierJackpot, &jackpot)
		assert.False(t, pending)
		assert.Equal(t, jackpot, *amount)
	})

	t.Run("unknown jackpot is pending review, never zero", func(t *testing.T) {
		amount, pending := PrizeAmount(models.GamePowerball, TierJackpot, nil)
		assert.True(t, pending)
		assert.Nil(t, amount)
	})

	t.Run("unknown tier yields nothing", func(t *testing.T) {
		amount, pending := PrizeAmount(models.GamePowerball, PrizeTier("match_42"), nil)
		assert.False(t, pending)
		assert.Nil(t, amount)
	})
}

func TestTierLabel(t *testing.T) {
	assert.Equal(t, "Jackpot", TierLabel(TierJackpot))
	assert.Equal(t, "Match 4 + Bonus", TierLabel(TierMatch4Bonus))
	assert.Equal(t, "Bonus Ball", TierLabel(TierMatchBonus))
}
