package models

import "time"

// Drawing represents one official lottery result for a game on a draw date.
// Rows are written by the result ingestion job and are read-only to the
// reconciliation engine.
type Drawing struct {
	ID             int       `json:"id" db:"id"`
	GameType       GameType  `json:"game_type" db:"game_type"`
	DrawDate       time.Time `json:"draw_date" db:"draw_date"`
	WinningNumbers []int64   `json:"winning_numbers" db:"winning_numbers"`
	BonusNumber    int64     `json:"bonus_number" db:"bonus_number"`
	Multiplier     *int64    `json:"multiplier,omitempty" db:"multiplier"`
	// JackpotAmount is in cents. Nil means the jackpot for this drawing is
	// not yet known; jackpot-tier wins are then recorded as pending review.
	JackpotAmount *int64    `json:"jackpot_amount,omitempty" db:"jackpot_amount"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
