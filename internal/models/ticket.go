package models

import "time"

// Ticket is one submitted play tied to a pool and a draw date. The engine
// mutates a ticket exactly once: unchecked -> checked, optionally with
// is_winner set. It never reverts.
type Ticket struct {
	ID          string    `json:"id" db:"id"`
	PoolID      string    `json:"pool_id" db:"pool_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	GameType    GameType  `json:"game_type" db:"game_type"`
	Numbers     []int64   `json:"numbers" db:"numbers"`
	BonusNumber int64     `json:"bonus_number" db:"bonus_number"`
	DrawDate    time.Time `json:"draw_date" db:"draw_date"`
	Checked     bool      `json:"checked" db:"checked"`
	IsWinner    bool      `json:"is_winner" db:"is_winner"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
