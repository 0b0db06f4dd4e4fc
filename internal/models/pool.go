package models

import "time"

// Pool is the aggregate owner of tickets and a running winnings counter.
// TotalWinnings is in cents and only ever incremented by the engine.
type Pool struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	GameType      GameType  `json:"game_type" db:"game_type"`
	TotalWinnings int64     `json:"total_winnings" db:"total_winnings"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// PoolMember links a user to a pool. Membership management is handled by the
// main application; the engine only counts members for the per-member split.
type PoolMember struct {
	PoolID   string    `json:"pool_id" db:"pool_id"`
	UserID   string    `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
