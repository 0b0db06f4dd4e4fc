package models

import "time"

// WinningsRecord is the ledger entry for one winning ticket. The UNIQUE
// constraint on TicketID is the engine's idempotency key: re-running a
// reconciliation can never credit the same ticket twice.
type WinningsRecord struct {
	ID       string   `json:"id" db:"id"`
	TicketID string   `json:"ticket_id" db:"ticket_id"`
	PoolID   string   `json:"pool_id" db:"pool_id"`
	UserID   string   `json:"user_id" db:"user_id"`
	GameType GameType `json:"game_type" db:"game_type"`
	// PrizeAmount is in cents. Nil means a jackpot win whose amount was not
	// on file at reconciliation time (pending manual review). Never zero.
	PrizeAmount    *int64    `json:"prize_amount" db:"prize_amount"`
	PrizeTier      string    `json:"prize_tier" db:"prize_tier"`
	NumbersMatched int       `json:"numbers_matched" db:"numbers_matched"`
	BonusMatched   bool      `json:"bonus_matched" db:"bonus_matched"`
	PendingReview  bool      `json:"pending_review" db:"pending_review"`
	DrawDate       time.Time `json:"draw_date" db:"draw_date"`
	// Filled in by pool aggregation in the same run.
	PerMemberShare      *int64    `json:"per_member_share" db:"per_member_share"`
	ContributingMembers *int      `json:"contributing_members" db:"contributing_members"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}
