package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/luckpool/backend/internal/audit"
	"github.com/luckpool/backend/internal/models"
)

// WinningsService writes the winnings ledger. The UNIQUE constraint on
// winnings.ticket_id makes every write idempotent: a retried or concurrent
// run can never credit a ticket twice.
type WinningsService struct {
	db    *sql.DB
	audit *audit.AuditLogger
}

func NewWinningsService(db *sql.DB) *WinningsService {
	return &WinningsService{
		db:    db,
		audit: audit.NewAuditLogger(),
	}
}

// RecordWin upserts the winnings record for a winning ticket and marks the
// ticket checked+winner in one database transaction. The returned record is
// nil when another run already credited this ticket (idempotent replay).
func (s *WinningsService) RecordWin(ctx context.Context, ticket *models.Ticket, result MatchResult, drawing *models.Drawing) (*models.WinningsRecord, error) {
	amount, pendingReview := PrizeAmount(ticket.GameType, result.Tier, drawing.JackpotAmount)

	record := &models.WinningsRecord{
		ID:             uuid.NewString(),
		TicketID:       ticket.ID,
		PoolID:         ticket.PoolID,
		UserID:         ticket.UserID,
		GameType:       ticket.GameType,
		PrizeAmount:    amount,
		PrizeTier:      string(result.Tier),
		NumbersMatched: result.MainMatches,
		BonusMatched:   result.BonusMatch,
		PendingReview:  pendingReview,
		DrawDate:       drawing.DrawDate,
		CreatedAt:      time.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO winnings
		(id, ticket_id, pool_id, user_id, game_type, draw_date, prize_tier, prize_amount, numbers_matched, bonus_matched, pending_review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (ticket_id) DO NOTHING
	`, record.ID, record.TicketID, record.PoolID, record.UserID, string(record.GameType),
		record.DrawDate, record.PrizeTier, record.PrizeAmount, record.NumbersMatched,
		record.BonusMatched, record.PendingReview, record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert winnings record: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert winnings record: %w", err)
	}
	inserted := rowsAffected == 1

	_, err = tx.ExecContext(ctx, `
		UPDATE tickets SET checked = true, is_winner = true WHERE id = $1
	`, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("mark ticket winner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if !inserted {
		// Another invocation already owns this credit.
		log.Printf("[RECONCILE] Duplicate winnings write skipped for ticket %s", ticket.ID)
		return nil, nil
	}

	s.audit.LogWin(record.TicketID, record.PoolID, record.PrizeTier, record.PrizeAmount, record.PendingReview)
	return record, nil
}

// MarkTicketChecked flips a non-winning ticket to checked so later runs
// skip it.
func (s *WinningsService) MarkTicketChecked(ctx context.Context, ticketID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tickets SET checked = true WHERE id = $1
	`, ticketID)
	if err != nil {
		return fmt.Errorf("mark ticket checked: %w", err)
	}
	return nil
}
