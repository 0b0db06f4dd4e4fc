package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/luckpool/backend/internal/audit"
	"github.com/luckpool/backend/internal/models"
)

// ErrEmptyPool is returned when a winning pool has no members to split
// between. It should not happen (pools always include their owner) but must
// never cause a division by zero.
var ErrEmptyPool = errors.New("pool has no members")

// PoolService rolls one run's fresh winnings up into per-member shares and
// the pool's running total.
type PoolService struct {
	db    *sql.DB
	audit *audit.AuditLogger
}

func NewPoolService(db *sql.DB) *PoolService {
	return &PoolService{
		db:    db,
		audit: audit.NewAuditLogger(),
	}
}

// GetPool loads a pool by ID.
func (s *PoolService) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	var p models.Pool
	var gameType string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, game_type, total_winnings, created_at FROM pools WHERE id = $1
	`, poolID).Scan(&p.ID, &p.Name, &gameType, &p.TotalWinnings, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	p.GameType = models.GameType(gameType)
	return &p, nil
}

// Members returns the pool's current membership with the fields the
// notifier needs.
func (s *PoolService) Members(ctx context.Context, poolID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.display_name
		FROM pool_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.pool_id = $1
		ORDER BY pm.joined_at
	`, poolID)
	if err != nil {
		return nil, fmt.Errorf("list pool members: %w", err)
	}
	defer rows.Close()

	var members []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scan pool member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// RunAggregate is the result of splitting one pool's winnings for a run.
type RunAggregate struct {
	PoolID         string
	RunTotal       int64
	PerMemberShare int64
	MemberCount    int
	PendingReview  bool
}

// AggregateRun applies the flat per-member split to the winnings records
// created for this pool in the current run and increments the pool's running
// total. The total is only ever incremented, never recomputed, so each
// winnings record is attributed exactly once.
//
// runTotal excludes pending-review wins whose amount is not yet known;
// pendingReview carries that flag through to the notifier.
func (s *PoolService) AggregateRun(ctx context.Context, poolID string, winningIDs []string, runTotal int64, pendingReview bool) (*RunAggregate, error) {
	var memberCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pool_members WHERE pool_id = $1
	`, poolID).Scan(&memberCount)
	if err != nil {
		return nil, fmt.Errorf("count pool members: %w", err)
	}
	if memberCount == 0 {
		return nil, ErrEmptyPool
	}

	// Flat split by live member count; remainder cents stay in the pool total.
	perMemberShare := runTotal / int64(memberCount)

	_, err = s.db.ExecContext(ctx, `
		UPDATE winnings
		SET per_member_share = $1, contributing_members = $2
		WHERE id = ANY($3)
	`, perMemberShare, memberCount, pq.Array(winningIDs))
	if err != nil {
		return nil, fmt.Errorf("stamp member shares: %w", err)
	}

	// Atomic increment: safe under concurrent runs, no read-modify-write.
	_, err = s.db.ExecContext(ctx, `
		UPDATE pools
		SET total_winnings = total_winnings + $1, updated_at = NOW()
		WHERE id = $2
	`, runTotal, poolID)
	if err != nil {
		return nil, fmt.Errorf("increment pool total: %w", err)
	}

	s.audit.LogShare(poolID, runTotal, perMemberShare, memberCount)

	return &RunAggregate{
		PoolID:         poolID,
		RunTotal:       runTotal,
		PerMemberShare: perMemberShare,
		MemberCount:    memberCount,
		PendingReview:  pendingReview,
	}, nil
}
