package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/luckpool/backend/internal/audit"
	"github.com/luckpool/backend/internal/config"
	"github.com/luckpool/backend/internal/models"
)

// ErrRateLimited is returned when a caller exceeds the trigger budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// ReconcileRequest selects what to reconcile. Both fields are optional:
// no game means all supported games, no date means the most recent drawing
// on file per game.
type ReconcileRequest struct {
	GameType string `json:"game_type" validate:"omitempty,oneof=powerball mega_millions"`
	DrawDate string `json:"draw_date" validate:"omitempty,datetime=2006-01-02"`
}

// GameResult is the per-game section of a run report.
type GameResult struct {
	GameType       models.GameType `json:"game_type"`
	DrawDate       string          `json:"draw_date"`
	TicketsChecked int             `json:"tickets_checked"`
	WinsFound      int             `json:"wins_found"`
	PrizeTiers     map[string]int  `json:"prize_tiers"`
	JackpotAmount  *int64          `json:"jackpot_amount"`
	Success        bool            `json:"success"`
	Error          string          `json:"error,omitempty"`
}

// RunReport is the structured result of one reconciliation run. Success is
// true when at least one requested game was processed; partial success is
// reported, not treated as total failure.
type RunReport struct {
	RunID        string       `json:"run_id"`
	Success      bool         `json:"success"`
	CheckedCount int          `json:"checked_count"`
	WinsFound    int          `json:"wins_found"`
	Results      []GameResult `json:"results"`
	DurationMs   int64        `json:"duration_ms"`
	Error        string       `json:"error,omitempty"`
}

// ReconcileService drives one reconciliation run: resolve the drawing per
// game, evaluate unchecked tickets, write the winnings ledger, aggregate
// per pool, and fan notifications out. All state lives in the database; the
// service itself is stateless between invocations.
type ReconcileService struct {
	db       *sql.DB
	redis    *redis.Client
	config   *config.ReconcileConfig
	winnings *WinningsService
	pools    *PoolService
	notify   *NotifyService
	audit    *audit.AuditLogger
}

func NewReconcileService(db *sql.DB, redisClient *redis.Client, cfg *config.ReconcileConfig) *ReconcileService {
	return &ReconcileService{
		db:       db,
		redis:    redisClient,
		config:   cfg,
		winnings: NewWinningsService(db),
		pools:    NewPoolService(db),
		notify:   NewNotifyService(db, redisClient, cfg),
		audit:    audit.NewAuditLogger(),
	}
}

// Run executes one reconciliation pass. It never returns an error: every
// failure mode short of a panic is folded into the report, and a panic is
// recovered into an overall-failure report. Already-committed ledger writes
// are never rolled back; a killed run resumes safely on the next pass.
func (s *ReconcileService) Run(ctx context.Context, triggeredBy string, req ReconcileRequest) (report *RunReport) {
	start := time.Now()
	report = &RunReport{RunID: uuid.NewString()}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[RECONCILE] Run %s panicked: %v", report.RunID, r)
			report.Success = false
			report.Error = fmt.Sprintf("unexpected failure: %v", r)
		}
		report.DurationMs = time.Since(start).Milliseconds()
		s.persistRun(triggeredBy, report)
	}()

	games := models.SupportedGames
	if req.GameType != "" {
		games = []models.GameType{models.GameType(req.GameType)}
	}

	log.Printf("[RECONCILE] Run %s started by %s, games: %v, date: %q", report.RunID, triggeredBy, games, req.DrawDate)

	for _, game := range games {
		result := s.runGame(ctx, game, req.DrawDate)
		report.Results = append(report.Results, result)
		report.CheckedCount += result.TicketsChecked
		report.WinsFound += result.WinsFound
		if result.Success {
			report.Success = true
		}
	}

	log.Printf("[RECONCILE] Run %s finished: success=%v, checked=%d, wins=%d",
		report.RunID, report.Success, report.CheckedCount, report.WinsFound)
	return report
}

// poolRunState accumulates the winnings created for one pool during the
// current run.
type poolRunState struct {
	winningIDs    []string
	runTotal      int64
	tiers         []PrizeTier
	pendingReview bool
}

func (s *ReconcileService) runGame(ctx context.Context, game models.GameType, drawDate string) GameResult {
	result := GameResult{
		GameType:   game,
		PrizeTiers: map[string]int{},
	}

	drawing, err := s.fetchDrawing(ctx, game, drawDate)
	if err != nil {
		log.Printf("[RECONCILE] No drawing for %s (%q): %v", game, drawDate, err)
		result.Error = fmt.Sprintf("no drawing on file for %s", game)
		return result
	}
	result.DrawDate = drawing.DrawDate.Format("2006-01-02")
	result.JackpotAmount = drawing.JackpotAmount

	tickets, err := s.fetchUncheckedTickets(ctx, game, drawing.DrawDate)
	if err != nil {
		log.Printf("[RECONCILE] Failed to load tickets for %s %s: %v", game, result.DrawDate, err)
		result.Error = "failed to load tickets"
		return result
	}

	byPool := map[string]*poolRunState{}

	for i := range tickets {
		ticket := &tickets[i]
		match := EvaluateTicket(ticket.Numbers, ticket.BonusNumber, drawing)

		if !match.IsWinner {
			if err := s.winnings.MarkTicketChecked(ctx, ticket.ID); err != nil {
				// Ticket stays unchecked and is retried on the next run.
				log.Printf("[RECONCILE] Failed to mark ticket %s checked: %v", ticket.ID, err)
				s.audit.LogError(ticket.ID, ticket.PoolID, err)
				continue
			}
			result.TicketsChecked++
			continue
		}

		record, err := s.winnings.RecordWin(ctx, ticket, match, drawing)
		if err != nil {
			log.Printf("[RECONCILE] Failed to record win for ticket %s: %v", ticket.ID, err)
			s.audit.LogError(ticket.ID, ticket.PoolID, err)
			continue
		}
		result.TicketsChecked++

		if record == nil {
			// Credited by an earlier or concurrent run; nothing new to attribute.
			continue
		}

		result.WinsFound++
		result.PrizeTiers[record.PrizeTier]++

		state := byPool[ticket.PoolID]
		if state == nil {
			state = &poolRunState{}
			byPool[ticket.PoolID] = state
		}
		state.winningIDs = append(state.winningIDs, record.ID)
		state.tiers = append(state.tiers, match.Tier)
		if record.PrizeAmount != nil {
			state.runTotal += *record.PrizeAmount
		}
		if record.PendingReview {
			state.pendingReview = true
		}
	}

	for poolID, state := range byPool {
		s.settlePool(ctx, poolID, game, drawing, state)
	}

	result.Success = true
	return result
}

// settlePool aggregates one pool's fresh winnings and notifies its members.
// Aggregation failure does not block notification; the notifier proceeds
// with the best available data.
func (s *ReconcileService) settlePool(ctx context.Context, poolID string, game models.GameType, drawing *models.Drawing, state *poolRunState) {
	pool, err := s.pools.GetPool(ctx, poolID)
	if err != nil {
		log.Printf("[RECONCILE] Failed to load pool %s: %v", poolID, err)
		return
	}

	members, err := s.pools.Members(ctx, poolID)
	if err != nil {
		log.Printf("[RECONCILE] Failed to load members for pool %s: %v", poolID, err)
		return
	}
	if len(members) == 0 {
		log.Printf("[RECONCILE] Pool %s has no members, skipping aggregation", poolID)
		return
	}

	summary := &PoolWinSummary{
		Pool:          pool,
		GameType:      game,
		DrawDate:      drawing.DrawDate,
		RunTotal:      state.runTotal,
		MemberCount:   len(members),
		Tiers:         state.tiers,
		PendingReview: state.pendingReview,
	}

	agg, err := s.pools.AggregateRun(ctx, poolID, state.winningIDs, state.runTotal, state.pendingReview)
	if err != nil {
		log.Printf("[RECONCILE] Aggregation failed for pool %s: %v", poolID, err)
		s.audit.LogError("", poolID, err)
		// Best-available split for the notification text.
		summary.PerMemberShare = state.runTotal / int64(len(members))
	} else {
		summary.PerMemberShare = agg.PerMemberShare
		summary.MemberCount = agg.MemberCount
	}

	s.notify.NotifyPoolWin(ctx, summary, members)
}

// fetchDrawing resolves the drawing to reconcile: an explicit date when
// requested, otherwise the most recent drawing on file for the game.
func (s *ReconcileService) fetchDrawing(ctx context.Context, game models.GameType, drawDate string) (*models.Drawing, error) {
	var (
		d       models.Drawing
		numbers pq.Int64Array
	)

	var row *sql.Row
	if drawDate != "" {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, game_type, draw_date, winning_numbers, bonus_number, multiplier, jackpot_amount, created_at
			FROM drawings
			WHERE game_type = $1 AND draw_date = $2
		`, string(game), drawDate)
	} else {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, game_type, draw_date, winning_numbers, bonus_number, multiplier, jackpot_amount, created_at
			FROM drawings
			WHERE game_type = $1 AND draw_date <= CURRENT_DATE
			ORDER BY draw_date DESC
			LIMIT 1
		`, string(game))
	}

	var gameType string
	err := row.Scan(&d.ID, &gameType, &d.DrawDate, &numbers, &d.BonusNumber, &d.Multiplier, &d.JackpotAmount, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.GameType = models.GameType(gameType)
	d.WinningNumbers = numbers
	return &d, nil
}

// fetchUncheckedTickets selects the tickets still awaiting reconciliation
// for a (game, draw date) pair. Re-running a fully checked batch selects
// nothing and is a safe no-op.
func (s *ReconcileService) fetchUncheckedTickets(ctx context.Context, game models.GameType, drawDate time.Time) ([]models.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pool_id, user_id, game_type, numbers, bonus_number, draw_date, checked, is_winner, created_at
		FROM tickets
		WHERE game_type = $1 AND draw_date = $2 AND checked = false
		ORDER BY created_at
	`, string(game), drawDate)
	if err != nil {
		return nil, fmt.Errorf("select unchecked tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var (
			t        models.Ticket
			gameType string
			numbers  pq.Int64Array
		)
		if err := rows.Scan(&t.ID, &t.PoolID, &t.UserID, &gameType, &numbers, &t.BonusNumber,
			&t.DrawDate, &t.Checked, &t.IsWinner, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.GameType = models.GameType(gameType)
		t.Numbers = numbers
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// persistRun stores the run report for operator forensics. Failures here are
// logged only; the caller still gets its report.
func (s *ReconcileService) persistRun(triggeredBy string, report *RunReport) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO reconcile_runs (id, triggered_by, success, checked_count, wins_found, duration_ms, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, report.RunID, triggeredBy, report.Success, report.CheckedCount, report.WinsFound, report.DurationMs, data)
	if err != nil {
		log.Printf("[RECONCILE] Failed to persist run %s: %v", report.RunID, err)
	}
}

// LatestRuns returns the most recent persisted run reports.
func (s *ReconcileService) LatestRuns(ctx context.Context, limit int) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report FROM reconcile_runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer rows.Close()

	var reports []json.RawMessage
	for rows.Next() {
		var report json.RawMessage
		if err := rows.Scan(&report); err != nil {
			return nil, fmt.Errorf("scan run report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// CheckRateLimit enforces the per-caller trigger budget through Redis.
// Best effort: with Redis down the trigger is allowed.
func (s *ReconcileService) CheckRateLimit(ctx context.Context, caller string) error {
	if s.redis == nil {
		return nil
	}

	key := fmt.Sprintf("reconcile:ratelimit:%s", caller)
	count, err := s.redis.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return nil
	}

	if count >= s.config.MaxTriggersPerCaller {
		return ErrRateLimited
	}

	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.config.RateLimitWindow)
	pipe.Exec(ctx)
	return nil
}
