package audit

import (
	"encoding/json"
	"log"
	"time"
)

type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	TicketID  string    `json:"ticket_id"`
	PoolID    string    `json:"pool_id"`
	Amount    *int64    `json:"amount"`
	Status    string    `json:"status"`
	Details   any       `json:"details"`
}

type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

// LogWin records a winnings credit. A nil amount marks a jackpot win whose
// payout is not yet known and needs manual review.
func (a *AuditLogger) LogWin(ticketID, poolID, tier string, amount *int64, pendingReview bool) {
	status := "CREDITED"
	if pendingReview {
		status = "PENDING_REVIEW"
	}
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "WIN",
		TicketID:  ticketID,
		PoolID:    poolID,
		Amount:    amount,
		Status:    status,
		Details: map[string]any{
			"prize_tier":     tier,
			"pending_review": pendingReview,
		},
	}
	a.log(event)
}

// LogShare records the per-member split applied to a pool after a run.
func (a *AuditLogger) LogShare(poolID string, runTotal, perMemberShare int64, memberCount int) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "POOL_SHARE",
		PoolID:    poolID,
		Amount:    &runTotal,
		Status:    "SUCCESS",
		Details: map[string]any{
			"per_member_share": perMemberShare,
			"member_count":     memberCount,
		},
	}
	a.log(event)
}

func (a *AuditLogger) LogError(ticketID, poolID string, err error) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "ERROR",
		TicketID:  ticketID,
		PoolID:    poolID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	}
	a.log(event)
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
