package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/luckpool/backend/internal/config"
	"github.com/luckpool/backend/internal/models"
)

// PoolWinSummary describes one pool's outcome for a single reconciliation
// run, after aggregation.
type PoolWinSummary struct {
	Pool           *models.Pool
	GameType       models.GameType
	DrawDate       time.Time
	RunTotal       int64
	PerMemberShare int64
	MemberCount    int
	Tiers          []PrizeTier
	PendingReview  bool
}

// NotifyService fans a pool win out to every member: one notification row,
// one win event on the Redis feed, and one templated email when a provider
// is configured. Each member is an independent unit of work; one failure
// never blocks the rest.
type NotifyService struct {
	db     *sql.DB
	redis  *redis.Client
	config *config.ReconcileConfig
	client *http.Client
}

func NewNotifyService(db *sql.DB, redisClient *redis.Client, cfg *config.ReconcileConfig) *NotifyService {
	return &NotifyService{
		db:     db,
		redis:  redisClient,
		config: cfg,
		client: &http.Client{Timeout: cfg.EmailTimeout},
	}
}

// NotifyPoolWin delivers the win to all members of the pool. Notification
// rows are written independently of email success.
func (s *NotifyService) NotifyPoolWin(ctx context.Context, summary *PoolWinSummary, members []models.User) {
	tierSummary := s.tierSummary(summary.Tiers)
	amountText := s.amountText(summary)

	template, err := s.loadActiveTemplate(ctx, s.config.WinTemplateName)
	if err != nil {
		log.Printf("[NOTIFY] Win template unavailable, skipping emails for pool %s: %v", summary.Pool.ID, err)
		template = nil
	}

	for _, member := range members {
		if err := s.insertNotification(ctx, member, summary, tierSummary, amountText); err != nil {
			log.Printf("[NOTIFY] Failed to write notification for user %s in pool %s: %v", member.ID, summary.Pool.ID, err)
		}

		s.pushWinEvent(ctx, member, summary, tierSummary)

		if template != nil && s.config.EmailAPIURL != "" && member.Email != "" {
			s.sendWinEmail(ctx, member, summary, template, tierSummary, amountText)
		}
	}
}

func (s *NotifyService) insertNotification(ctx context.Context, member models.User, summary *PoolWinSummary, tierSummary, amountText string) error {
	title := fmt.Sprintf("%s won!", summary.Pool.Name)
	body := fmt.Sprintf("Your pool matched %s on the %s drawing for %s. Total winnings: %s. Your share: %s.",
		tierSummary, summary.DrawDate.Format("2006-01-02"), gameLabel(summary.GameType), amountText, s.shareText(summary))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, pool_id, type, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, uuid.NewString(), member.ID, summary.Pool.ID, "pool_win", title, body)
	return err
}

// pushWinEvent mirrors the notification onto the Redis feed consumed by the
// realtime in-app view. Best effort: a dead Redis only costs the live feed.
func (s *NotifyService) pushWinEvent(ctx context.Context, member models.User, summary *PoolWinSummary, tierSummary string) {
	if s.redis == nil {
		return
	}

	event := map[string]any{
		"type":             "pool_win",
		"user_id":          member.ID,
		"pool_id":          summary.Pool.ID,
		"game_type":        summary.GameType,
		"draw_date":        summary.DrawDate.Format("2006-01-02"),
		"tier_summary":     tierSummary,
		"total_winnings":   summary.RunTotal,
		"per_member_share": summary.PerMemberShare,
		"pending_review":   summary.PendingReview,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := s.redis.RPush(ctx, s.config.WinEventQueue, data).Err(); err != nil {
		log.Printf("[NOTIFY] Failed to push win event for user %s: %v", member.ID, err)
	}
}

func (s *NotifyService) sendWinEmail(ctx context.Context, member models.User, summary *PoolWinSummary, template *models.EmailTemplate, tierSummary, amountText string) {
	values := map[string]string{
		"member_name":      member.DisplayName,
		"pool_name":        summary.Pool.Name,
		"game_name":        gameLabel(summary.GameType),
		"total_amount":     amountText,
		"per_member_share": s.shareText(summary),
		"tier_summary":     tierSummary,
		"draw_date":        summary.DrawDate.Format("January 2, 2006"),
	}

	subject := renderTemplate(template.Subject, values)
	body := renderTemplate(template.Body, values)

	messageID, err := s.dispatchEmail(ctx, member.Email, subject, body)

	delivery := models.EmailDelivery{
		ID:        uuid.NewString(),
		UserID:    member.ID,
		PoolID:    summary.Pool.ID,
		Template:  template.Name,
		Recipient: member.Email,
	}
	if err != nil {
		delivery.Status = "failed"
		delivery.ErrorText = err.Error()
		log.Printf("[EMAIL] Dispatch failed for %s (pool %s): %v", member.Email, summary.Pool.ID, err)
	} else {
		delivery.Status = "sent"
		delivery.ProviderMessageID = messageID
		log.Printf("[EMAIL] Sent win email to %s, provider id %s", member.Email, messageID)
	}

	if _, dbErr := s.db.ExecContext(ctx, `
		INSERT INTO email_deliveries (id, user_id, pool_id, template, recipient, status, provider_message_id, error_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, delivery.ID, delivery.UserID, delivery.PoolID, delivery.Template, delivery.Recipient,
		delivery.Status, delivery.ProviderMessageID, delivery.ErrorText); dbErr != nil {
		log.Printf("[EMAIL] Failed to log delivery for %s: %v", member.Email, dbErr)
	}
}

// dispatchEmail posts one message to the configured provider API and returns
// the provider's message id.
func (s *NotifyService) dispatchEmail(ctx context.Context, recipient, subject, body string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"from":    s.config.EmailFromAddress,
		"to":      recipient,
		"subject": subject,
		"html":    body,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.EmailAPIURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.EmailAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	return result.ID, nil
}

// loadActiveTemplate fetches the active version of a named template.
func (s *NotifyService) loadActiveTemplate(ctx context.Context, name string) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, version, subject, body, active
		FROM email_templates
		WHERE name = $1 AND active = true
		ORDER BY version DESC
		LIMIT 1
	`, name).Scan(&t.ID, &t.Name, &t.Version, &t.Subject, &t.Body, &t.Active)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// renderTemplate substitutes {{name}} placeholders. Unknown placeholders are
// left in place so broken templates are visible rather than silently blank.
func renderTemplate(text string, values map[string]string) string {
	for key, value := range values {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}
	return text
}

func (s *NotifyService) tierSummary(tiers []PrizeTier) string {
	labels := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		labels = append(labels, TierLabel(tier))
	}
	return strings.Join(labels, ", ")
}

func (s *NotifyService) amountText(summary *PoolWinSummary) string {
	if summary.PendingReview {
		return "pending review"
	}
	return formatCents(summary.RunTotal)
}

func (s *NotifyService) shareText(summary *PoolWinSummary) string {
	if summary.PendingReview {
		return "pending review"
	}
	return formatCents(summary.PerMemberShare)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

func gameLabel(game models.GameType) string {
	switch game {
	case models.GamePowerball:
		return "Powerball"
	case models.GameMegaMillions:
		return "Mega Millions"
	}
	return string(game)
}
