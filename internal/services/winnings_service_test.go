package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/luckpool/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWinningsService_RecordWin(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewWinningsService(db)

	drawDate := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	drawing := &models.Drawing{
		GameType:       models.GamePowerball,
		DrawDate:       drawDate,
		WinningNumbers: []int64{12, 24, 31, 48, 59},
		BonusNumber:    15,
	}
	ticket := &models.Ticket{
		ID:       "ticket-1",
		PoolID:   "pool-1",
		UserID:   "user-1",
		GameType: models.GamePowerball,
		DrawDate: drawDate,
	}

	t.Run("fresh win is inserted and ticket marked", func(t *testing.T) {
		match := MatchResult{MainMatches: 4, BonusMatch: false, Tier: TierMatch4, IsWinner: true}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO winnings").
			WithArgs(sqlmock.AnyArg(), "ticket-1", "pool-1", "user-1", "powerball",
				drawDate, "match_4", int64(10_000), 4, false, false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE tickets SET checked = true, is_winner = true").
			WithArgs("ticket-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		record, err := service.RecordWin(context.Background(), ticket, match, drawing)
		assert.NoError(t, err)
		assert.NotNil(t, record)
		assert.Equal(t, "match_4", record.PrizeTier)
		assert.Equal(t, int64(10_000), *record.PrizeAmount)
		assert.False(t, record.PendingReview)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replayed win returns nil but still marks the ticket", func(t *testing.T) {
		match := MatchResult{MainMatches: 4, BonusMatch: false, Tier: TierMatch4, IsWinner: true}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO winnings").
			WillReturnResult(sqlmock.NewResult(0, 0)) // conflict, nothing inserted
		mock.ExpectExec("UPDATE tickets SET checked = true, is_winner = true").
			WithArgs("ticket-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		record, err := service.RecordWin(context.Background(), ticket, match, drawing)
		assert.NoError(t, err)
		assert.Nil(t, record)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("jackpot with unknown amount is pending review", func(t *testing.T) {
		match := MatchResult{MainMatches: 5, BonusMatch: true, Tier: TierJackpot, IsWinner: true}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO winnings").
			WithArgs(sqlmock.AnyArg(), "ticket-1", "pool-1", "user-1", "powerball",
				drawDate, "jackpot", nil, 5, true, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE tickets SET checked = true, is_winner = true").
			WithArgs("ticket-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		record, err := service.RecordWin(context.Background(), ticket, match, drawing)
		assert.NoError(t, err)
		assert.NotNil(t, record)
		assert.Nil(t, record.PrizeAmount)
		assert.True(t, record.PendingReview)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		match := MatchResult{MainMatches: 3, BonusMatch: false, Tier: TierMatch3, IsWinner: true}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO winnings").
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		record, err := service.RecordWin(context.Background(), ticket, match, drawing)
		assert.Error(t, err)
		assert.Nil(t, record)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWinningsService_MarkTicketChecked(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewWinningsService(db)

	mock.ExpectExec("UPDATE tickets SET checked = true WHERE id = \\$1").
		WithArgs("ticket-9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, service.MarkTicketChecked(context.Background(), "ticket-9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
