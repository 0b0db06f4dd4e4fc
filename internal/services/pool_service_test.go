package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPoolService_AggregateRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewPoolService(db)

	t.Run("flat split with remainder kept in the pool", func(t *testing.T) {
		winningIDs := []string{"win-1", "win-2"}
		runTotal := int64(1_000) // $10.00 across 3 members

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pool_members WHERE pool_id = \\$1").
			WithArgs("pool-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectExec("UPDATE winnings").
			WithArgs(int64(333), 3, pq.Array(winningIDs)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("UPDATE pools").
			WithArgs(runTotal, "pool-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		agg, err := service.AggregateRun(context.Background(), "pool-1", winningIDs, runTotal, false)
		assert.NoError(t, err)
		assert.Equal(t, int64(333), agg.PerMemberShare)
		assert.Equal(t, 3, agg.MemberCount)
		assert.Equal(t, runTotal, agg.RunTotal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty pool never divides by zero", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pool_members WHERE pool_id = \\$1").
			WithArgs("pool-2").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		agg, err := service.AggregateRun(context.Background(), "pool-2", []string{"win-3"}, 700, false)
		assert.ErrorIs(t, err, ErrEmptyPool)
		assert.Nil(t, agg)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pending review flag is carried through", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pool_members WHERE pool_id = \\$1").
			WithArgs("pool-3").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("UPDATE winnings").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE pools").
			WillReturnResult(sqlmock.NewResult(0, 1))

		agg, err := service.AggregateRun(context.Background(), "pool-3", []string{"win-4"}, 0, true)
		assert.NoError(t, err)
		assert.True(t, agg.PendingReview)
		assert.Equal(t, int64(0), agg.PerMemberShare)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPoolService_Members(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewPoolService(db)

	mock.ExpectQuery("SELECT u.id, u.email, u.display_name").
		WithArgs("pool-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name"}).
			AddRow("user-1", "ana@example.com", "Ana").
			AddRow("user-2", "bo@example.com", "Bo"))

	members, err := service.Members(context.Background(), "pool-1")
	assert.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, "ana@example.com", members[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolService_GetPool(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewPoolService(db)

	mock.ExpectQuery("SELECT id, name, game_type, total_winnings, created_at FROM pools").
		WithArgs("pool-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "game_type", "total_winnings", "created_at"}).
			AddRow("pool-1", "Office Pool", "powerball", int64(120_000), time.Now()))

	pool, err := service.GetPool(context.Background(), "pool-1")
	assert.NoError(t, err)
	assert.Equal(t, "Office Pool", pool.Name)
	assert.Equal(t, int64(120_000), pool.TotalWinnings)
}
