package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/luckpool/backend/internal/config"
	"github.com/luckpool/backend/internal/services"
	"github.com/stretchr/testify/assert"
)

func newTestHandler(t *testing.T) (*ReconcileHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.ReconcileConfig{
		MaxTriggersPerCaller: 10,
		RateLimitWindow:      time.Hour,
		EmailTimeout:         time.Second,
	}
	return NewReconcileHandler(services.NewReconcileService(db, nil, cfg)), mock
}

func TestReconcileHandler_Trigger(t *testing.T) {
	t.Run("missing caller identity is unauthorized", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest("POST", "/api/v1/reconcile", nil)
		rec := httptest.NewRecorder()

		handler.Trigger(rec, req)
		assert.Equal(t, 401, rec.Code)
	})

	t.Run("unsupported game is rejected", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest("POST", "/api/v1/reconcile",
			strings.NewReader(`{"game_type":"euromillions"}`))
		req = req.WithContext(context.WithValue(req.Context(), "userID", "cron"))
		rec := httptest.NewRecorder()

		handler.Trigger(rec, req)
		assert.Equal(t, 400, rec.Code)
	})

	t.Run("malformed draw date is rejected", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest("POST", "/api/v1/reconcile",
			strings.NewReader(`{"draw_date":"08/29/2026"}`))
		req = req.WithContext(context.WithValue(req.Context(), "userID", "cron"))
		rec := httptest.NewRecorder()

		handler.Trigger(rec, req)
		assert.Equal(t, 400, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest("POST", "/api/v1/reconcile",
			strings.NewReader(`{"force":true}`))
		req = req.WithContext(context.WithValue(req.Context(), "userID", "cron"))
		rec := httptest.NewRecorder()

		handler.Trigger(rec, req)
		assert.Equal(t, 400, rec.Code)
	})

	t.Run("empty body runs all games", func(t *testing.T) {
		handler, mock := newTestHandler(t)

		// Neither game has a drawing on file; the run is an overall failure.
		mock.ExpectQuery("SELECT id, game_type, draw_date, winning_numbers").
			WillReturnError(assert.AnError)
		mock.ExpectQuery("SELECT id, game_type, draw_date, winning_numbers").
			WillReturnError(assert.AnError)
		mock.ExpectExec("INSERT INTO reconcile_runs").
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest("POST", "/api/v1/reconcile", nil)
		req = req.WithContext(context.WithValue(req.Context(), "userID", "cron"))
		rec := httptest.NewRecorder()

		handler.Trigger(rec, req)
		assert.Equal(t, 500, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconcileHandler_LatestRuns(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT report FROM reconcile_runs").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"report"}).
			AddRow([]byte(`{"success":true}`)))

	req := httptest.NewRequest("GET", "/api/v1/reconcile/runs/latest", nil)
	req = req.WithContext(context.WithValue(req.Context(), "userID", "admin-1"))
	rec := httptest.NewRecorder()

	handler.LatestRuns(rec, req)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
