package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func signTestToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(viper.GetString("jwt.secret_key")))
	assert.NoError(t, err)
	return signed
}

func TestReconcileAuth(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret")

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value("userID").(string)
		w.WriteHeader(http.StatusOK)
	})

	handler := ReconcileAuth(db, "cron-secret")(next)

	t.Run("valid cron secret header passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/reconcile", nil)
		req.Header.Set("X-Cron-Secret", "cron-secret")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "cron", gotUserID)
	})

	t.Run("cron secret as bearer token passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/reconcile", nil)
		req.Header.Set("Authorization", "Bearer cron-secret")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "cron", gotUserID)
	})

	t.Run("wrong cron secret is rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/reconcile", nil)
		req.Header.Set("X-Cron-Secret", "guess")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no credentials is rejected before any data access", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/reconcile", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin token passes", func(t *testing.T) {
		mock.ExpectQuery("SELECT role FROM users WHERE id = \\$1").
			WithArgs("admin-1").
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

		req := httptest.NewRequest("POST", "/reconcile", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "admin-1"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin-1", gotUserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non admin token gets forbidden", func(t *testing.T) {
		mock.ExpectQuery("SELECT role FROM users WHERE id = \\$1").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("member"))

		req := httptest.NewRequest("POST", "/reconcile", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/reconcile", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(next)

	t.Run("valid bearer token passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
