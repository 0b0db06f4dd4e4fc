package middleware

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/luckpool/backend/internal/models"
	"github.com/spf13/viper"
)

// AuthMiddleware validates a bearer token and stores the user ID in the
// request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userID, err := validateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ReconcileAuth guards the reconciliation trigger. The caller must present
// either the shared automation credential (X-Cron-Secret header or bearer
// token) or a bearer token that resolves to a user with the admin role.
// Anything else is rejected before any drawing or ticket data is read.
func ReconcileAuth(db *sql.DB, cronSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cronSecret != "" {
				if header := r.Header.Get("X-Cron-Secret"); header != "" {
					if subtle.ConstantTimeCompare([]byte(header), []byte(cronSecret)) == 1 {
						ctx := context.WithValue(r.Context(), "userID", "cron")
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
					log.Printf("[AUTH] Reconcile trigger rejected: bad cron secret from %s", r.RemoteAddr)
					http.Error(w, "Invalid credentials", http.StatusUnauthorized)
					return
				}
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			// Automation credential may also arrive as a bearer token.
			if cronSecret != "" && subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cronSecret)) == 1 {
				ctx := context.WithValue(r.Context(), "userID", "cron")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			userID, err := validateToken(parts[1])
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			var role string
			err = db.QueryRow(`SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
			if err != nil {
				log.Printf("[AUTH] Role lookup failed for user %s: %v", userID, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if role != models.RoleAdmin {
				log.Printf("[AUTH] Reconcile trigger rejected: user %s is not admin", userID)
				http.Error(w, "Admin role required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	})

	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims")
	}

	userID := claims["user_id"]
	if userID == nil {
		return "", fmt.Errorf("missing user_id claim")
	}
	return fmt.Sprintf("%v", userID), nil
}
