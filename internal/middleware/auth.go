package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

var (
	authRedis *redis.Client
	authDB    *sql.DB
)

// InitAuthMiddleware wires the token blacklist and the role lookup.
func InitAuthMiddleware(redisClient *redis.Client, db *sql.DB) {
	authRedis = redisClient
	authDB = db
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from Authorization header
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

		token := parts[1]

		if authRedis != nil {
			// Tokens blacklisted by logout stay invalid until expiry.
			exists, err := authRedis.Exists(r.Context(), fmt.Sprintf("blacklist:%s", token)).Result()
			if err == nil && exists > 0 {
				http.Error(w, "Token has been revoked", http.StatusUnauthorized)
				return
			}
		}

		userID, err := validateToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin-only routes. The role is read from the users
// table (cached briefly in Redis), not from the token, so a demoted admin
// loses access without waiting for token expiry.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value("userID").(string)
		if !ok || userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		role, err := lookupRole(r.Context(), userID)
		if err != nil {
			log.Printf("[AUTH] Role lookup failed for user %s: %v", userID, err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if role != "admin" {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func lookupRole(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf("role:%s", userID)

	if authRedis != nil {
		if role, err := authRedis.Get(ctx, key).Result(); err == nil {
			return role, nil
		}
	}

	var role string
	if err := authDB.QueryRow("SELECT role FROM users WHERE id = $1", userID).Scan(&role); err != nil {
		return "", err
	}

	if authRedis != nil {
		if err := authRedis.Set(ctx, key, role, 5*time.Minute).Err(); err != nil {
			log.Printf("[AUTH] Failed to cache role for user %s: %v", userID, err)
		}
	}

	return role, nil
}

func validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	})

	if err != nil || !token.Valid {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", err
	}

	userID := claims["user_id"]
	return fmt.Sprintf("%v", userID), nil
}
