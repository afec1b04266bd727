package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/walletfc/backend/internal/ledger"
	"github.com/walletfc/backend/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// UserLookup resolves the user a token was issued to.
type UserLookup interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator turns a bearer token into the request identity.
type Authenticator struct {
	users UserLookup
	redis *redis.Client
}

func NewAuthenticator(users UserLookup, redisClient *redis.Client) *Authenticator {
	return &Authenticator{users: users, redis: redisClient}
}

// BlacklistKey is the Redis key marking a logged-out token.
func BlacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token, ok := BearerToken(r)
		if !ok {
			writeError(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		if a.redis != nil {
			revoked, err := a.redis.Exists(r.Context(), BlacklistKey(token)).Result()
			if err != nil {
				log.Printf("[AUTH] Blacklist check failed: %v", err)
			} else if revoked > 0 {
				writeError(w, "Token has been revoked", http.StatusUnauthorized)
				return
			}
		}

		userID, err := ValidateToken(token)
		if err != nil {
			writeError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := a.users.UserByID(r.Context(), userID)
		if errors.Is(err, ledger.ErrUserNotFound) {
			writeError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.Printf("[AUTH] User lookup failed for %s: %v", userID, err)
			writeError(w, "An Internal Error Occurred", http.StatusInternalServerError)
			return
		}
		if user.IsBlocked {
			writeError(w, "Account is blocked", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user.Identity())))
	})
}

// RequireAdmin rejects requests whose identity is not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !id.IsAdmin() {
			writeError(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok && id.ID != ""
}

// ErrMissingSigningKey means jwt.secret_key is empty; no token is issued or accepted.
var ErrMissingSigningKey = errors.New("jwt secret key is not configured")

// SigningKey returns the HS256 key shared by token issuance and validation.
func SigningKey() ([]byte, error) {
	secret := viper.GetString("jwt.secret_key")
	if secret == "" {
		return nil, ErrMissingSigningKey
	}
	return []byte(secret), nil
}

// ValidateToken checks an HS256 token signed with jwt.secret_key and returns its user_id claim.
func ValidateToken(tokenString string) (string, error) {
	key, err := SigningKey()
	if err != nil {
		return "", err
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("token has no user_id claim")
	}
	return userID, nil
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
