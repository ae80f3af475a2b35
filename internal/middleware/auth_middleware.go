package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"account-service/internal/response"
)

// AuthMiddleware verifies identity-provider access tokens. GoTrue signs
// session tokens with HS256 and the project JWT secret; the subject claim
// is the user uuid.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(jwtSecret)}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Require rejects requests without a valid bearer token and places the
// user id, email and raw token on the request context.
func (am *AuthMiddleware) Require() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearer(r)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Missing auth token")
				return
			}

			claims := &sessionClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return am.secret, nil
			})
			if err != nil || !parsed.Valid {
				log.Printf("[WARN] token verification failed: %v", err)
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			userID := claims.Subject
			if userID == "" {
				response.Error(w, http.StatusUnauthorized, "Invalid token subject")
				return
			}

			next.ServeHTTP(w, setContextValues(r, userID, claims.Email, token))
		})
	}
}

func extractBearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("malformed authorization header")
	}
	return parts[1], nil
}
