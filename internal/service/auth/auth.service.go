package authservice

import (
	"context"
	"log"
	"strings"
	"time"

	"account-service/internal/domain"
	"account-service/internal/identity"
	"account-service/internal/session"
	"account-service/internal/xerrors"
)

const defaultSessionTTL = time.Hour

// SessionStore persists the token → identity read model for the lifetime
// of a session.
type SessionStore interface {
	Save(ctx context.Context, token string, ident domain.Identity, ttl time.Duration) error
	Get(ctx context.Context, token string) (*session.Record, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService passes the OTP flow through to the identity provider and
// keeps the resulting session readable by the rest of the service.
type AuthService struct {
	provider identity.Provider
	sessions SessionStore
}

func NewAuthService(provider identity.Provider, sessions SessionStore) *AuthService {
	return &AuthService{provider: provider, sessions: sessions}
}

// SendOTP asks the provider to email a one-time passcode. No retries: a
// failed provider call is a failed operation.
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return xerrors.Validation("A valid email is required")
	}
	if err := s.provider.SendOTP(ctx, email); err != nil {
		return xerrors.Dependency("send otp", err)
	}
	return nil
}

// VerifyOTP exchanges the code for a provider session and records it so
// bearer requests can be resolved without another provider round trip.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.Identity, *identity.Session, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, nil, xerrors.Validation("Email and code are required")
	}

	ident, sess, err := s.provider.VerifyOTP(ctx, email, code)
	if err != nil {
		return nil, nil, err
	}

	ttl := defaultSessionTTL
	if sess.ExpiresIn > 0 {
		ttl = time.Duration(sess.ExpiresIn) * time.Second
	}
	if err := s.sessions.Save(ctx, sess.AccessToken, *ident, ttl); err != nil {
		// The provider session stands on its own; losing the read model
		// only costs later lookups, so log and continue.
		log.Printf("[WARN] could not persist session for user=%s: %v", ident.UserID, err)
	}

	return ident, sess, nil
}

// Resolve maps a bearer token to the identity it was issued for.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	rec, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{UserID: rec.UserID, Email: rec.Email}, nil
}

// Logout revokes the stored session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}
