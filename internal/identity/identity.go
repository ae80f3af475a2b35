package identity

import (
	"context"

	"account-service/internal/domain"
)

// Session is the provider-issued session returned after OTP verification.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Provider issues and verifies email one-time passcodes. The whole OTP flow
// lives with the provider; this service only passes calls through.
type Provider interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*domain.Identity, *Session, error)
}
