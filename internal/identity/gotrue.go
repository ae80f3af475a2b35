package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"account-service/internal/domain"
	"account-service/internal/xerrors"
)

// GoTrue's verify endpoint takes type "email" for email OTPs; the library
// has no named constant for it.
const verificationTypeEmail = types.VerificationType("email")

// GoTrueProvider delegates OTP issuance and verification to a GoTrue
// (Supabase Auth) instance using the service-role key.
type GoTrueProvider struct {
	client gotrue.Client
}

func NewGoTrueProvider(projectURL, serviceKey string) *GoTrueProvider {
	base := strings.TrimSuffix(projectURL, "/") + "/auth/v1"
	client := gotrue.New("", serviceKey).WithCustomGoTrueURL(base)
	return &GoTrueProvider{client: client}
}

func (p *GoTrueProvider) SendOTP(ctx context.Context, email string) error {
	err := p.client.OTP(types.OTPRequest{
		Email:      email,
		CreateUser: true,
	})
	if err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (p *GoTrueProvider) VerifyOTP(ctx context.Context, email, code string) (*domain.Identity, *Session, error) {
	resp, err := p.client.VerifyForUser(types.VerifyForUserRequest{
		Type:  verificationTypeEmail,
		Email: email,
		Token: code,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidOTP, err)
	}

	ident := &domain.Identity{
		UserID: resp.User.ID.String(),
		Email:  resp.User.Email,
	}
	sess := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}
	return ident, sess, nil
}
