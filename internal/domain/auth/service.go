package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"ems/internal/platform/apperr"
)

type CredentialStore interface {
	FindActiveByEmail(ctx context.Context, email string) (Credential, error)
}

type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Service struct {
	store  CredentialStore
	tokens TokenConfig
}

func NewService(store CredentialStore, tokens TokenConfig) *Service {
	return &Service{store: store, tokens: tokens}
}

// dummyHash keeps the bcrypt cost on the unknown-email path so timing does
// not reveal which emails exist.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := HashPassword("ems-unknown-account")
	return hash
})

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	cred, err := s.store.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			_ = CheckPassword(dummyHash(), password)
			return LoginResult{}, apperr.Unauthorized("invalid email or password")
		}
		return LoginResult{}, apperr.Internal("credential lookup failed", err)
	}
	if err := CheckPassword(cred.PasswordHash, password); err != nil {
		return LoginResult{}, apperr.Unauthorized("invalid email or password")
	}

	token, err := GenerateToken(s.tokens.Secret, s.tokens.Issuer, Claims{
		EmployeeID: cred.EmployeeID,
		Email:      cred.Email,
		Name:       cred.Name,
		RoleID:     cred.RoleID,
		RoleName:   cred.RoleName,
	}, s.tokens.TTL)
	if err != nil {
		return LoginResult{}, apperr.Internal("token issuance failed", err)
	}
	return LoginResult{
		Token:      token,
		Message:    "login successful",
		EmployeeID: cred.EmployeeID,
		Name:       cred.Name,
		Email:      cred.Email,
		Role:       cred.RoleName,
	}, nil
}

func (s *Service) Validate(token string) (*Claims, error) {
	claims, err := ParseToken(s.tokens.Secret, s.tokens.Issuer, token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return claims, nil
}
