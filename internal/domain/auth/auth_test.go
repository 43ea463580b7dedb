package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/platform/apperr"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "super-secret"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestCheckPasswordRejectsPlaintextStoredValue(t *testing.T) {
	assert.Error(t, CheckPassword("super-secret", "super-secret"))
}

func TestGenerateAndParseToken(t *testing.T) {
	claims := Claims{EmployeeID: 7, Email: "a@example.com", Name: "Asha", RoleID: 2, RoleName: RoleHR}

	token, err := GenerateToken("test-secret", "ems", claims, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken("test-secret", "ems", token)
	require.NoError(t, err)
	assert.Equal(t, claims.User(), parsed.User())
	assert.Equal(t, "7", parsed.Subject)
	assert.Equal(t, "ems", parsed.Issuer)
}

func TestParseTokenFailures(t *testing.T) {
	valid, err := GenerateToken("test-secret", "ems", Claims{EmployeeID: 1}, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("test-secret", "ems", Claims{EmployeeID: 1}, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		issuer string
		token  string
	}{
		{name: "wrong secret", secret: "other", issuer: "ems", token: valid},
		{name: "wrong issuer", secret: "test-secret", issuer: "someone-else", token: valid},
		{name: "expired", secret: "test-secret", issuer: "ems", token: expired},
		{name: "garbage", secret: "test-secret", issuer: "ems", token: "not.a.token"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseToken(tc.secret, tc.issuer, tc.token)
			assert.Error(t, err)
		})
	}
}

func TestStaticPermissions(t *testing.T) {
	perms := StaticPermissions{}
	ctx := context.Background()

	ok, _ := perms.HasPermission(ctx, RoleHR, PermPayslipRender)
	assert.True(t, ok)
	ok, _ = perms.HasPermission(ctx, RoleEmployee, PermPayslipRender)
	assert.False(t, ok)
	ok, _ = perms.HasPermission(ctx, RoleAdmin, PermSystemAdmin)
	assert.True(t, ok)
	ok, _ = perms.HasPermission(ctx, "Unknown", PermPayslipRead)
	assert.False(t, ok)
}

type fakeCredentials struct {
	cred Credential
	err  error
}

func (f fakeCredentials) FindActiveByEmail(context.Context, string) (Credential, error) {
	return f.cred, f.err
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	cred := Credential{EmployeeID: 9, Name: "Ravi", Email: "ravi@example.com", RoleID: 3, RoleName: RoleEmployee, PasswordHash: hash}
	tokens := TokenConfig{Secret: "s", Issuer: "ems", TTL: 8 * time.Hour}

	t.Run("success", func(t *testing.T) {
		svc := NewService(fakeCredentials{cred: cred}, tokens)
		res, err := svc.Login(context.Background(), "ravi@example.com", "Passw0rd!")
		require.NoError(t, err)
		assert.Equal(t, int64(9), res.EmployeeID)
		assert.Equal(t, "ravi@example.com", res.Email)

		claims, err := svc.Validate(res.Token)
		require.NoError(t, err)
		assert.Equal(t, RoleEmployee, claims.RoleName)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewService(fakeCredentials{cred: cred}, tokens)
		_, err := svc.Login(context.Background(), "ravi@example.com", "nope")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("plaintext stored credential never matches", func(t *testing.T) {
		plain := cred
		plain.PasswordHash = "Passw0rd!"
		svc := NewService(fakeCredentials{cred: plain}, tokens)
		_, err := svc.Login(context.Background(), "ravi@example.com", "Passw0rd!")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewService(fakeCredentials{err: ErrCredentialNotFound}, tokens)
		_, err := svc.Login(context.Background(), "ghost@example.com", "x")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("store failure", func(t *testing.T) {
		svc := NewService(fakeCredentials{err: errors.New("db down")}, tokens)
		_, err := svc.Login(context.Background(), "ravi@example.com", "x")
		assert.Equal(t, apperr.KindInternal, apperr.Of(err))
	})
}
