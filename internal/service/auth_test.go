package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/foliocms/folio/internal/auth"
	"github.com/foliocms/folio/internal/testutil"
)

func newAuthService(t *testing.T, store *testutil.MemoryStore, now time.Time) *AuthService {
	t.Helper()
	tokens := auth.NewTokenIssuer("test-secret", auth.WithClock(func() time.Time { return now }))
	return NewAuthService(store, auth.NewHasher(bcrypt.MinCost), tokens, testutil.DiscardLogger())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := testutil.NewMemoryStore()
	svc := newAuthService(t, store, now)

	user, err := svc.Register(ctx, "Ada", " Ada@X.io ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ada@x.io", user.Email)
	assert.NotEqual(t, "pw", user.PasswordHash)

	token, got, err := svc.Login(ctx, "ada@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	claims, ok := svc.Verify(token)
	require.True(t, ok)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@x.io", claims.Email)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemoryStore()
	svc := newAuthService(t, store, time.Now())

	_, err := svc.Register(ctx, "Ada", "ada@x.io", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Ada Again", "ada@x.io", "other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, store.UserCount())

	// The original password still works.
	_, _, err = svc.Login(ctx, "ada@x.io", "pw")
	assert.NoError(t, err)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newAuthService(t, testutil.NewMemoryStore(), time.Now())

	tests := []struct {
		name, user, email, password string
		field                       string
	}{
		{"no name", "", "a@x.io", "pw", "name"},
		{"no email", "Ada", " ", "pw", "email"},
		{"no password", "Ada", "a@x.io", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.user, tt.email, tt.password)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAuthService(t, testutil.NewMemoryStore(), time.Now())
	_, err := svc.Register(ctx, "Ada", "ada@x.io", "pw")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "bob@x.io", "pw")
	assert.ErrorIs(t, err, ErrEmailNotFound)

	_, _, err = svc.Login(ctx, "ada@x.io", "wrong")
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestAuthService_VerifyExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issued := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := testutil.NewMemoryStore()
	svc := newAuthService(t, store, issued)

	_, err := svc.Register(ctx, "Ada", "ada@x.io", "pw")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "ada@x.io", "pw")
	require.NoError(t, err)

	later := newAuthService(t, store, issued.Add(time.Hour+time.Second))
	_, ok := later.Verify(token)
	assert.False(t, ok)

	_, ok = svc.Verify("garbage")
	assert.False(t, ok)
	_, ok = svc.Verify("")
	assert.False(t, ok)
}

func TestAuthService_TokenIsHS256(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAuthService(t, testutil.NewMemoryStore(), time.Now())
	_, err := svc.Register(ctx, "Ada", "ada@x.io", "pw")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "ada@x.io", "pw")
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Method.Alg())

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "Ada", claims["name"])
	assert.Equal(t, "ada@x.io", claims["email"])
}
