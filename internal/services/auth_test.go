package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/funny-backend/internal/data/repos/testutil"
	"github.com/yungbote/funny-backend/internal/pkg/ctxutil"
)

func newAuth(t *testing.T, f *fixture, ttl time.Duration) AuthService {
	t.Helper()
	return NewAuthService(f.db, testutil.Logger(t), f.users, AuthConfig{
		SecretKey:  "test-secret",
		AccessTTL:  ttl,
		BcryptCost: bcrypt.MinCost,
	})
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuth(t, f, time.Hour)

	u, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "Ana@Example.com", Password: "s3nha"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "s3nha", u.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "x"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	_, err = svc.Login(ctx, "nobody@example.com", "s3nha")
	assert.Equal(t, KindUnauthorized, KindOf(err))

	tok, err := svc.Login(ctx, "ANA@example.com", "s3nha")
	require.NoError(t, err)

	authed, err := svc.SetContextFromToken(ctx, tok)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, u.ID, rd.UserID)

	me, err := svc.Me(authed)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	_, err = svc.Me(ctx)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, time.Hour, svc.GetAccessTTL())
}

func TestLongPasswordsCompareOnFirst72Bytes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuth(t, f, time.Hour)
	long := strings.Repeat("a", 100)

	_, err := svc.Register(ctx, RegisterInput{Name: "Bia", Email: "bia@example.com", Password: long})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "bia@example.com", strings.Repeat("a", 72))
	assert.NoError(t, err)
}

func TestSetContextFromTokenRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuth(t, f, time.Hour)
	u, err := svc.Register(ctx, RegisterInput{Name: "Caio", Email: "caio@example.com", Password: "pw"})
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, exp time.Time) string {
		tok := jwt.NewWithClaims(method, JWTClaims{
			ID:    u.ID,
			Email: u.Email,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(exp),
			},
		})
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	_, err = svc.SetContextFromToken(ctx, "")
	assert.Equal(t, KindUnauthorized, KindOf(err))

	expired := sign(jwt.SigningMethodHS256, []byte("test-secret"), time.Now().Add(-time.Minute))
	_, err = svc.SetContextFromToken(ctx, expired)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")

	forged := sign(jwt.SigningMethodHS256, []byte("other-secret"), time.Now().Add(time.Hour))
	_, err = svc.SetContextFromToken(ctx, forged)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	hs512 := sign(jwt.SigningMethodHS512, []byte("test-secret"), time.Now().Add(time.Hour))
	_, err = svc.SetContextFromToken(ctx, hs512)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}
