package service

import (
	"context"
	"testing"
	"time"

	"mindcare-be/internal/dto"
	"mindcare-be/internal/pkg/logger"
	"mindcare-be/internal/pkg/serverutils"
	"mindcare-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJwtSecret = "test-secret"

func newTestAuthService() (IAuthService, *fakeStore, *memory.TokenDenylist) {
	store := newFakeStore()
	denylist := memory.NewTokenDenylist()
	return NewAuthService(store, denylist, testJwtSecret, time.Hour, logger.NewNopLogger()), store, denylist
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store, _ := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Username: " alice ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.Username)
	require.Len(t, store.users, 1)
	assert.NotEqual(t, "secret123", store.users[0].PasswordHash)

	res, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.Id, res.User.Id)

	claims, err := serverutils.ParseToken(testJwtSecret, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.Id.String(), claims.UserId)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
}

func TestRegisterErrors(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "", Password: "secret123"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "bob", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "bob", Password: "another1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginErrors(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "carol", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "carol", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "carol"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, denylist := newTestAuthService()
	ctx := context.Background()
	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "dave", Password: "secret123"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, &dto.LoginRequest{Username: "dave", Password: "secret123"})
	require.NoError(t, err)

	claims, err := serverutils.ParseToken(testJwtSecret, res.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims.ID, claims.ExpiresAt.Time))
	assert.True(t, denylist.IsRevoked(claims.ID))
}

func TestMe(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, &dto.RegisterRequest{Username: "erin", Password: "secret123"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, reg.Id)
	require.NoError(t, err)
	assert.Equal(t, "erin", me.Username)
}
