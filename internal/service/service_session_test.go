package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
)

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func TestSessionService_LoginStoresJWTExpiry(t *testing.T) {
	s := newTestStorages(t)
	svc := NewSessionService(s.SessionRepository, logger.Nop())
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	session, err := svc.Login(ctx, " "+signToken(t, exp)+" ")
	require.NoError(t, err)
	require.NotNil(t, session.ExpiresAt)
	assert.True(t, session.ExpiresAt.Equal(exp))

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Token, current.Token)
	require.NotNil(t, current.ExpiresAt)
	assert.True(t, current.ExpiresAt.Equal(exp))
}

func TestSessionService_LoginReplacesPrevious(t *testing.T) {
	s := newTestStorages(t)
	svc := NewSessionService(s.SessionRepository, logger.Nop())
	ctx := context.Background()

	_, err := svc.Login(ctx, "opaque-1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "opaque-2")
	require.NoError(t, err)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-2", current.Token)
	assert.Nil(t, current.ExpiresAt)
}

func TestSessionService_LoginRejects(t *testing.T) {
	s := newTestStorages(t)
	svc := NewSessionService(s.SessionRepository, logger.Nop())
	ctx := context.Background()

	_, err := svc.Login(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = svc.Login(ctx, signToken(t, time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionService_Logout(t *testing.T) {
	s := newTestStorages(t)
	svc := NewSessionService(s.SessionRepository, logger.Nop())
	ctx := context.Background()

	_, err := svc.Login(ctx, "opaque")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
