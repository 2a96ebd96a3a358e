package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevocationExpires(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	blacklist.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti", time.Minute))
	now = now.Add(2 * time.Minute)

	revoked, err := blacklist.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, blacklist.revoked)
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	blacklist.now = func() time.Time { return now }
	ctx := context.Background()

	revoked, err := blacklist.IsUserRevoked(ctx, "user-1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, revoked, "tokens issued before suspension are rejected")

	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after re-approval are accepted")

	revoked, err = blacklist.IsUserRevoked(ctx, "user-2", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked)
}
