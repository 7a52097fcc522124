package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealmatch/internal/model"
)

func TestIssueAndResolve(t *testing.T) {
	m := NewManager(0)

	s := m.Issue("buyer-1", model.RoleBuyer)
	require.NotEmpty(t, s.Token)
	assert.Equal(t, "buyer-1", s.ProfileID)
	assert.Equal(t, model.RoleBuyer, s.Role)
	assert.Equal(t, DefaultTTL, s.ExpiresAt.Sub(s.IssuedAt))

	got, err := m.Resolve(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestResolveUnknownToken(t *testing.T) {
	m := NewManager(0)

	_, err := m.Resolve("not-a-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestTokensAreUnique(t *testing.T) {
	m := NewManager(0)

	a := m.Issue("buyer-1", model.RoleBuyer)
	b := m.Issue("buyer-1", model.RoleBuyer)
	assert.NotEqual(t, a.Token, b.Token)
	assert.Equal(t, 2, m.Active())
}

func TestExpiredTokenIsRevoked(t *testing.T) {
	m := NewManager(time.Hour)
	s := m.Issue("seller-1", model.RoleSeller)

	// Move the clock past expiry.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := m.Resolve(s.Token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	assert.Equal(t, 0, m.Active())
}

func TestRevoke(t *testing.T) {
	m := NewManager(0)
	s := m.Issue("buyer-1", model.RoleBuyer)

	m.Revoke(s.Token)
	_, err := m.Resolve(s.Token)
	assert.Error(t, err)

	// Revoking twice is fine.
	m.Revoke(s.Token)
}
