package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestGate_LoginFlow(t *testing.T) {
	gate, err := NewGate(testHash(t, "secret"), &MemoryStore{})
	require.NoError(t, err)

	assert.True(t, gate.Enabled())
	assert.Equal(t, Unauthenticated, gate.State())
	assert.ErrorIs(t, gate.Require(), ErrNotAuthenticated)

	assert.ErrorIs(t, gate.Login("wrong"), ErrIncorrectPassword)
	assert.Equal(t, Unauthenticated, gate.State())

	require.NoError(t, gate.Login("secret"))
	assert.Equal(t, Authenticated, gate.State())
	assert.NoError(t, gate.Require())

	gate.Logout()
	assert.Equal(t, Unauthenticated, gate.State())
}

func TestGate_Disabled(t *testing.T) {
	gate, err := NewGate("", nil)
	require.NoError(t, err)

	assert.False(t, gate.Enabled())
	assert.Equal(t, Authenticated, gate.State())
	assert.NoError(t, gate.Require())
	assert.NoError(t, gate.Login("anything"))
}

func TestGate_SharedStore(t *testing.T) {
	hash := testHash(t, "secret")
	store := &MemoryStore{}

	first, err := NewGate(hash, store)
	require.NoError(t, err)
	second, err := NewGate(hash, store)
	require.NoError(t, err)

	require.NoError(t, first.Login("secret"))
	assert.Equal(t, Authenticated, second.State())
}

func TestNewGate_InvalidHash(t *testing.T) {
	_, err := NewGate("not-a-bcrypt-hash", nil)
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	gate, err := NewGate(hash, nil)
	require.NoError(t, err)
	assert.NoError(t, gate.Login("pw"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}
