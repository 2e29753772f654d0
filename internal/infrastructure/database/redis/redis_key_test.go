package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	rkg := NewRedisKeyGenerator()

	key, err := rkg.GenerateKey("auth_login_attempts", "jean@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hopital_auth_login_attempts:jean@example.com", key)
	assert.NoError(t, rkg.ValidateKey(key))

	key, err = rkg.GenerateKey("cache_dashboard", "graphiques", "7days")
	require.NoError(t, err)
	assert.Equal(t, "hopital_cache_dashboard:graphiques_7days", key)

	_, err = rkg.GenerateKey("inconnu")
	assert.Error(t, err)
}

func TestGetTTL(t *testing.T) {
	rkg := NewRedisKeyGenerator()

	ttl, err := rkg.GetTTL("auth_login_attempts")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)
}

func TestValidateKey_RejectsForeignPrefix(t *testing.T) {
	rkg := NewRedisKeyGenerator()

	assert.Error(t, rkg.ValidateKey(""))
	assert.Error(t, rkg.ValidateKey("autre_auth_session:abc"))
	assert.Error(t, rkg.ValidateKey("hopital_auth session:abc"))
}
