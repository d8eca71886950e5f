package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestResolveAPIKeyPrefersEnvironment(t *testing.T) {
	s := NewStoreWith(keyring.NewArrayKeyring([]keyring.Item{
		{Key: APIKeyName, Data: []byte("from-keyring")},
	}))

	key, src, err := ResolveAPIKey(s, envFrom(map[string]string{
		"GEMINI_API_KEY":          "generic",
		"RESEARCH_GEMINI_API_KEY": " scoped ",
	}))
	require.NoError(t, err)
	assert.Equal(t, "scoped", key)
	assert.Equal(t, Source("RESEARCH_GEMINI_API_KEY"), src)

	key, src, err = ResolveAPIKey(s, envFrom(map[string]string{"GEMINI_API_KEY": "generic"}))
	require.NoError(t, err)
	assert.Equal(t, "generic", key)
	assert.Equal(t, Source("GEMINI_API_KEY"), src)
}

func TestResolveAPIKeyFromKeyring(t *testing.T) {
	s := NewStoreWith(keyring.NewArrayKeyring(nil))
	require.NoError(t, s.Set(APIKeyName, "stored"))

	key, src, err := ResolveAPIKey(s, envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "stored", key)
	assert.Equal(t, SourceKeyring, src)
}

func TestResolveAPIKeyMissing(t *testing.T) {
	s := NewStoreWith(keyring.NewArrayKeyring(nil))

	_, _, err := ResolveAPIKey(s, envFrom(nil))
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, _, err = ResolveAPIKey(nil, envFrom(nil))
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestStoreDelete(t *testing.T) {
	s := NewStoreWith(keyring.NewArrayKeyring(nil))
	require.NoError(t, s.Set(APIKeyName, "x"))
	require.NoError(t, s.Delete(APIKeyName))

	_, err := s.Get(APIKeyName)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "*****6789", Mask("123456789"))
}
