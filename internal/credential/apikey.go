package credential

import (
	"errors"
	"fmt"
	"strings"
)

// APIKeyEnvVars are consulted in order before the keyring.
var APIKeyEnvVars = []string{"RESEARCH_GEMINI_API_KEY", "GEMINI_API_KEY"}

// ErrNoAPIKey is returned when no source provides an API key.
var ErrNoAPIKey = errors.New(
	"no Gemini API key found: set GEMINI_API_KEY or run 'research auth login'")

// Source names where a resolved API key came from.
type Source string

const SourceKeyring Source = "keyring"

// ResolveAPIKey returns the API key from the environment or, failing that,
// the keyring. Keyring errors other than a missing entry are returned.
func ResolveAPIKey(s *Store, getenv func(string) string) (string, Source, error) {
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v, Source(name), nil
		}
	}

	if s == nil {
		return "", "", ErrNoAPIKey
	}

	key, err := s.Get(APIKeyName)
	if errors.Is(err, ErrNotFound) {
		return "", "", ErrNoAPIKey
	}
	if err != nil {
		return "", "", fmt.Errorf("reading API key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", "", ErrNoAPIKey
	}
	return strings.TrimSpace(key), SourceKeyring, nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
