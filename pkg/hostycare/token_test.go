package hostycare

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_KnownVector(t *testing.T) {
	// Pinned against an independently computed value:
	// base64(hex(HMAC-SHA256(key="abc:24-06-15 10", data="secret123"))).
	const want = "N2Y2ZDFlMTU0NTQzZGUxYTY2MjBiODJkMzdkYThlMjkxNzU2MDEyMDgxNTQzYjUyNTM0MGRiZDdiZDBkMjJlNw=="

	token := Token("abc", "secret123", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, want, token)
}

func TestToken_DeterministicWithinHour(t *testing.T) {
	base := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	first := Token("abc", "secret123", base)
	second := Token("abc", "secret123", base.Add(59*time.Minute+59*time.Second))
	assert.Equal(t, first, second, "token must be stable within one UTC hour bucket")
}

func TestToken_ChangesAtHourBoundary(t *testing.T) {
	before := time.Date(2024, 6, 15, 10, 59, 59, 0, time.UTC)
	after := before.Add(time.Second)

	assert.NotEqual(t, Token("abc", "secret123", before), Token("abc", "secret123", after))
}

func TestToken_BucketsOnUTC(t *testing.T) {
	// The same instant in a non-UTC zone must produce the same token.
	utc := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	ist := utc.In(time.FixedZone("IST", 5*3600+1800))

	assert.Equal(t, Token("abc", "secret123", utc), Token("abc", "secret123", ist))
}

func TestToken_Shape(t *testing.T) {
	token := Token("abc", "secret123", time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))

	// base64 wrapping a hex-encoded SHA-256 digest: 64 hex characters.
	decoded, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, 64)
	_, err = hex.DecodeString(string(decoded))
	assert.NoError(t, err)
}

func TestToken_VariesByUserAndKey(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.NotEqual(t, Token("abc", "secret123", now), Token("xyz", "secret123", now))
	assert.NotEqual(t, Token("abc", "secret123", now), Token("abc", "other", now))
}
