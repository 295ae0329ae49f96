package auth

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeRoundTrip(t *testing.T) {
	codec := NewScopeCodec("test-secret", time.Hour)

	token, err := codec.Encode("notes", "alice@example.com")
	require.NoError(t, err)

	payload, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "notes", payload.Name)
	assert.Equal(t, "alice@example.com", payload.Owner)
	assert.True(t, payload.ExpiresAt.After(time.Now()))
}

func TestScopeRoundTripAwkwardNames(t *testing.T) {
	codec := NewScopeCodec("test-secret", time.Hour)

	// Names that stress the percent-encoding but not the delimiter
	for _, name := range []string{"my notes", "100%", "a&b=c", "ünïcode", "spaces and\ttabs"} {
		token, err := codec.Encode(name, "alice@example.com")
		require.NoError(t, err, "name %q", name)

		payload, err := codec.Decode(token)
		require.NoError(t, err, "name %q", name)
		assert.Equal(t, name, payload.Name)
	}
}

func TestScopeRejectsDelimiterInName(t *testing.T) {
	codec := NewScopeCodec("test-secret", time.Hour)

	_, err := codec.Encode("notes#extra", "alice@example.com")
	assert.Error(t, err)
}

func TestScopeTamper(t *testing.T) {
	codec := NewScopeCodec("test-secret", time.Hour)

	token, err := codec.Encode("notes", "alice@example.com")
	require.NoError(t, err)

	// Swap the owner field for another user, keeping the original MAC
	decoded, err := url.QueryUnescape(token)
	require.NoError(t, err)
	parts := strings.Split(decoded, "#")
	require.Len(t, parts, 4)
	parts[1] = "mallory@example.com"
	forged := url.QueryEscape(strings.Join(parts, "#"))

	_, err = codec.Decode(forged)
	assert.ErrorIs(t, err, ErrScopeSignature)
}

func TestScopeUnsignedRejected(t *testing.T) {
	codec := NewScopeCodec("test-secret", time.Hour)

	// The legacy wire format: name#owner with no expiry or MAC
	legacy := url.QueryEscape("notes#alice@example.com")
	_, err := codec.Decode(legacy)
	assert.ErrorIs(t, err, ErrScopeMalformed)
}

func TestScopeExpired(t *testing.T) {
	codec := NewScopeCodec("test-secret", time.Hour)

	issued := time.Now()
	codec.now = func() time.Time { return issued }

	token, err := codec.Encode("notes", "alice@example.com")
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrScopeExpired)
}

func TestScopeWrongSecret(t *testing.T) {
	encoder := NewScopeCodec("secret-a", time.Hour)
	decoder := NewScopeCodec("secret-b", time.Hour)

	token, err := encoder.Encode("notes", "alice@example.com")
	require.NoError(t, err)

	_, err = decoder.Decode(token)
	assert.ErrorIs(t, err, ErrScopeSignature)
}

func TestScopeMalformedInputs(t *testing.T) {
	codec := NewScopeCodec("test-secret", time.Hour)

	for _, raw := range []string{"", "%zz", "no-delimiters", url.QueryEscape("a#b#c#d#e")} {
		_, err := codec.Decode(raw)
		assert.ErrorIs(t, err, ErrScopeMalformed, "input %q", raw)
	}
}
