package security_test

import (
	"testing"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/security"
)

func TestPasswordHasher(t *testing.T) {
	h := security.NewPasswordHasher(4)
	hashed, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.True(t, h.Matches("s3cret", hashed))
	assert.False(t, h.Matches("wrong", hashed))
	assert.False(t, h.Matches("s3cret", "not-a-hash"))
}

func TestTokenService(t *testing.T) {
	svc := security.NewTokenService("secret", time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		tok, err := svc.Issue(42)
		require.NoError(t, err)
		id, err := svc.UserID(tok)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("Expired", func(t *testing.T) {
		tok, err := svc.IssueWithTTL(42, -time.Minute)
		require.NoError(t, err)
		_, err = svc.UserID(tok)
		assert.ErrorIs(t, err, security.ErrInvalidSession)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := security.NewTokenService("other", time.Hour)
		tok, err := other.Issue(42)
		require.NoError(t, err)
		_, err = svc.UserID(tok)
		assert.ErrorIs(t, err, security.ErrInvalidSession)
	})
}

func TestEncryptor(t *testing.T) {
	enc, err := security.NewEncryptor([]byte("message-key"), nil)
	require.NoError(t, err)

	sealed, err := enc.Encrypt("hi")
	require.NoError(t, err)
	assert.NotEqual(t, "hi", sealed)

	plain, err := enc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hi", plain)

	assert.Nil(t, enc.DecryptOptional(nil))
	sealedPtr, err := enc.EncryptOptional(nil)
	require.NoError(t, err)
	assert.Nil(t, sealedPtr)

	raw := "plain text from before encryption"
	assert.Equal(t, raw, *enc.DecryptOptional(&raw))
}

func TestEncryptorLegacyFernet(t *testing.T) {
	var k fernet.Key
	require.NoError(t, k.Generate())
	legacy, err := fernet.EncryptAndSign([]byte("old message"), &k)
	require.NoError(t, err)

	enc, err := security.NewEncryptor([]byte("new-key"), []string{k.Encode()})
	require.NoError(t, err)

	plain, err := enc.Decrypt(string(legacy))
	require.NoError(t, err)
	assert.Equal(t, "old message", plain)
}
