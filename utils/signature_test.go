package utils

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	address := base58.Encode(pub)
	require.NoError(t, ValidateAddress(address))

	message := GenerateChallenge()
	signature := base58.Encode(ed25519.Sign(priv, []byte(message)))

	valid, err := VerifySignature(address, message, signature)
	require.NoError(t, err)
	assert.True(t, valid)

	// Wrong message fails verification without erroring
	valid, err = VerifySignature(address, "different message", signature)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifySignatureRejectsGarbage(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	address := base58.Encode(pub)

	_, err = VerifySignature(address, "msg", "not-base58-0OIl")
	assert.Error(t, err)

	_, err = VerifySignature("tooShort", "msg", base58.Encode(make([]byte, ed25519.SignatureSize)))
	assert.Error(t, err)
}

func TestValidateAddress(t *testing.T) {
	assert.Error(t, ValidateAddress("0OIl-not-base58"))
	assert.Error(t, ValidateAddress(base58.Encode([]byte{1, 2, 3})))
}
