package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCipher_LegacyAEADChacha(t *testing.T) {
	assert.Equal(t, "chacha20-ietf-poly1305", NormalizeCipher("AEAD_CHACHA20_POLY1305"))
}

func TestNormalizeCipher_LegacyAEADAES(t *testing.T) {
	assert.Equal(t, "aes-256-gcm", NormalizeCipher("AEAD_AES_256_GCM"))
}

func TestNormalizeCipher_PassesThroughModernNames(t *testing.T) {
	assert.Equal(t, "aes-128-gcm", NormalizeCipher("aes-128-gcm"))
}

func TestIsRecognizedCipher(t *testing.T) {
	assert.True(t, IsRecognizedCipher("rc4-md5"))
	assert.True(t, IsRecognizedCipher("chacha20-ietf-poly1305"))
	assert.False(t, IsRecognizedCipher("not-a-cipher"))
}
