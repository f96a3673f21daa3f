// Package valueobjects holds the protocol-tagged parameter records a Node
// carries for each link type, plus the small normalization helpers the
// parsers and emitters share.
package valueobjects

import "strings"

// StreamCiphers are the legacy (non-AEAD) Shadowsocks stream ciphers.
var StreamCiphers = map[string]bool{
	"rc4-md5":         true,
	"aes-128-cfb":     true,
	"aes-192-cfb":     true,
	"aes-256-cfb":     true,
	"aes-128-ctr":     true,
	"aes-192-ctr":     true,
	"aes-256-ctr":     true,
	"chacha20-ietf":   true,
	"chacha20":        true,
	"salsa20":         true,
	"bf-cfb":          true,
	"camellia-128-cfb": true,
	"camellia-192-cfb": true,
	"camellia-256-cfb": true,
}

// AEADCiphers are the modern AEAD Shadowsocks ciphers, including SS2022.
var AEADCiphers = map[string]bool{
	"aes-128-gcm":                    true,
	"aes-192-gcm":                    true,
	"aes-256-gcm":                    true,
	"chacha20-ietf-poly1305":         true,
	"xchacha20-ietf-poly1305":        true,
	"2022-blake3-aes-128-gcm":        true,
	"2022-blake3-aes-256-gcm":        true,
	"2022-blake3-chacha20-poly1305":  true,
}

// IsStreamCipher reports whether method is a recognized legacy stream cipher.
func IsStreamCipher(method string) bool {
	return StreamCiphers[strings.ToLower(method)]
}

// IsRecognizedCipher reports whether method is any known SS cipher, stream
// or AEAD.
func IsRecognizedCipher(method string) bool {
	m := strings.ToLower(method)
	return StreamCiphers[m] || AEADCiphers[m]
}

// NormalizeCipher applies spec invariant 2: legacy uppercase AEAD_* names
// are rewritten to their lowercase hyphenated form, with
// AEAD_CHACHA20_POLY1305 special-cased to chacha20-ietf-poly1305 (the IETF
// variant subconverter clients expect) rather than the literal
// chacha20-poly1305 the generic rule would produce.
func NormalizeCipher(method string) string {
	upper := strings.ToUpper(method)
	if !strings.HasPrefix(upper, "AEAD_") {
		return method
	}
	if upper == "AEAD_CHACHA20_POLY1305" {
		return "chacha20-ietf-poly1305"
	}
	rest := strings.TrimPrefix(upper, "AEAD_")
	return strings.ToLower(strings.ReplaceAll(rest, "_", "-"))
}
