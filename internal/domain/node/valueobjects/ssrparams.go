package valueobjects

import "fmt"

// recognized ShadowsocksR protocol and obfs names, per spec.md's container
// tables (the original only ever emitted these from its server configs).
var ssrProtocols = map[string]bool{
	"origin":          true,
	"auth_sha1_v4":    true,
	"auth_aes128_md5": true,
	"auth_aes128_sha1": true,
	"auth_chain_a":    true,
	"auth_chain_b":    true,
}

var ssrObfs = map[string]bool{
	"plain":            true,
	"http_simple":      true,
	"http_post":        true,
	"random_head":      true,
	"tls1.2_ticket_auth": true,
}

// SSRParams is the canonical parameter record carried by a ShadowsocksR
// Node. ShadowsocksR has no teacher analog (orris-inc-orris only models
// modern protocols), so this is authored fresh in the same
// constructor+accessor idiom as the package's other *Params types.
type SSRParams struct {
	Password      string
	Method        string
	Protocol      string
	ProtocolParam string
	Obfs          string
	ObfsParam     string
}

// NewSSRParams validates protocol/obfs against the recognized SSR vocabulary.
// Cipher is NOT run through NormalizeCipher: SSR predates the AEAD_* legacy
// naming this helper corrects for and uses its own cipher list (including
// "none", "table", and "rc4" which plain SS never accepts).
func NewSSRParams(password, method, protocol, protocolParam, obfs, obfsParam string) (*SSRParams, error) {
	if !ssrProtocols[protocol] {
		return nil, fmt.Errorf("unrecognized ssr protocol: %s", protocol)
	}
	if !ssrObfs[obfs] {
		return nil, fmt.Errorf("unrecognized ssr obfs: %s", obfs)
	}
	return &SSRParams{
		Password:      password,
		Method:        method,
		Protocol:      protocol,
		ProtocolParam: protocolParam,
		Obfs:          obfs,
		ObfsParam:     obfsParam,
	}, nil
}

// IsPlainOrigin reports whether protocol and obfs are both the
// no-op defaults ("origin"/"plain"), the condition spec invariant 4 uses to
// decide an SSR node carries no SSR-specific behavior and should be
// re-tagged as a plain Shadowsocks node when its cipher is also a stream
// cipher.
func (p *SSRParams) IsPlainOrigin() bool {
	return p.Protocol == "origin" && p.Obfs == "plain"
}

// ToSS converts a plain-origin SSR node's params into SSParams, used by the
// Node-level re-tagging logic (invariant 4). Plugin/Opts are left empty:
// SSR obfs/protocol carry no equivalent to an SS plugin once both are
// "plain"/"origin".
func (p *SSRParams) ToSS() (*SSParams, error) {
	return NewSSParams(p.Password, p.Method, "", nil)
}

// ToURI builds the legacy SSR link body (before the outer ssr:// base64
// wrapping, which is the emitter's concern): server:port:protocol:method:obfs:base64(password)/?params.
func (p *SSRParams) ToURI(server string, port uint16, passwordB64, remarksB64, protoParamB64, obfsParamB64 string) string {
	uri := fmt.Sprintf("%s:%d:%s:%s:%s:%s/?remarks=%s", server, port, p.Protocol, p.Method, p.Obfs, passwordB64, remarksB64)
	if protoParamB64 != "" {
		uri += "&protoparam=" + protoParamB64
	}
	if obfsParamB64 != "" {
		uri += "&obfsparam=" + obfsParamB64
	}
	return uri
}
