package valueobjects

import (
	"fmt"
	"net/url"
	"strings"
)

// SSParams is the canonical parameter record carried by a Shadowsocks Node.
type SSParams struct {
	Password string
	Method   string // normalized via NormalizeCipher before storage
	Plugin   string
	Opts     PluginOpts
}

// NewSSParams normalizes method per invariant 2 and rejects unrecognized
// ciphers outright rather than passing them through to emitters.
func NewSSParams(password, method, plugin string, opts PluginOpts) (*SSParams, error) {
	normalized := NormalizeCipher(method)
	if !IsRecognizedCipher(normalized) {
		return nil, fmt.Errorf("unrecognized shadowsocks cipher: %s", method)
	}
	return &SSParams{
		Password: password,
		Method:   normalized,
		Plugin:   plugin,
		Opts:     opts,
	}, nil
}

// UserInfo renders the "method:password" pair used both in ss:// link
// userinfo (base64url, no padding) and in SIP002/legacy URI construction.
func (p *SSParams) UserInfo() string {
	return p.Method + ":" + p.Password
}

// PluginQuery renders the SIP002 "plugin=" query-string value, or "" if no
// plugin is configured.
func (p *SSParams) PluginQuery() string {
	if p.Plugin == "" {
		return ""
	}
	spec := p.Plugin
	if opts := p.Opts.String(); opts != "" {
		spec += ";" + opts
	}
	return spec
}

// ToSIP002URI builds the SIP002 ss:// form: ss://base64(method:password)@host:port?plugin=...#remarks.
// userInfoB64 must already be base64url-encoded without padding by the caller.
func (p *SSParams) ToSIP002URI(userInfoB64, server string, port uint16, remarks string) string {
	uri := fmt.Sprintf("ss://%s@%s:%d", userInfoB64, server, port)
	if q := p.PluginQuery(); q != "" {
		uri += "?plugin=" + url.QueryEscape(q)
	}
	if remarks != "" {
		uri += "#" + url.QueryEscape(remarks)
	}
	return uri
}

// ToLegacyURI builds the pre-SIP002 form: ss://base64(method:password@host:port)#remarks.
func ToLegacyURI(userInfoAndHostB64 string, remarks string) string {
	uri := "ss://" + userInfoAndHostB64
	if remarks != "" {
		uri += "#" + url.QueryEscape(remarks)
	}
	return uri
}

// IsAEAD2022 reports whether the cipher is an SS2022 AEAD variant. No
// emitter consults it; SS2022 ciphers are written out like any other.
func (p *SSParams) IsAEAD2022() bool {
	return strings.HasPrefix(p.Method, "2022-")
}
