package valueobjects

// SocksHTTPParams is the canonical parameter record shared by SOCKS5 and
// HTTP(S) proxy Nodes: both are a bare (host, port, optional credentials,
// optional TLS) tuple with no protocol-specific framing to speak of.
type SocksHTTPParams struct {
	Username string
	Password string
	TLS      bool // meaningful only for the HTTP(S) variant
}

// NewSocksHTTPParams builds a SocksHTTPParams. Username/Password may both be
// empty for anonymous access; there is nothing else to validate at this
// layer, unlike VMess/SS/SSR which carry enumerated ciphers or transports.
func NewSocksHTTPParams(username, password string, tls bool) *SocksHTTPParams {
	return &SocksHTTPParams{
		Username: username,
		Password: password,
		TLS:      tls,
	}
}

// HasAuth reports whether credentials were supplied.
func (p *SocksHTTPParams) HasAuth() bool {
	return p.Username != "" || p.Password != ""
}
