package node

// LinkType tags which proxy protocol variant a Node carries. One variant
// per recognized protocol; emitters switch on this instead of using
// polymorphic dispatch (REDESIGN FLAGS: no base class among emitters).
type LinkType int

const (
	LinkUnknown LinkType = iota
	LinkVMess
	LinkShadowsocks
	LinkShadowsocksR
	LinkSOCKS5
	LinkHTTP
	LinkHTTPS
)

func (t LinkType) String() string {
	switch t {
	case LinkVMess:
		return "vmess"
	case LinkShadowsocks:
		return "ss"
	case LinkShadowsocksR:
		return "ssr"
	case LinkSOCKS5:
		return "socks5"
	case LinkHTTP:
		return "http"
	case LinkHTTPS:
		return "https"
	default:
		return "unknown"
	}
}

func (t LinkType) IsValid() bool {
	return t != LinkUnknown
}

// DefaultGroup returns the display label a Node defaults to for its
// protocol, overridable per-subscription per spec.
func (t LinkType) DefaultGroup() string {
	switch t {
	case LinkVMess:
		return "V2Ray"
	case LinkShadowsocks:
		return "SS"
	case LinkShadowsocksR:
		return "SSR"
	case LinkSOCKS5, LinkHTTP, LinkHTTPS:
		return "SOCKS"
	default:
		return ""
	}
}
