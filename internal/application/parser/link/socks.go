package link

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// ParseSocks decodes a v2rayN-style "socks://base64(host:port)[#remark]"
// link. The decoded body carries no credentials; SOCKS5 entries with
// credentials come from Telegram links, Netch entries and container
// parsers (Clash/Surge).
func ParseSocks(raw string) (*node.Node, error) {
	body := strings.TrimPrefix(raw, "socks://")
	body, fragment, _ := strings.Cut(body, "#")
	remarks, _ := url.QueryUnescape(fragment)

	decoded, err := DecodeBase64(body)
	if err != nil {
		return nil, fmt.Errorf("socks: decode: %w", err)
	}
	host, portStr, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, fmt.Errorf("socks: missing host:port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("socks: invalid port %q", portStr)
	}

	n := node.New(node.LinkSOCKS5, "", remarks, host, uint16(port))
	n.SocksHTTP = valueobjects.NewSocksHTTPParams("", "", false)
	return n, nil
}
