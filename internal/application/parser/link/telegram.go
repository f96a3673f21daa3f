package link

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// ParseTelegramSocks decodes Telegram's SOCKS proxy share links,
// "https://t.me/socks?server=...&port=...&user=...&pass=..." or the
// "tg://socks?..." app-link equivalent, per spec.md §4.2.
func ParseTelegramSocks(raw string) (*node.Node, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("tg socks: parse url: %w", err)
	}
	values := u.Query()

	host := values.Get("server")
	if host == "" {
		return nil, fmt.Errorf("tg socks: missing server")
	}
	port, err := strconv.Atoi(values.Get("port"))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("tg socks: invalid port %q", values.Get("port"))
	}

	n := node.New(node.LinkSOCKS5, "", "", host, uint16(port))
	n.SocksHTTP = valueobjects.NewSocksHTTPParams(values.Get("user"), values.Get("pass"), false)
	return n, nil
}

// IsTelegramSocksLink reports whether raw is one of the two Telegram SOCKS
// share-link forms this parser recognizes.
func IsTelegramSocksLink(raw string) bool {
	return strings.HasPrefix(raw, "https://t.me/socks") || strings.HasPrefix(raw, "tg://socks")
}
