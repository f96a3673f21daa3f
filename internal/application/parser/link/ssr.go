package link

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// ParseSSR decodes an
// "ssr://base64(host:port:protocol:method:obfs:base64(password)/?remarks=...&obfsparam=...&protoparam=...&group=...)"
// link per spec.md §4.2. The head splits on exactly five colons into
// (host, port, protocol, method, obfs); the remainder up to "/?" is the
// base64-encoded password, and the query string carries base64'd remarks,
// group, obfsparam, protoparam.
func ParseSSR(raw string) (*node.Node, error) {
	body := strings.TrimPrefix(raw, "ssr://")
	decoded, err := DecodeBase64(body)
	if err != nil {
		return nil, fmt.Errorf("ssr: decode: %w", err)
	}

	head, query, _ := strings.Cut(string(decoded), "/?")

	parts := strings.SplitN(head, ":", 6)
	if len(parts) != 6 {
		return nil, fmt.Errorf("ssr: malformed head, want 6 colon-separated fields, got %d", len(parts))
	}
	host, portStr, protocol, method, obfs, passwordEnc := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("ssr: invalid port %q", portStr)
	}

	passwordBytes, err := DecodeBase64(passwordEnc)
	if err != nil {
		return nil, fmt.Errorf("ssr: decode password: %w", err)
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("ssr: invalid query: %w", err)
	}

	remarks := decodeSSRQueryField(values, "remarks")
	group := decodeSSRQueryField(values, "group")
	if group == "" {
		group = "SSRCloud"
	}
	obfsParam := decodeSSRQueryField(values, "obfsparam")
	protoParam := decodeSSRQueryField(values, "protoparam")

	ssr, err := valueobjects.NewSSRParams(string(passwordBytes), method, protocol, protoParam, obfs, obfsParam)
	if err != nil {
		return nil, fmt.Errorf("ssr: %w", err)
	}

	n := node.New(node.LinkShadowsocksR, group, remarks, host, uint16(port))
	n.SSR = ssr
	return n, nil
}

func decodeSSRQueryField(values url.Values, key string) string {
	raw := values.Get(key)
	if raw == "" {
		return ""
	}
	decoded, err := DecodeBase64(raw)
	if err != nil {
		return raw
	}
	return string(decoded)
}
