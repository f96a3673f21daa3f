package link

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// ParseSS decodes an ss:// link. Shape (a), SIP002, is tried first:
// "ss://base64(method:password)@host:port[?plugin=...][#remark]". If the
// body contains no "@" it falls back to shape (b), the legacy form
// "ss://base64(method:password@host:port)[#remark]", per spec.md §4.2.
func ParseSS(raw string) (*node.Node, error) {
	body := strings.TrimPrefix(raw, "ss://")

	body, fragment, _ := strings.Cut(body, "#")
	remarks, _ := url.QueryUnescape(fragment)

	if strings.Contains(body, "@") {
		return parseSIP002(body, remarks)
	}
	return parseLegacySS(body, remarks)
}

func parseSIP002(body, remarks string) (*node.Node, error) {
	userinfoEnc, hostpart, ok := strings.Cut(body, "@")
	if !ok {
		return nil, fmt.Errorf("ss: missing @")
	}
	hostport, query, _ := strings.Cut(hostpart, "?")

	decodedUserinfo, err := DecodeBase64(userinfoEnc)
	if err != nil {
		// SIP002 also allows the userinfo to be left unencoded when it
		// contains no reserved characters.
		decodedUserinfo = []byte(userinfoEnc)
	}
	method, password, ok := strings.Cut(string(decodedUserinfo), ":")
	if !ok {
		return nil, fmt.Errorf("ss: malformed userinfo")
	}

	host, portStr, ok := strings.Cut(hostport, ":")
	if !ok {
		return nil, fmt.Errorf("ss: missing host:port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("ss: invalid port %q", portStr)
	}

	var plugin string
	var opts valueobjects.PluginOpts
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return nil, fmt.Errorf("ss: invalid query: %w", err)
		}
		if raw := values.Get("plugin"); raw != "" {
			plugin, opts = valueobjects.ParsePlugin(raw)
		}
	}

	ss, err := valueobjects.NewSSParams(password, method, plugin, opts)
	if err != nil {
		return nil, fmt.Errorf("ss: %w", err)
	}

	n := node.New(node.LinkShadowsocks, "", remarks, host, uint16(port))
	n.SS = ss
	return n, nil
}

func parseLegacySS(body, remarks string) (*node.Node, error) {
	decoded, err := DecodeBase64(body)
	if err != nil {
		return nil, fmt.Errorf("ss: decode: %w", err)
	}
	userinfo, hostport, ok := strings.Cut(string(decoded), "@")
	if !ok {
		return nil, fmt.Errorf("ss: malformed legacy body")
	}
	method, password, ok := strings.Cut(userinfo, ":")
	if !ok {
		return nil, fmt.Errorf("ss: malformed userinfo")
	}
	host, portStr, ok := strings.Cut(hostport, ":")
	if !ok {
		return nil, fmt.Errorf("ss: missing host:port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("ss: invalid port %q", portStr)
	}

	ss, err := valueobjects.NewSSParams(password, method, "", nil)
	if err != nil {
		return nil, fmt.Errorf("ss: %w", err)
	}

	n := node.New(node.LinkShadowsocks, "", remarks, host, uint16(port))
	n.SS = ss
	return n, nil
}
