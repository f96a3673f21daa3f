package container

import (
	"strings"

	"subconverter/internal/application/parser/link"
	"subconverter/internal/domain/node"
)

// Parse applies spec.md §4.3's auto-detection order to an entire
// subscription body and returns every node it can extract. Formats are
// tried in a fixed precedence (ssd, Clash, Surge, then a sequence of
// JSON shapes keyed by a distinguishing field name) since a
// document can ambiguously satisfy more than one predicate — a body with
// both a top-level Proxy: YAML key and a [Proxy] INI section is
// ill-formed but not rejected upstream, and Clash wins per spec.md.
func Parse(body string) []*node.Node {
	body = strings.TrimSpace(body)

	switch {
	case strings.HasPrefix(body, "ssd://"):
		return ParseSSD(body)
	case LooksLikeClash(body):
		return ParseClash(body)
	case LooksLikeSurge(body):
		return ParseSurge(body)
	case hasJSONKey(body, "version"):
		return ParseWindowsSS(body)
	case hasJSONKey(body, "serverSubscribes"):
		return ParseWindowsSSR(body)
	case hasJSONKey(body, "vnext") || hasJSONKey(body, "uiItem"):
		return ParseV2RayN(body)
	case hasJSONKey(body, "proxy_apps"):
		return ParseSSAndroid(body)
	case hasJSONKey(body, "idInUse"):
		return ParseSSTap(body)
	case hasJSONKey(body, "local_address") && hasJSONKey(body, "local_port"):
		return ParseLibev(body)
	case hasJSONKey(body, "ModeFileNameType"):
		return ParseNetchCollection(body)
	default:
		return link.ParseList(body)
	}
}
