package container

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// clashDoc is the subset of a Clash configuration this parser reads: the
// Proxy list it converts, and the raw Proxy Group block ClashProxyGroups
// returns.
type clashDoc struct {
	Proxy      []clashProxyEntry `yaml:"Proxy"`
	ProxyGroup yaml.Node         `yaml:"Proxy Group"`
}

type clashProxyEntry struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Server     string            `yaml:"server"`
	Port       int               `yaml:"port"`
	UUID       string            `yaml:"uuid"`
	AlterID    int               `yaml:"alterId"`
	Cipher     string            `yaml:"cipher"`
	Password   string            `yaml:"password"`
	Network    string            `yaml:"network"`
	WSPath     string            `yaml:"ws-path"`
	WSHeaders  map[string]string `yaml:"ws-headers"`
	TLS        bool              `yaml:"tls"`
	Plugin     string            `yaml:"plugin"`
	PluginOpts map[string]any    `yaml:"plugin-opts"`
	Protocol   string            `yaml:"protocol"`
	ProtoParam string            `yaml:"protocol-param"`
	Obfs       string            `yaml:"obfs"`
	ObfsParam  string            `yaml:"obfs-param"`
	Username   string            `yaml:"username"`
}

// LooksLikeClash reports whether body parses as YAML with a top-level
// Proxy list, the detection predicate step 2 of spec.md §4.3's order
// relies on.
func LooksLikeClash(body string) bool {
	var doc clashDoc
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return false
	}
	return len(doc.Proxy) > 0
}

// ParseClash converts every entry in a Clash Proxy: list, dispatching on
// type per spec.md §4.3. Entries with an unrecognized type or that fail
// their protocol-specific validation are skipped rather than aborting the
// whole document.
func ParseClash(body string) []*node.Node {
	var doc clashDoc
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return nil
	}

	var nodes []*node.Node
	for _, e := range doc.Proxy {
		n, err := clashNode(e)
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func clashNode(e clashProxyEntry) (*node.Node, error) {
	if e.Port < 1 || e.Port > 65535 {
		return nil, fmt.Errorf("clash proxy %q: invalid port %d", e.Name, e.Port)
	}
	port := uint16(e.Port)

	switch e.Type {
	case "vmess":
		hostHeader := e.WSHeaders["Host"]
		params, err := valueobjects.NewVMessParams(e.Server, e.UUID, e.AlterID, e.Cipher, e.Network, e.WSPath, hostHeader, e.TLS, "")
		if err != nil {
			return nil, err
		}
		n := node.New(node.LinkVMess, "", e.Name, e.Server, port)
		n.VMess = params
		return n, nil

	case "ss":
		plugin, opts := clashPluginOpts(e.Plugin, e.PluginOpts)
		ss, err := valueobjects.NewSSParams(e.Password, e.Cipher, plugin, opts)
		if err != nil {
			return nil, err
		}
		n := node.New(node.LinkShadowsocks, "", e.Name, e.Server, port)
		n.SS = ss
		return n, nil

	case "ssr":
		ssr, err := valueobjects.NewSSRParams(e.Password, e.Cipher, orDefault(e.Protocol, "origin"), e.ProtoParam, orDefault(e.Obfs, "plain"), e.ObfsParam)
		if err != nil {
			return nil, err
		}
		n := node.New(node.LinkShadowsocksR, "", e.Name, e.Server, port)
		n.SSR = ssr
		if err := n.NormalizeSSR(); err != nil {
			return nil, err
		}
		return n, nil

	case "socks", "socks5":
		n := node.New(node.LinkSOCKS5, "", e.Name, e.Server, port)
		n.SocksHTTP = valueobjects.NewSocksHTTPParams(e.Username, e.Password, false)
		return n, nil

	case "http":
		t := node.LinkHTTP
		if e.TLS {
			t = node.LinkHTTPS
		}
		n := node.New(t, "", e.Name, e.Server, port)
		n.SocksHTTP = valueobjects.NewSocksHTTPParams(e.Username, e.Password, e.TLS)
		return n, nil

	default:
		return nil, fmt.Errorf("clash proxy %q: unrecognized type %q", e.Name, e.Type)
	}
}

// ClashProxyGroups returns the raw "Proxy Group" YAML node from body. ok is
// false when the document has no Proxy Group section. The conversion
// pipeline does not call it: the Clash emitter builds its groups from the
// base config and the extra groups only, so a subscription's own groups do
// not reach the output.
func ClashProxyGroups(body string) (group yaml.Node, ok bool) {
	var doc clashDoc
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return yaml.Node{}, false
	}
	if doc.ProxyGroup.Kind == 0 {
		return yaml.Node{}, false
	}
	return doc.ProxyGroup, true
}

// clashPluginOpts folds Clash's plugin-opts.mode/.host into the canonical
// plugin_opts shape, per spec.md §4.3's Clash YAML subsection. Clash's
// plugin-opts is a free-form map (other plugins carry other keys), so
// every key is carried through, not just mode/host.
func clashPluginOpts(plugin string, raw map[string]any) (string, valueobjects.PluginOpts) {
	if plugin == "" {
		return "", nil
	}
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		m[k] = fmt.Sprint(v)
	}
	return plugin, valueobjects.PluginOptsFromMap(m)
}
