package container

import (
	"encoding/json"

	"subconverter/internal/application/parser/link"
	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// windowsSSDoc is the shadowsocks-windows GUI export format, grounded on
// original_source/speedtestutil.cpp's explodeSSConf: detected by a
// top-level "version" key, per spec.md §4.3.
type windowsSSDoc struct {
	Version int              `json:"version"`
	Configs []windowsSSEntry `json:"configs"`
}

type windowsSSEntry struct {
	Remarks    string `json:"remarks"`
	Server     string `json:"server"`
	ServerPort int    `json:"server_port"`
	Password   string `json:"password"`
	Method     string `json:"method"`
	Plugin     string `json:"plugin"`
	PluginOpts string `json:"plugin_opts"`
}

// ParseWindowsSS converts a shadowsocks-windows export.
func ParseWindowsSS(raw string) []*node.Node {
	var doc windowsSSDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}

	var nodes []*node.Node
	for _, e := range doc.Configs {
		if e.ServerPort < 1 || e.ServerPort > 65535 {
			continue
		}
		var opts valueobjects.PluginOpts
		if e.PluginOpts != "" {
			_, opts = valueobjects.ParsePlugin("_;" + e.PluginOpts)
		}
		ss, err := valueobjects.NewSSParams(e.Password, e.Method, e.Plugin, opts)
		if err != nil {
			continue
		}
		n := node.New(node.LinkShadowsocks, "", e.Remarks, e.Server, uint16(e.ServerPort))
		n.SS = ss
		nodes = append(nodes, n)
	}
	return nodes
}

// windowsSSRDoc is shadowsocksr-windows's export format, grounded on
// explodeSSRConf: detected by a top-level "serverSubscribes" key. Its
// "configs" entries add group/protocol/obfs over the plain SS shape, and
// may carry remarks pre-base64-encoded in remarks_base64 when remarks
// itself is absent.
type windowsSSRDoc struct {
	ServerSubscribes []json.RawMessage `json:"serverSubscribes"`
	Configs          []windowsSSREntry `json:"configs"`
}

type windowsSSREntry struct {
	Group         string `json:"group"`
	Remarks       string `json:"remarks"`
	RemarksBase64 string `json:"remarks_base64"`
	Server        string `json:"server"`
	ServerPort    int    `json:"server_port"`
	Password      string `json:"password"`
	Method        string `json:"method"`
	Protocol      string `json:"protocol"`
	ProtocolParam string `json:"protocolparam"`
	Obfs          string `json:"obfs"`
	ObfsParam     string `json:"obfsparam"`
}

// ParseWindowsSSR converts a shadowsocksr-windows export.
func ParseWindowsSSR(raw string) []*node.Node {
	var doc windowsSSRDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}

	var nodes []*node.Node
	for _, e := range doc.Configs {
		if e.ServerPort < 1 || e.ServerPort > 65535 {
			continue
		}
		remarks := e.Remarks
		if remarks == "" && e.RemarksBase64 != "" {
			if decoded, err := link.DecodeBase64(e.RemarksBase64); err == nil {
				remarks = string(decoded)
			}
		}
		ssr, err := valueobjects.NewSSRParams(e.Password, e.Method, orDefault(e.Protocol, "origin"), e.ProtocolParam, orDefault(e.Obfs, "plain"), e.ObfsParam)
		if err != nil {
			continue
		}
		n := node.New(node.LinkShadowsocksR, e.Group, remarks, e.Server, uint16(e.ServerPort))
		n.SSR = ssr
		if err := n.NormalizeSSR(); err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// libevEntry is the single-node ss-libev/ssr-libev client config shape,
// detected by the presence of both "local_address" and "local_port" at the
// top level per spec.md §4.3 step 9. It carries SSR's optional
// protocol/obfs fields since both ss-libev and ssr-libev share this
// layout; a plain SS config simply omits them and NormalizeSSR retags it.
type libevEntry struct {
	Server        string `json:"server"`
	ServerPort    int    `json:"server_port"`
	LocalAddress  string `json:"local_address"`
	LocalPort     int    `json:"local_port"`
	Password      string `json:"password"`
	Method        string `json:"method"`
	Protocol      string `json:"protocol"`
	ProtocolParam string `json:"protocolparam"`
	Obfs          string `json:"obfs"`
	ObfsParam     string `json:"obfsparam"`
	Remarks       string `json:"remarks"`
}

// ParseLibev converts a single-node ss-libev/ssr-libev JSON config into one
// node, or nil if the document is malformed or its port is out of range.
func ParseLibev(raw string) []*node.Node {
	var e libevEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil
	}
	if e.ServerPort < 1 || e.ServerPort > 65535 {
		return nil
	}

	ssr, err := valueobjects.NewSSRParams(e.Password, e.Method, orDefault(e.Protocol, "origin"), e.ProtocolParam, orDefault(e.Obfs, "plain"), e.ObfsParam)
	if err != nil {
		return nil
	}
	n := node.New(node.LinkShadowsocksR, "", e.Remarks, e.Server, uint16(e.ServerPort))
	n.SSR = ssr
	if err := n.NormalizeSSR(); err != nil {
		return nil
	}
	return []*node.Node{n}
}
