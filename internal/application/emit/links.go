package emit

import (
	"encoding/json"
	"fmt"
	"strings"

	"subconverter/internal/application/parser/link"
	"subconverter/internal/domain/node"
)

// linkFor renders a single node as its native URI scheme. It returns an
// error for protocols with no link form here (SOCKS5, HTTP, HTTPS); callers
// skip those nodes.
func linkFor(n *node.Node, ext Ext) (string, error) {
	remarks := remarksWithProxyType(n, ext)
	switch n.Type {
	case node.LinkShadowsocks:
		userInfo := link.EncodeBase64URLNoPad([]byte(n.SS.UserInfo()))
		return n.SS.ToSIP002URI(userInfo, n.Server, n.Port, remarks), nil
	case node.LinkShadowsocksR:
		passwordB64 := link.EncodeBase64URLNoPad([]byte(n.SSR.Password))
		remarksB64 := link.EncodeBase64URLNoPad([]byte(remarks))
		protoParamB64 := ""
		if n.SSR.ProtocolParam != "" {
			protoParamB64 = link.EncodeBase64URLNoPad([]byte(n.SSR.ProtocolParam))
		}
		obfsParamB64 := ""
		if n.SSR.ObfsParam != "" {
			obfsParamB64 = link.EncodeBase64URLNoPad([]byte(n.SSR.ObfsParam))
		}
		body := n.SSR.ToURI(n.Server, n.Port, passwordB64, remarksB64, protoParamB64, obfsParamB64)
		return "ssr://" + link.EncodeBase64URLNoPad([]byte(body)), nil
	case node.LinkVMess:
		body, err := n.VMess.ToURI(n.Server, n.Port, remarks)
		if err != nil {
			return "", err
		}
		return "vmess://" + link.EncodeBase64([]byte(body)), nil
	default:
		return "", fmt.Errorf("emit: %s cannot represent %s", "link", n.Type)
	}
}

// EmitList renders every representable node as a native link and joins
// them with "\n", skipping protocols this dialect can't carry. Used by
// the SS/SSR/V2Ray plain-list dialects where all three share the same
// "one scheme per node, skip the rest" shape.
func EmitList(nodes []*node.Node, only node.LinkType, ext Ext) string {
	var lines []string
	for _, n := range nodes {
		if n.Type != only {
			continue
		}
		line, err := linkFor(n, ext)
		if err != nil {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// EmitMixedList renders every node linkFor can represent (SS, SSR, VMess),
// in input order, for dialects (Quantumult classic) that mix schemes in
// one list rather than a single-protocol export.
func EmitMixedList(nodes []*node.Node, ext Ext) string {
	var lines []string
	for _, n := range nodes {
		line, err := linkFor(n, ext)
		if err != nil {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// EmitQuantumultX renders QuantumultX's own "key = value, param=..." line
// format, which differs from classic Quantumult's raw-link list: one line
// per node using QuantumultX's resource-line grammar.
func EmitQuantumultX(nodes []*node.Node, ext Ext) string {
	var lines []string
	for _, n := range nodes {
		line, ok := quantumultXLine(n, ext)
		if ok {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func quantumultXLine(n *node.Node, ext Ext) (string, bool) {
	remarks := remarksWithProxyType(n, ext)
	switch n.Type {
	case node.LinkShadowsocks:
		line := fmt.Sprintf("shadowsocks = %s:%d, method=%s, password=%s, tag=%s",
			n.Server, n.Port, n.SS.Method, n.SS.Password, remarks)
		if n.SS.Plugin == "obfs-local" {
			if mode, ok := n.SS.Opts.Get("obfs"); ok {
				line += fmt.Sprintf(", obfs=%s", mode)
			}
			if host, ok := n.SS.Opts.Get("obfs-host"); ok {
				line += fmt.Sprintf(", obfs-host=%s", host)
			}
		}
		return withTFOUDP(line, ext), true
	case node.LinkVMess:
		line := fmt.Sprintf("vmess = %s:%d, method=%s, password=%s, tag=%s",
			n.Server, n.Port, n.VMess.Cipher, n.VMess.UUID, remarks)
		switch n.VMess.Transport {
		case "ws":
			line += fmt.Sprintf(", obfs=ws, obfs-uri=%s, obfs-host=%s", n.VMess.Path, n.VMess.HostHeader)
		}
		if n.VMess.TLS {
			line += ", tls=true"
		}
		return withTFOUDP(line, ext), true
	case node.LinkSOCKS5:
		line := fmt.Sprintf("socks5 = %s:%d, tag=%s", n.Server, n.Port, remarks)
		if n.SocksHTTP.HasAuth() {
			line += fmt.Sprintf(", username=%s, password=%s", n.SocksHTTP.Username, n.SocksHTTP.Password)
		}
		return withTFOUDP(line, ext), true
	case node.LinkHTTP, node.LinkHTTPS:
		line := fmt.Sprintf("http = %s:%d, tag=%s", n.Server, n.Port, remarks)
		if n.SocksHTTP.HasAuth() {
			line += fmt.Sprintf(", username=%s, password=%s", n.SocksHTTP.Username, n.SocksHTTP.Password)
		}
		if n.Type == node.LinkHTTPS {
			line += ", over-tls=true"
		}
		return withTFOUDP(line, ext), true
	default:
		return "", false
	}
}

func withTFOUDP(line string, ext Ext) string {
	if ext.TFO {
		line += ", fast-open=true"
	}
	if ext.UDP {
		line += ", udp-relay=true"
	}
	return line
}

// EmitSSD renders the documented SSD envelope and base64-wraps it with the
// "ssd://" prefix. Only Shadowsocks nodes are representable; other
// protocols are skipped.
func EmitSSD(nodes []*node.Node, airport string, ext Ext) (string, error) {
	servers := make([]ssdServerDoc, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != node.LinkShadowsocks {
			continue
		}
		servers = append(servers, ssdServerDoc{
			ID:         n.ID,
			Remarks:    remarksWithProxyType(n, ext),
			Server:     n.Server,
			Port:       n.Port,
			Password:   n.SS.Password,
			Encryption: n.SS.Method,
		})
	}
	doc := ssdDocOut{
		Airport:    airport,
		Port:       0,
		Encryption: "",
		Password:   "",
		Servers:    servers,
	}
	body, err := marshalSSD(doc)
	if err != nil {
		return "", err
	}
	return "ssd://" + link.EncodeBase64([]byte(body)), nil
}

type ssdServerDoc struct {
	ID         int    `json:"id"`
	Remarks    string `json:"remarks"`
	Server     string `json:"server"`
	Port       uint16 `json:"port"`
	Encryption string `json:"encryption"`
	Password   string `json:"password"`
}

type ssdDocOut struct {
	Airport    string         `json:"airport"`
	Port       int            `json:"port"`
	Encryption string         `json:"encryption"`
	Password   string         `json:"password"`
	Servers    []ssdServerDoc `json:"servers"`
}

func marshalSSD(doc ssdDocOut) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("emit: marshal ssd: %w", err)
	}
	return string(data), nil
}
