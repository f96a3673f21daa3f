package emit

import (
	"bytes"
	"fmt"

	"gopkg.in/ini.v1"

	"subconverter/internal/domain/node"
)

// Mellow renders nodes and extra groups into Mellow's INI shape: one
// [Endpoint] line per node encoding V2Ray outbound semantics on a single
// line, and one [EndpointGroup] line per extra group, per §4.6.
func Mellow(nodes []*node.Node, groups []ExtraGroup, ext Ext) (string, error) {
	f := ini.Empty(ini.LoadOptions{AllowShadows: true})

	endpoints, err := f.NewSection("Endpoint")
	if err != nil {
		return "", fmt.Errorf("emit: mellow endpoint section: %w", err)
	}
	for _, n := range nodes {
		line, ok := mellowEndpointLine(n, ext)
		if !ok {
			continue
		}
		name := remarksWithProxyType(n, ext)
		if _, err := endpoints.NewKey(name, line); err != nil {
			return "", fmt.Errorf("emit: mellow endpoint line: %w", err)
		}
	}

	if !ext.NodeList {
		groupSection, err := f.NewSection("EndpointGroup")
		if err != nil {
			return "", fmt.Errorf("emit: mellow endpointgroup section: %w", err)
		}
		for _, g := range groups {
			members := g.ResolveMembers(nodes)
			line := ""
			for i, m := range members {
				if i > 0 {
					line += ", "
				}
				line += m
			}
			if _, err := groupSection.NewKey(g.Name, line); err != nil {
				return "", fmt.Errorf("emit: mellow endpointgroup line: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("emit: render mellow ini: %w", err)
	}
	return buf.String(), nil
}

// mellowEndpointLine renders one node's V2Ray-outbound-shaped line: a
// leading protocol tag, host:port, then the key=value fields Mellow's
// outbound descriptor needs for that protocol. ok is false for protocols
// Mellow has no outbound for (SOCKS5/HTTP have no V2Ray outbound form
// here).
func mellowEndpointLine(n *node.Node, ext Ext) (string, bool) {
	switch n.Type {
	case node.LinkShadowsocks:
		line := fmt.Sprintf("ss, %s:%d, method=%s, password=%s", n.Server, n.Port, n.SS.Method, n.SS.Password)
		if n.SS.Plugin != "" {
			line += fmt.Sprintf(", plugin=%s", n.SS.Plugin)
			if m := n.SS.Opts.String(); m != "" {
				line += fmt.Sprintf(", plugin-opts=%s", m)
			}
		}
		return withMellowTFOUDP(line, ext), true

	case node.LinkVMess:
		line := fmt.Sprintf("vmess, %s:%d, id=%s, alterId=%d, security=%s", n.Server, n.Port, n.VMess.UUID, n.VMess.AlterID, n.VMess.Cipher)
		if n.VMess.Transport != "" && n.VMess.Transport != "tcp" {
			line += fmt.Sprintf(", network=%s", n.VMess.Transport)
		}
		if n.VMess.Transport == "ws" {
			line += fmt.Sprintf(", ws-path=%s, ws-host=%s", n.VMess.Path, n.VMess.HostHeader)
		}
		if n.VMess.TLS {
			line += ", tls=true"
		}
		return withMellowTFOUDP(line, ext), true

	default:
		return "", false
	}
}

func withMellowTFOUDP(line string, ext Ext) string {
	if ext.TFO {
		line += ", tfo=true"
	}
	if ext.UDP {
		line += ", udp=true"
	}
	return line
}
