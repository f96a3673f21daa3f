package emit

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/ruleset"
)

// SurgeVersion selects the node-line dialect §4.6 specifies for Surge.
type SurgeVersion int

const (
	Surge2 SurgeVersion = 2
	Surge3 SurgeVersion = 3
	Surge4 SurgeVersion = 4
)

func loadBaseINI(baseConfig string) (*ini.File, error) {
	opts := ini.LoadOptions{AllowShadows: true, IgnoreInlineComment: true, SkipUnrecognizableLines: true}
	if strings.TrimSpace(baseConfig) == "" {
		return ini.LoadSources(opts, []byte(""))
	}
	return ini.LoadSources(opts, []byte(baseConfig))
}

// Surge renders nodes, groups and rules into a Surge (v2/v3/v4) config,
// starting from base_config parsed as an INI document so section order and
// any sections other than [Proxy]/[Proxy Group]/[Rule] survive untouched.
func Surge(version SurgeVersion, nodes []*node.Node, baseConfig string, groups []ExtraGroup, rules []*ruleset.Entry, overwriteRules bool, ext Ext) (string, error) {
	f, err := loadBaseINI(baseConfig)
	if err != nil {
		return "", fmt.Errorf("emit: parse surge base config: %w", err)
	}

	proxySection, err := f.NewSection("Proxy")
	if err != nil {
		return "", fmt.Errorf("emit: surge proxy section: %w", err)
	}
	for _, k := range proxySection.Keys() {
		proxySection.DeleteKey(k.Name())
	}

	for _, n := range nodes {
		line, ok := surgeNodeLine(version, n, ext)
		if !ok {
			continue
		}
		name := remarksWithProxyType(n, ext)
		if _, err := proxySection.NewKey(name, line); err != nil {
			return "", fmt.Errorf("emit: surge proxy line: %w", err)
		}
	}

	if !ext.NodeList {
		groupSection, err := f.NewSection("Proxy Group")
		if err != nil {
			return "", fmt.Errorf("emit: surge group section: %w", err)
		}
		for _, g := range groups {
			members := g.ResolveMembers(nodes)
			groupSection.DeleteKey(g.Name)
			if _, err := groupSection.NewKey(g.Name, surgeGroupLine(g, members)); err != nil {
				return "", fmt.Errorf("emit: surge group line: %w", err)
			}
		}

		ruleSection, err := f.NewSection("Rule")
		if err != nil {
			return "", fmt.Errorf("emit: surge rule section: %w", err)
		}
		if overwriteRules {
			for _, k := range ruleSection.Keys() {
				ruleSection.DeleteKey(k.Name())
			}
		}
		for _, e := range rules {
			if e.Empty() {
				continue
			}
			for _, line := range e.NormalizedLines() {
				if _, err := ruleSection.NewBooleanKey(line); err != nil {
					return "", fmt.Errorf("emit: surge rule line: %w", err)
				}
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("emit: render surge ini: %w", err)
	}
	return buf.String(), nil
}

// surgeNodeLine renders one node's "spec" value under [Proxy], per §4.6's
// version-specific dialect. ok is false when version can't represent n's
// protocol (VMess on v2/v3).
func surgeNodeLine(version SurgeVersion, n *node.Node, ext Ext) (string, bool) {
	switch n.Type {
	case node.LinkShadowsocks:
		if version == Surge2 {
			line := fmt.Sprintf("custom, %s, %d, %s, %s, %s", n.Server, n.Port, n.SS.Method, n.SS.Password, ext.SurgeSSRPath)
			if mode, ok := n.SS.Opts.Get("obfs"); ok {
				line += fmt.Sprintf(", obfs=%s", mode)
				if host, ok := n.SS.Opts.Get("obfs-host"); ok {
					line += fmt.Sprintf(", obfs-host=%s", host)
				}
			}
			return withSurgeTFOUDP(line, ext), true
		}
		line := fmt.Sprintf("ss, %s, %d, encrypt-method=%s, password=%s", n.Server, n.Port, n.SS.Method, n.SS.Password)
		if mode, ok := n.SS.Opts.Get("obfs"); ok {
			line += fmt.Sprintf(", obfs=%s", mode)
			if host, ok := n.SS.Opts.Get("obfs-host"); ok {
				line += fmt.Sprintf(", obfs-host=%s", host)
			}
		}
		return withSurgeTFOUDP(line, ext), true

	case node.LinkSOCKS5:
		if version == Surge2 {
			return "", false
		}
		line := fmt.Sprintf("socks5, %s, %d", n.Server, n.Port)
		if n.SocksHTTP.HasAuth() {
			line += fmt.Sprintf(", username=%s, password=%s", n.SocksHTTP.Username, n.SocksHTTP.Password)
		}
		return withSurgeTFOUDP(line, ext), true

	case node.LinkHTTP, node.LinkHTTPS:
		if version == Surge2 {
			return "", false
		}
		kind := "http"
		if n.Type == node.LinkHTTPS {
			kind = "https"
		}
		line := fmt.Sprintf("%s, %s, %d", kind, n.Server, n.Port)
		if n.SocksHTTP.HasAuth() {
			line += fmt.Sprintf(", username=%s, password=%s", n.SocksHTTP.Username, n.SocksHTTP.Password)
		}
		return line, true

	case node.LinkVMess:
		if version != Surge4 {
			return "", false
		}
		line := fmt.Sprintf("vmess, %s, %d, username=%s", n.Server, n.Port, n.VMess.UUID)
		if n.VMess.Transport == "ws" {
			line += fmt.Sprintf(", ws=true, ws-path=%s, ws-headers=Host:%s", n.VMess.Path, n.VMess.HostHeader)
		}
		if n.VMess.TLS {
			line += ", tls=true"
		}
		return withSurgeTFOUDP(line, ext), true

	default:
		return "", false
	}
}

func withSurgeTFOUDP(line string, ext Ext) string {
	if ext.TFO {
		line += ", tfo=true"
	}
	if ext.UDP {
		line += ", udp-relay=true"
	}
	return line
}

func surgeGroupLine(g ExtraGroup, members []string) string {
	line := string(g.Kind)
	if g.Kind != GroupSelect {
		line += fmt.Sprintf(", url=%s, interval=%d", g.TestURL, g.Interval)
	}
	for _, m := range members {
		line += ", " + m
	}
	return line
}

// ManagedConfigPreamble builds the "#!MANAGED-CONFIG ..." line §4.6
// requires Surge/Surfboard to prepend when write_managed_config and
// managed_config_prefix are set and the request is not a plain nodelist.
func ManagedConfigPreamble(prefix, rawQuery string, nodeList bool) string {
	if prefix == "" || nodeList {
		return ""
	}
	return "#!MANAGED-CONFIG " + prefix + "/sub?" + rawQuery + "\n\n"
}
