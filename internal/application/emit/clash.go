package emit

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/ruleset"
)

// Clash renders nodes, a parsed base_config, extra groups and ruleset
// entries into a Clash (or ClashR, when clashR is set) YAML document, per
// spec.md §4.6. rules holds every resolved ruleset.Entry; overwriteRules
// mirrors preferences' overwrite_original_rules.
func Clash(nodes []*node.Node, baseConfig string, groups []ExtraGroup, rules []*ruleset.Entry, overwriteRules, clashR bool, ext Ext) (string, error) {
	var doc yaml.Node
	if strings.TrimSpace(baseConfig) != "" {
		if err := yaml.Unmarshal([]byte(baseConfig), &doc); err != nil {
			return "", fmt.Errorf("emit: parse clash base config: %w", err)
		}
	}
	root := documentRoot(&doc)

	proxyNames := make([]string, 0, len(nodes))
	proxySeq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, n := range nodes {
		entry, ok := clashProxyNode(n, clashR, ext)
		if !ok {
			continue
		}
		proxySeq.Content = append(proxySeq.Content, entry)
		proxyNames = append(proxyNames, remarksWithProxyType(n, ext))
	}
	setMappingKey(root, "Proxy", proxySeq)

	if !ext.NodeList {
		groupSeq := existingSequence(root, "Proxy Group")
		for _, g := range groups {
			members := g.ResolveMembers(nodes)
			entry := clashGroupNode(g, members)
			groupSeq = upsertByName(groupSeq, entry)
		}
		setMappingKey(root, "Proxy Group", groupSeq)

		ruleSeq := buildRuleSequence(root, rules, overwriteRules)
		setMappingKey(root, "Rule", ruleSeq)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("emit: marshal clash yaml: %w", err)
	}
	return string(out), nil
}

// documentRoot returns the top-level mapping node of doc, creating an
// empty one if doc is the zero value (no base config supplied) or a
// DocumentNode wrapper.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == 0 {
		*doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.MappingNode})
		}
		return doc.Content[0]
	}
	return doc
}

func setMappingKey(root *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			root.Content[i+1] = value
			return
		}
	}
	root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
}

func existingSequence(root *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key && root.Content[i+1].Kind == yaml.SequenceNode {
			return root.Content[i+1]
		}
	}
	return &yaml.Node{Kind: yaml.SequenceNode}
}

// upsertByName replaces the sequence entry whose "name" field matches
// entry's, or appends entry if no such group exists yet, per §4.6's
// "If a group with the same name already exists... it is replaced in
// place; otherwise appended."
func upsertByName(seq *yaml.Node, entry *yaml.Node) *yaml.Node {
	name := mappingValue(entry, "name")
	for i, existing := range seq.Content {
		if mappingValue(existing, "name") == name {
			seq.Content[i] = entry
			return seq
		}
	}
	seq.Content = append(seq.Content, entry)
	return seq
}

func mappingValue(mapping *yaml.Node, key string) string {
	if mapping == nil {
		return ""
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1].Value
		}
	}
	return ""
}

func scalar(v string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Value: v} }

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func mapPair(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

// clashProxyNode builds one Proxy: entry. ok is false when n's protocol or
// transport can't be represented in Clash (VMess over kcp/h2/quic; SSR
// when clashR is not set), per §4.6.
func clashProxyNode(n *node.Node, clashR bool, ext Ext) (*yaml.Node, bool) {
	name := remarksWithProxyType(n, ext)
	content := []*yaml.Node{
		scalar("name"), scalar(name),
		scalar("server"), scalar(n.Server),
		scalar("port"), intNode(int(n.Port)),
	}

	switch n.Type {
	case node.LinkVMess:
		if n.VMess.Transport == "kcp" || n.VMess.Transport == "h2" || n.VMess.Transport == "quic" {
			return nil, false
		}
		content = append(content,
			scalar("type"), scalar("vmess"),
			scalar("uuid"), scalar(n.VMess.UUID),
			scalar("alterId"), intNode(n.VMess.AlterID),
			scalar("cipher"), scalar(n.VMess.Cipher),
			scalar("tls"), boolNode(n.VMess.TLS),
		)
		if n.VMess.Transport == "ws" {
			content = append(content,
				scalar("network"), scalar("ws"),
				scalar("ws-path"), scalar(n.VMess.Path),
				scalar("ws-headers"), mapPair(scalar("Host"), scalar(n.VMess.HostHeader)),
			)
		}

	case node.LinkShadowsocks:
		content = append(content,
			scalar("type"), scalar("ss"),
			scalar("cipher"), scalar(n.SS.Method),
			scalar("password"), scalar(n.SS.Password),
		)
		if n.SS.Plugin != "" {
			content = append(content, scalar("plugin"), scalar(n.SS.Plugin))
			if m := n.SS.Opts.ToMap(); len(m) > 0 {
				content = append(content, scalar("plugin-opts"), pluginOptsNode(m))
			}
		}

	case node.LinkShadowsocksR:
		if !clashR {
			return nil, false
		}
		content = append(content,
			scalar("type"), scalar("ssr"),
			scalar("cipher"), scalar(n.SSR.Method),
			scalar("password"), scalar(n.SSR.Password),
			scalar("protocol"), scalar(n.SSR.Protocol),
			scalar("protocol-param"), scalar(n.SSR.ProtocolParam),
			scalar("obfs"), scalar(n.SSR.Obfs),
			scalar("obfs-param"), scalar(n.SSR.ObfsParam),
		)

	case node.LinkSOCKS5:
		content = append(content, scalar("type"), scalar("socks5"))
		if n.SocksHTTP.HasAuth() {
			content = append(content, scalar("username"), scalar(n.SocksHTTP.Username), scalar("password"), scalar(n.SocksHTTP.Password))
		}

	case node.LinkHTTP, node.LinkHTTPS:
		content = append(content,
			scalar("type"), scalar("http"),
			scalar("tls"), boolNode(n.Type == node.LinkHTTPS),
		)
		if n.SocksHTTP.HasAuth() {
			content = append(content, scalar("username"), scalar(n.SocksHTTP.Username), scalar("password"), scalar(n.SocksHTTP.Password))
		}

	default:
		return nil, false
	}

	if ext.UDP {
		content = append(content, scalar("udp"), boolNode(true))
	}
	if ext.TFO {
		content = append(content, scalar("tfo"), boolNode(true))
	}

	return &yaml.Node{Kind: yaml.MappingNode, Content: content}, true
}

func pluginOptsNode(m map[string]string) *yaml.Node {
	content := make([]*yaml.Node, 0, len(m)*2)
	for k, v := range m {
		content = append(content, scalar(k), scalar(v))
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: content}
}

func clashGroupNode(g ExtraGroup, members []string) *yaml.Node {
	proxySeq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, m := range members {
		proxySeq.Content = append(proxySeq.Content, scalar(m))
	}
	content := []*yaml.Node{
		scalar("name"), scalar(g.Name),
		scalar("type"), scalar(string(g.Kind)),
		scalar("proxies"), proxySeq,
	}
	if g.Kind != GroupSelect {
		content = append(content, scalar("url"), scalar(g.TestURL), scalar("interval"), intNode(g.Interval))
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: content}
}

// buildRuleSequence merges resolved ruleset entries into root's existing
// Rule: sequence per §4.5: replace wholesale when overwrite is set,
// otherwise append after whatever rules the base config already carried.
func buildRuleSequence(root *yaml.Node, rules []*ruleset.Entry, overwrite bool) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	if !overwrite {
		seq = existingSequence(root, "Rule")
	}
	for _, e := range rules {
		if e.Empty() {
			continue
		}
		for _, line := range e.NormalizedLines() {
			seq.Content = append(seq.Content, scalar(line))
		}
	}
	return seq
}
