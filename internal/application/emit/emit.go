// Package emit renders a filtered node list plus merged rule-set lines
// into each supported output dialect, per spec.md §4.6.
package emit

import (
	"encoding/base64"
	"regexp"
	"strings"

	"subconverter/internal/domain/node"
)

// Ext carries the request/preference flags passed to every emitter, per
// §4.6's "(nodes, base_config, rulesets, extra_groups, ext)" signature.
// Each flag is a plain bool. AddEmoji and RemoveEmoji are carried but read
// by no emitter; emoji handling runs before emission, in package filter.
type Ext struct {
	AddEmoji        bool
	RemoveEmoji     bool
	AppendProxyType bool
	UDP             bool
	TFO             bool
	NodeList        bool
	SurgeSSRPath    string
}

// GroupKind enumerates the Clash extra-group kinds §4.6 names.
type GroupKind string

const (
	GroupSelect      GroupKind = "select"
	GroupURLTest     GroupKind = "url-test"
	GroupFallback    GroupKind = "fallback"
	GroupLoadBalance GroupKind = "load-balance"
)

// ExtraGroup is one parsed `custom_proxy_group` entry: a named proxy group
// whose membership is built from literal/regex selectors run against the
// node list at emission time.
type ExtraGroup struct {
	Name      string
	Kind      GroupKind
	Selectors []string
	TestURL   string
	Interval  int
}

// ParseExtraGroup parses a back-tick-delimited `custom_proxy_group` spec:
// name`kind`selector1`selector2`...[`url`interval].
func ParseExtraGroup(spec string) (ExtraGroup, error) {
	tokens := strings.Split(spec, "`")
	if len(tokens) < 3 {
		return ExtraGroup{}, errInvalidGroupSpec(spec)
	}
	g := ExtraGroup{Name: tokens[0], Kind: GroupKind(tokens[1])}
	rest := tokens[2:]

	switch g.Kind {
	case GroupSelect:
		g.Selectors = rest
	case GroupURLTest, GroupFallback, GroupLoadBalance:
		if len(rest) < 3 {
			return ExtraGroup{}, errInvalidGroupSpec(spec)
		}
		g.Selectors = rest[:len(rest)-2]
		g.TestURL = rest[len(rest)-2]
		interval, err := parsePositiveInt(rest[len(rest)-1])
		if err != nil {
			return ExtraGroup{}, errInvalidGroupSpec(spec)
		}
		g.Interval = interval
	default:
		return ExtraGroup{}, errInvalidGroupSpec(spec)
	}
	return g, nil
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, errNotANumber
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotANumber
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, errNotANumber
	}
	return n, nil
}

// ResolveMembers expands an ExtraGroup's selectors against nodes into a
// deduplicated, order-preserving member list, per §4.6: a `[]literal`
// selector includes a proxy (or pseudo-proxy DIRECT/REJECT) by exact name;
// any other selector is a regex tested against each node's remarks. An
// empty result is replaced with ["DIRECT"].
func (g ExtraGroup) ResolveMembers(nodes []*node.Node) []string {
	seen := make(map[string]bool)
	var members []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		members = append(members, name)
	}

	for _, sel := range g.Selectors {
		if literal, ok := strings.CutPrefix(sel, "[]"); ok {
			add(literal)
			continue
		}
		re, err := regexp.Compile(sel)
		if err != nil {
			continue
		}
		for _, n := range nodes {
			if re.MatchString(n.Remarks) {
				add(n.Remarks)
			}
		}
	}

	if len(members) == 0 {
		return []string{"DIRECT"}
	}
	return members
}

type groupSpecError string

func (e groupSpecError) Error() string { return string(e) }

func errInvalidGroupSpec(spec string) error {
	return groupSpecError("emit: invalid custom_proxy_group spec: " + spec)
}

const errNotANumber = groupSpecError("emit: interval must be a positive integer")

// WrapBase64 base64-encodes body, the envelope §4.6 specifies for the
// SS/SSR/VMess/Quantumult/SSD plain-list dialects (QuantumultX is exempt —
// it is consumed as plain resource lines, not a base64 blob).
func WrapBase64(body string) string {
	return base64.StdEncoding.EncodeToString([]byte(body))
}

// remarksWithProxyType appends "[protocol]" to remarks when
// ext.AppendProxyType is set, per §4.6's common contract.
func remarksWithProxyType(n *node.Node, ext Ext) string {
	if !ext.AppendProxyType {
		return n.Remarks
	}
	return n.Remarks + " [" + strings.ToUpper(n.Type.String()) + "]"
}
