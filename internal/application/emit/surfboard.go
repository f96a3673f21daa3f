package emit

import (
	"subconverter/internal/domain/node"
	"subconverter/internal/domain/ruleset"
)

// Surfboard renders the same [Proxy]/[Proxy Group]/[Rule] shape as Surge
// v2, against Surfboard's own base config; VMess is unsupported, per
// §4.6's "Same as Surge v2 path but with Surfboard's own base".
func Surfboard(nodes []*node.Node, baseConfig string, groups []ExtraGroup, rules []*ruleset.Entry, overwriteRules bool, ext Ext) (string, error) {
	return Surge(Surge2, nodes, baseConfig, groups, rules, overwriteRules, ext)
}
