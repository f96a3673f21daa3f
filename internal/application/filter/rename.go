package filter

import (
	"regexp"
	"strings"

	"subconverter/internal/domain/node"
)

// Rule is one compiled rename rule: pattern@replacement, applied to
// remarks in order. A bare pattern (no "@") means replace matches with the
// empty string, per spec.md §4.4.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// ParseRule compiles a "pattern@replacement" spec into a Rule. Replacement
// may use regex capture-group back-references ($1, ${name}) since the
// underlying engine is Go's regexp, which spec.md §4.4 requires.
func ParseRule(spec string) (Rule, error) {
	pattern, replacement, _ := strings.Cut(spec, "@")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Pattern: re, Replacement: replacement}, nil
}

// ParseRules compiles a list of "pattern@replacement" specs, skipping any
// that fail to compile.
func ParseRules(specs []string) []Rule {
	var rules []Rule
	for _, s := range specs {
		if s == "" {
			continue
		}
		r, err := ParseRule(s)
		if err != nil {
			continue
		}
		rules = append(rules, r)
	}
	return rules
}

// ApplyRename applies every rule in order to each node's remarks.
func ApplyRename(nodes []*node.Node, rules []Rule) {
	for _, n := range nodes {
		for _, r := range rules {
			n.Remarks = r.Pattern.ReplaceAllString(n.Remarks, r.Replacement)
		}
	}
}
