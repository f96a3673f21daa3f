// Package filter applies the include/exclude, rename, and emoji
// transforms of spec.md §4.4 to a node list. Every function here is pure:
// the rename/emoji tables and include/exclude pattern lists are passed in
// by the caller (the orchestrator, reading a configuration snapshot) per
// REDESIGN FLAGS's "replace process-globals with a single configuration
// snapshot value" — this package holds no mutable state of its own.
package filter

import (
	"regexp"

	"subconverter/internal/domain/node"
)

// CompilePatterns compiles each pattern string, skipping ones that fail to
// compile rather than aborting the whole list — a malformed include/exclude
// pattern from a request query param should not take down the conversion.
func CompilePatterns(patterns []string) []*regexp.Regexp {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// Apply keeps a node iff (include is empty OR at least one include pattern
// matches its remarks) AND no exclude pattern matches, per spec.md §4.4.
func Apply(nodes []*node.Node, include, exclude []*regexp.Regexp) []*node.Node {
	var kept []*node.Node
	for _, n := range nodes {
		if !matchesAny(include, n.Remarks) && len(include) > 0 {
			continue
		}
		if matchesAny(exclude, n.Remarks) {
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
