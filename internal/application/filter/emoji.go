package filter

import (
	"regexp"
	"strings"

	"subconverter/internal/domain/node"
)

// EmojiRule is one "pattern,emoji" entry in the emoji table: remarks
// matching Pattern get Emoji prefixed, per spec.md §4.4.
type EmojiRule struct {
	Pattern *regexp.Regexp
	Emoji   string
}

// ParseEmojiRule compiles a "pattern,emoji" spec.
func ParseEmojiRule(spec string) (EmojiRule, error) {
	pattern, emoji, _ := strings.Cut(spec, ",")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return EmojiRule{}, err
	}
	return EmojiRule{Pattern: re, Emoji: strings.TrimSpace(emoji)}, nil
}

// ParseEmojiRules compiles a list of "pattern,emoji" specs, skipping any
// that fail to compile.
func ParseEmojiRules(specs []string) []EmojiRule {
	var rules []EmojiRule
	for _, s := range specs {
		if s == "" {
			continue
		}
		r, err := ParseEmojiRule(s)
		if err != nil {
			continue
		}
		rules = append(rules, r)
	}
	return rules
}

// RemoveOldEmoji repeatedly strips a leading 4-byte UTF-8 sequence whose
// first two bytes are 0xF0 0x9F (the emoji plane lead bytes) from the head
// of remarks, per spec.md §4.4.
func RemoveOldEmoji(remarks string) string {
	b := []byte(remarks)
	for len(b) >= 4 && b[0] == 0xF0 && b[1] == 0x9F {
		b = b[4:]
	}
	return string(b)
}

// AddEmoji scans table in order and prefixes remarks with the first
// matching rule's emoji plus one space. remarks is returned unchanged if
// nothing matches.
func AddEmoji(remarks string, table []EmojiRule) string {
	for _, rule := range table {
		if rule.Pattern.MatchString(remarks) {
			return rule.Emoji + " " + remarks
		}
	}
	return remarks
}

// ApplyEmoji runs RemoveOldEmoji (if removeOld) then AddEmoji (if addEmoji)
// over every node's remarks, in that order, matching spec.md §4.4's two
// independent flags.
func ApplyEmoji(nodes []*node.Node, removeOld, addEmoji bool, table []EmojiRule) {
	for _, n := range nodes {
		if removeOld {
			n.Remarks = RemoveOldEmoji(n.Remarks)
		}
		if addEmoji {
			n.Remarks = AddEmoji(n.Remarks, table)
		}
	}
}
