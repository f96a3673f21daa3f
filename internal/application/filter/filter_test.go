package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subconverter/internal/domain/node"
)

func nodeWithRemarks(remarks string) *node.Node {
	return node.New(node.LinkSOCKS5, "", remarks, "example.com", 1080)
}

func TestApply_EmptyIncludeKeepsAllButExcluded(t *testing.T) {
	nodes := []*node.Node{nodeWithRemarks("HK-01"), nodeWithRemarks("US-01"), nodeWithRemarks("HK-expired")}
	exclude := CompilePatterns([]string{"expired"})
	kept := Apply(nodes, nil, exclude)
	require.Len(t, kept, 2)
	assert.Equal(t, "HK-01", kept[0].Remarks)
	assert.Equal(t, "US-01", kept[1].Remarks)
}

func TestApply_IncludeRequiresAtLeastOneMatch(t *testing.T) {
	nodes := []*node.Node{nodeWithRemarks("HK-01"), nodeWithRemarks("US-01")}
	include := CompilePatterns([]string{"^HK"})
	kept := Apply(nodes, include, nil)
	require.Len(t, kept, 1)
	assert.Equal(t, "HK-01", kept[0].Remarks)
}

func TestApply_ExcludeWinsOverInclude(t *testing.T) {
	nodes := []*node.Node{nodeWithRemarks("HK-01-expired")}
	include := CompilePatterns([]string{"^HK"})
	exclude := CompilePatterns([]string{"expired"})
	kept := Apply(nodes, include, exclude)
	assert.Empty(t, kept)
}

func TestCompilePatterns_SkipsInvalidRegex(t *testing.T) {
	compiled := CompilePatterns([]string{"(", "valid.*"})
	assert.Len(t, compiled, 1)
}

func TestApplyRename_BareReplacesWithEmpty(t *testing.T) {
	nodes := []*node.Node{nodeWithRemarks("HK-01 (premium)")}
	rules := ParseRules([]string{` \(premium\)`})
	ApplyRename(nodes, rules)
	assert.Equal(t, "HK-01", nodes[0].Remarks)
}

func TestApplyRename_BackreferenceSubstitution(t *testing.T) {
	nodes := []*node.Node{nodeWithRemarks("[HK]01")}
	rules := ParseRules([]string{`\[(\w+)\](\d+)@$1-$2`})
	ApplyRename(nodes, rules)
	assert.Equal(t, "HK-01", nodes[0].Remarks)
}

func TestApplyRename_SkipsInvalidPattern(t *testing.T) {
	rules := ParseRules([]string{"(@bad"})
	assert.Empty(t, rules)
}

func TestRemoveOldEmoji_StripsRepeatedLeadingEmoji(t *testing.T) {
	got := RemoveOldEmoji("\U0001F1ED\U0001F1F0 HK-01")
	assert.Equal(t, " HK-01", got)
}

func TestRemoveOldEmoji_LeavesNonEmojiRemarksAlone(t *testing.T) {
	assert.Equal(t, "HK-01", RemoveOldEmoji("HK-01"))
}

func TestAddEmoji_PrefixesFirstMatch(t *testing.T) {
	table := ParseEmojiRules([]string{"HK,🇭🇰", "US,🇺🇸"})
	got := AddEmoji("HK-01", table)
	assert.Equal(t, "🇭🇰 HK-01", got)
}

func TestAddEmoji_NoMatchLeavesRemarksUnchanged(t *testing.T) {
	table := ParseEmojiRules([]string{"US,🇺🇸"})
	got := AddEmoji("HK-01", table)
	assert.Equal(t, "HK-01", got)
}

func TestApplyEmoji_RemoveThenAdd(t *testing.T) {
	nodes := []*node.Node{nodeWithRemarks("\U0001F1FA\U0001F1F8 HK-01")}
	table := ParseEmojiRules([]string{"HK,🇭🇰"})
	ApplyEmoji(nodes, true, true, table)
	assert.Equal(t, "🇭🇰  HK-01", nodes[0].Remarks)
}
