package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
	"subconverter/internal/domain/ruleset"
)

func TestClash_VMessWSEntry(t *testing.T) {
	params, err := valueobjects.NewVMessParams("1.2.3.4", "11111111-1111-1111-1111-111111111111", 0, "auto", "ws", "/p", "ex.com", true, "none")
	require.NoError(t, err)
	n := node.New(node.LinkVMess, "", "A", "1.2.3.4", 443)
	n.VMess = params

	out, err := Clash([]*node.Node{n}, "", nil, nil, false, false, Ext{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	proxies := doc["Proxy"].([]any)
	require.Len(t, proxies, 1)
	p := proxies[0].(map[string]any)
	assert.Equal(t, "A", p["name"])
	assert.Equal(t, "vmess", p["type"])
	assert.Equal(t, 443, p["port"])
	assert.Equal(t, true, p["tls"])
	assert.Equal(t, "ws", p["network"])
	assert.Equal(t, "/p", p["ws-path"])
}

func TestClash_SSRDemotedToSSWhenPlainOrigin(t *testing.T) {
	ssr, err := valueobjects.NewSSRParams("pw", "aes-128-ctr", "origin", "", "plain", "")
	require.NoError(t, err)
	n := node.New(node.LinkShadowsocksR, "", "R", "h", 8443)
	n.SSR = ssr
	require.NoError(t, n.NormalizeSSR())
	assert.Equal(t, node.LinkShadowsocks, n.Type)

	out, err := Clash([]*node.Node{n}, "", nil, nil, false, false, Ext{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	p := doc["Proxy"].([]any)[0].(map[string]any)
	assert.Equal(t, "ss", p["type"])
}

func TestClash_SSRDroppedWithoutClashRMode(t *testing.T) {
	ssr, err := valueobjects.NewSSRParams("pw", "none", "auth_chain_a", "", "http_simple", "")
	require.NoError(t, err)
	n := node.New(node.LinkShadowsocksR, "", "R", "h", 8443)
	n.SSR = ssr

	out, err := Clash([]*node.Node{n}, "", nil, nil, false, false, Ext{})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc["Proxy"])
}

func TestClash_SSRKeptInClashRMode(t *testing.T) {
	ssr, err := valueobjects.NewSSRParams("pw", "none", "auth_chain_a", "", "http_simple", "")
	require.NoError(t, err)
	n := node.New(node.LinkShadowsocksR, "", "R", "h", 8443)
	n.SSR = ssr

	out, err := Clash([]*node.Node{n}, "", nil, nil, false, true, Ext{})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	proxies := doc["Proxy"].([]any)
	require.Len(t, proxies, 1)
	assert.Equal(t, "ssr", proxies[0].(map[string]any)["type"])
}

func TestClash_GroupBuildExample(t *testing.T) {
	nodes := []*node.Node{
		node.New(node.LinkSOCKS5, "", "HK1", "h1", 1080),
		node.New(node.LinkSOCKS5, "", "HK2", "h2", 1080),
		node.New(node.LinkSOCKS5, "", "US1", "u1", 1080),
	}
	for _, n := range nodes {
		n.SocksHTTP = valueobjects.NewSocksHTTPParams("", "", false)
	}
	g, err := ParseExtraGroup("G`url-test`.*HK.*`http://www.gstatic.com/generate_204`300")
	require.NoError(t, err)

	out, err := Clash(nodes, "", []ExtraGroup{g}, nil, false, false, Ext{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	groups := doc["Proxy Group"].([]any)
	require.Len(t, groups, 1)
	grp := groups[0].(map[string]any)
	assert.Equal(t, "G", grp["name"])
	assert.Equal(t, "url-test", grp["type"])
	assert.Equal(t, []any{"HK1", "HK2"}, grp["proxies"])
	assert.Equal(t, "http://www.gstatic.com/generate_204", grp["url"])
	assert.Equal(t, 300, grp["interval"])
}

func TestClash_RuleMergeExample(t *testing.T) {
	e1, err := ruleset.NewEntry("Proxy", "[]DOMAIN,example.com,DIRECT")
	require.NoError(t, err)
	e2, err := ruleset.NewEntry("Ad", "https://example.com/ads.list")
	require.NoError(t, err)
	e2.Fetched = "DOMAIN-SUFFIX,ads.example\n#comment\n"

	out, err := Clash(nil, "", nil, []*ruleset.Entry{e1, e2}, true, false, Ext{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	rules := doc["Rule"].([]any)
	assert.Equal(t, []any{"DOMAIN,example.com,DIRECT,Proxy", "DOMAIN-SUFFIX,ads.example,Ad"}, rules)
}

func TestClash_NodeListSkipsGroupsAndRules(t *testing.T) {
	e1, err := ruleset.NewEntry("Proxy", "[]DOMAIN,example.com,DIRECT")
	require.NoError(t, err)
	g, err := ParseExtraGroup("G`select`[]DIRECT")
	require.NoError(t, err)

	out, err := Clash(nil, "", []ExtraGroup{g}, []*ruleset.Entry{e1}, true, false, Ext{NodeList: true})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	_, hasGroups := doc["Proxy Group"]
	_, hasRules := doc["Rule"]
	assert.False(t, hasGroups)
	assert.False(t, hasRules)
}

func TestClash_ExistingGroupReplacedInPlace(t *testing.T) {
	base := "Proxy Group:\n  - name: G\n    type: select\n    proxies: [OLD]\n"
	g, err := ParseExtraGroup("G`select`[]DIRECT")
	require.NoError(t, err)

	out, err := Clash(nil, base, []ExtraGroup{g}, nil, false, false, Ext{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	groups := doc["Proxy Group"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, []any{"DIRECT"}, groups[0].(map[string]any)["proxies"])
}
