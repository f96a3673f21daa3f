package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

func TestSurge_V2SSUsesCustomLineAndSkipsVMess(t *testing.T) {
	ss, err := valueobjects.NewSSParams("pw", "aes-256-cfb", "", nil)
	require.NoError(t, err)
	ssNode := node.New(node.LinkShadowsocks, "", "SS", "h", 8388)
	ssNode.SS = ss

	vparams, err := valueobjects.NewVMessParams("v", "11111111-1111-1111-1111-111111111111", 0, "auto", "tcp", "", "", false, "none")
	require.NoError(t, err)
	vNode := node.New(node.LinkVMess, "", "V", "v", 443)
	vNode.VMess = vparams

	out, err := Surge(Surge2, []*node.Node{ssNode, vNode}, "", nil, nil, false, Ext{})
	require.NoError(t, err)
	assert.Contains(t, out, "custom, h, 8388, aes-256-cfb, pw")
	assert.NotContains(t, out, "V =")
}

func TestSurge_V3UsesSSLineAndSupportsSocks5(t *testing.T) {
	ss, err := valueobjects.NewSSParams("pw", "aes-256-cfb", "", nil)
	require.NoError(t, err)
	ssNode := node.New(node.LinkShadowsocks, "", "SS", "h", 8388)
	ssNode.SS = ss

	sNode := node.New(node.LinkSOCKS5, "", "S5", "h2", 1080)
	sNode.SocksHTTP = valueobjects.NewSocksHTTPParams("", "", false)

	out, err := Surge(Surge3, []*node.Node{ssNode, sNode}, "", nil, nil, false, Ext{})
	require.NoError(t, err)
	assert.Contains(t, out, "ss, h, 8388, encrypt-method=aes-256-cfb, password=pw")
	assert.Contains(t, out, "socks5, h2, 1080")
}

func TestSurge_V4SupportsVMessWS(t *testing.T) {
	vparams, err := valueobjects.NewVMessParams("v", "11111111-1111-1111-1111-111111111111", 0, "auto", "ws", "/p", "ex.com", true, "none")
	require.NoError(t, err)
	n := node.New(node.LinkVMess, "", "V", "v", 443)
	n.VMess = vparams

	out, err := Surge(Surge4, []*node.Node{n}, "", nil, nil, false, Ext{})
	require.NoError(t, err)
	assert.Contains(t, out, "vmess, v, 443, username=11111111-1111-1111-1111-111111111111")
	assert.Contains(t, out, "ws=true")
	assert.Contains(t, out, "ws-path=/p")
	assert.Contains(t, out, "tls=true")
}

func TestSurge_GroupAndRuleSections(t *testing.T) {
	nodes := []*node.Node{node.New(node.LinkSOCKS5, "", "HK1", "h1", 1080)}
	nodes[0].SocksHTTP = valueobjects.NewSocksHTTPParams("", "", false)
	g, err := ParseExtraGroup("G`select`[]HK1`[]DIRECT")
	require.NoError(t, err)

	out, err := Surge(Surge3, nodes, "", []ExtraGroup{g}, nil, false, Ext{})
	require.NoError(t, err)
	assert.Contains(t, out, "[Proxy Group]")
	assert.Contains(t, out, "G = select, HK1, DIRECT")
}

func TestSurge_NodeListSkipsGroupsAndRules(t *testing.T) {
	g, err := ParseExtraGroup("G`select`[]DIRECT")
	require.NoError(t, err)
	out, err := Surge(Surge3, nil, "", []ExtraGroup{g}, nil, false, Ext{NodeList: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "[Proxy Group]")
}

func TestManagedConfigPreamble_BuildsWhenPrefixSetAndNotNodeList(t *testing.T) {
	pre := ManagedConfigPreamble("https://h", "target=surge&url=foo", false)
	assert.Equal(t, "#!MANAGED-CONFIG https://h/sub?target=surge&url=foo\n\n", pre)
}

func TestManagedConfigPreamble_EmptyWhenNodeList(t *testing.T) {
	pre := ManagedConfigPreamble("https://h", "target=surge", true)
	assert.Empty(t, pre)
}

func TestManagedConfigPreamble_EmptyWhenNoPrefix(t *testing.T) {
	pre := ManagedConfigPreamble("", "target=surge", false)
	assert.Empty(t, pre)
}
