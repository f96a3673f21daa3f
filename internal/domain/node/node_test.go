package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "subconverter/internal/domain/node/valueobjects"
)

func newSSNode(t *testing.T, method string) *Node {
	t.Helper()
	ss, err := vo.NewSSParams("pw", method, "", nil)
	require.NoError(t, err)
	n := New(LinkShadowsocks, "", "", "1.2.3.4", 8388)
	n.SS = ss
	return n
}

func TestNew_DefaultsGroupFromType(t *testing.T) {
	n := New(LinkVMess, "", "r", "example.com", 443)
	assert.Equal(t, "V2Ray", n.Group)
}

func TestNew_KeepsExplicitGroup(t *testing.T) {
	n := New(LinkVMess, "Custom", "r", "example.com", 443)
	assert.Equal(t, "Custom", n.Group)
}

func TestEnsureRemarks_DefaultsToHostPort(t *testing.T) {
	n := New(LinkShadowsocks, "SS", "", "1.2.3.4", 8388)
	assert.Equal(t, "1.2.3.4:8388", n.Remarks)
}

func TestEmittable_RejectsMissingParams(t *testing.T) {
	n := New(LinkShadowsocks, "SS", "r", "1.2.3.4", 8388)
	err := n.Emittable()
	assert.Error(t, err)
}

func TestEmittable_RejectsInvalidServer(t *testing.T) {
	n := newSSNode(t, "aes-256-gcm")
	n.Server = ""
	assert.Error(t, n.Emittable())
}

func TestEmittable_RejectsOutOfRangePort(t *testing.T) {
	n := newSSNode(t, "aes-256-gcm")
	n.Port = 0
	assert.Error(t, n.Emittable())
}

func TestEmittable_AcceptsValidNode(t *testing.T) {
	n := newSSNode(t, "aes-256-gcm")
	assert.NoError(t, n.Emittable())
}

func TestNormalizeSSR_RetagsPlainStreamCipherAsSS(t *testing.T) {
	ssr, err := vo.NewSSRParams("pw", "aes-256-cfb", "origin", "", "plain", "")
	require.NoError(t, err)
	n := New(LinkShadowsocksR, "", "r", "1.2.3.4", 8388)
	n.SSR = ssr

	require.NoError(t, n.NormalizeSSR())

	assert.Equal(t, LinkShadowsocks, n.Type)
	require.NotNil(t, n.SS)
	assert.Nil(t, n.SSR)
	assert.Equal(t, "aes-256-cfb", n.SS.Method)
}

func TestNormalizeSSR_KeepsSSROnlyCipher(t *testing.T) {
	ssr, err := vo.NewSSRParams("pw", "none", "origin", "", "plain", "")
	require.NoError(t, err)
	n := New(LinkShadowsocksR, "", "r", "1.2.3.4", 8388)
	n.SSR = ssr

	require.NoError(t, n.NormalizeSSR())

	assert.Equal(t, LinkShadowsocksR, n.Type)
	assert.Nil(t, n.SS)
	require.NotNil(t, n.SSR)
}

func TestNormalizeSSR_KeepsNonPlainObfs(t *testing.T) {
	ssr, err := vo.NewSSRParams("pw", "aes-256-cfb", "origin", "", "http_simple", "")
	require.NoError(t, err)
	n := New(LinkShadowsocksR, "", "r", "1.2.3.4", 8388)
	n.SSR = ssr

	require.NoError(t, n.NormalizeSSR())

	assert.Equal(t, LinkShadowsocksR, n.Type)
	assert.Nil(t, n.SS)
}

func TestNormalizeSSR_NoopForNonSSR(t *testing.T) {
	n := newSSNode(t, "aes-256-gcm")
	require.NoError(t, n.NormalizeSSR())
	assert.Equal(t, LinkShadowsocks, n.Type)
}

func TestApplyCustomPort(t *testing.T) {
	n := newSSNode(t, "aes-256-gcm")
	n.ApplyCustomPort(0)
	assert.Equal(t, uint16(8388), n.Port)

	n.ApplyCustomPort(443)
	assert.Equal(t, uint16(443), n.Port)
}

func TestAssignIDs_DenseFromZero(t *testing.T) {
	nodes := []*Node{newSSNode(t, "aes-256-gcm"), newSSNode(t, "aes-256-gcm"), newSSNode(t, "aes-256-gcm")}
	AssignIDs(nodes)
	for i, n := range nodes {
		assert.Equal(t, i, n.ID)
	}
}
