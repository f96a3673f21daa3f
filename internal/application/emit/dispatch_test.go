package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

func TestDispatch_ClashUsesTextContentType(t *testing.T) {
	_, ct, err := Dispatch("clash", nil, "", nil, nil, Options{}, Ext{})
	require.NoError(t, err)
	assert.Equal(t, ContentTypeText, ct)
}

func TestDispatch_SSUsesBase64ContentType(t *testing.T) {
	ss, err := valueobjects.NewSSParams("pw", "aes-256-cfb", "", nil)
	require.NoError(t, err)
	n := node.New(node.LinkShadowsocks, "", "SS", "h", 8388)
	n.SS = ss

	body, ct, err := Dispatch("ss", []*node.Node{n}, "", nil, nil, Options{}, Ext{})
	require.NoError(t, err)
	assert.Equal(t, ContentTypeBase64, ct)
	assert.NotEmpty(t, body)
}

func TestDispatch_QuanxUsesTextContentType(t *testing.T) {
	_, ct, err := Dispatch("quanx", nil, "", nil, nil, Options{}, Ext{})
	require.NoError(t, err)
	assert.Equal(t, ContentTypeText, ct)
}

func TestDispatch_UnknownTargetErrors(t *testing.T) {
	_, _, err := Dispatch("bogus", nil, "", nil, nil, Options{}, Ext{})
	assert.Error(t, err)
}

func TestDispatch_SurgeDefaultsToVersion4(t *testing.T) {
	vparams, err := valueobjects.NewVMessParams("v", "11111111-1111-1111-1111-111111111111", 0, "auto", "tcp", "", "", false, "none")
	require.NoError(t, err)
	n := node.New(node.LinkVMess, "", "V", "v", 443)
	n.VMess = vparams

	body, _, err := Dispatch("surge", []*node.Node{n}, "", nil, nil, Options{}, Ext{})
	require.NoError(t, err)
	assert.Contains(t, body, "vmess")
}
