package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

func TestSurfboard_UsesSurgeV2LineShapeAndSkipsVMess(t *testing.T) {
	ss, err := valueobjects.NewSSParams("pw", "aes-256-cfb", "", nil)
	require.NoError(t, err)
	ssNode := node.New(node.LinkShadowsocks, "", "SS", "h", 8388)
	ssNode.SS = ss

	vparams, err := valueobjects.NewVMessParams("v", "11111111-1111-1111-1111-111111111111", 0, "auto", "tcp", "", "", false, "none")
	require.NoError(t, err)
	vNode := node.New(node.LinkVMess, "", "V", "v", 443)
	vNode.VMess = vparams

	out, err := Surfboard([]*node.Node{ssNode, vNode}, "", nil, nil, false, Ext{})
	require.NoError(t, err)
	assert.Contains(t, out, "custom, h, 8388, aes-256-cfb, pw")
	assert.NotContains(t, out, "V =")
}
