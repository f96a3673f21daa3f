package link

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

func vmessLink(t *testing.T, j valueobjects.VMessLinkJSON) string {
	t.Helper()
	data, err := json.Marshal(j)
	require.NoError(t, err)
	return "vmess://" + base64.StdEncoding.EncodeToString(data)
}

func TestParseVMess_V2rayNShape(t *testing.T) {
	raw := vmessLink(t, valueobjects.VMessLinkJSON{
		V: "2", PS: "my node", Add: "example.com", Port: "443",
		ID: "b831381d-6324-4d53-ad4f-8cda48b30811", Aid: "0",
		Net: "ws", Type: "none", Host: "example.com", Path: "/path", TLS: "tls",
	})
	n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, node.LinkVMess, n.Type)
	assert.Equal(t, "my node", n.Remarks)
	assert.Equal(t, "example.com", n.Server)
	assert.Equal(t, uint16(443), n.Port)
	require.NotNil(t, n.VMess)
	assert.Equal(t, "ws", n.VMess.Transport)
	assert.True(t, n.VMess.TLS)
	assert.Equal(t, "/path", n.VMess.Path)
}

func TestParseVMess_V1SplitsHostHeaderAndPath(t *testing.T) {
	raw := vmessLink(t, valueobjects.VMessLinkJSON{
		V: "1", Add: "example.com", Port: "443",
		ID: "b831381d-6324-4d53-ad4f-8cda48b30811", Aid: "0",
		Net: "ws", Host: "host.example.com;/mypath",
	})
	n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "host.example.com", n.VMess.HostHeader)
	assert.Equal(t, "/mypath", n.VMess.Path)
}

func TestParseSS_SIP002(t *testing.T) {
	userinfo := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte("aes-256-gcm:password"))
	raw := "ss://" + userinfo + "@example.com:8388?plugin=obfs-local%3Bobfs%3Dtls#my-node"
	n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, node.LinkShadowsocks, n.Type)
	assert.Equal(t, "my-node", n.Remarks)
	assert.Equal(t, "example.com", n.Server)
	assert.Equal(t, uint16(8388), n.Port)
	assert.Equal(t, "password", n.SS.Password)
	assert.Equal(t, "aes-256-gcm", n.SS.Method)
	assert.Equal(t, "obfs-local", n.SS.Plugin)
}

func TestParseSS_LegacyShape(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("aes-256-gcm:password@example.com:8388"))
	n, err := Parse("ss://" + body + "#legacy")
	require.NoError(t, err)
	assert.Equal(t, "legacy", n.Remarks)
	assert.Equal(t, "example.com", n.Server)
	assert.Equal(t, uint16(8388), n.Port)
}

func TestParseSS_NormalizesLegacyAEADName(t *testing.T) {
	userinfo := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte("AEAD_CHACHA20_POLY1305:password"))
	n, err := Parse("ss://" + userinfo + "@example.com:8388")
	require.NoError(t, err)
	assert.Equal(t, "chacha20-ietf-poly1305", n.SS.Method)
}

func ssrLink(t *testing.T, body string) string {
	t.Helper()
	return "ssr://" + base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(body))
}

func TestParseSSR(t *testing.T) {
	pw := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte("password"))
	remarks := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte("my ssr node"))
	raw := ssrLink(t, "example.com:8388:auth_aes128_md5:aes-256-cfb:http_simple:"+pw+"/?remarks="+remarks)

	n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, node.LinkShadowsocksR, n.Type)
	assert.Equal(t, "my ssr node", n.Remarks)
	assert.Equal(t, "example.com", n.Server)
	assert.Equal(t, uint16(8388), n.Port)
	assert.Equal(t, "password", n.SSR.Password)
	assert.Equal(t, "auth_aes128_md5", n.SSR.Protocol)
	assert.Equal(t, "http_simple", n.SSR.Obfs)
}

func TestParseSSR_DefaultsGroupWhenAbsent(t *testing.T) {
	pw := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte("password"))
	raw := ssrLink(t, "example.com:8388:origin:rc4-md5:plain:"+pw)

	n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "SSRCloud", n.Group)
}

func TestParseSocks(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("example.com:1080"))
	n, err := Parse("socks://" + body + "#my-socks")
	require.NoError(t, err)
	assert.Equal(t, node.LinkSOCKS5, n.Type)
	assert.Equal(t, "my-socks", n.Remarks)
	assert.Equal(t, "example.com", n.Server)
	assert.Equal(t, uint16(1080), n.Port)
}

func TestParseTelegramSocks(t *testing.T) {
	n, err := Parse("https://t.me/socks?server=example.com&port=1080&user=u&pass=p")
	require.NoError(t, err)
	assert.Equal(t, node.LinkSOCKS5, n.Type)
	assert.Equal(t, "example.com", n.Server)
	assert.Equal(t, uint16(1080), n.Port)
	assert.Equal(t, "u", n.SocksHTTP.Username)
}

func TestParse_UnrecognizedSchemeYieldsNoNode(t *testing.T) {
	_, err := Parse("trojan://whatever")
	assert.Error(t, err)
}

func TestParseList_SkipsUnparseableLines(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("example.com:1080"))
	input := "socks://" + body + "\nnot-a-link\nsocks://" + body
	nodes := ParseList(input)
	assert.Len(t, nodes, 2)
}
