package link

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// netchJSON is the wire shape of one Netch "Server" entry: an explicit
// discriminated-by-string-Type record, per original_source/speedtestutil.cpp's
// explodeNetch. Numeric-looking fields are sometimes emitted as JSON strings
// by Netch, so Port is decoded loosely.
type netchJSON struct {
	Type           string `json:"Type"`
	Remark         string `json:"Remark"`
	Hostname       string `json:"Hostname"`
	Port           json.Number `json:"Port"`
	EncryptMethod  string `json:"EncryptMethod"`
	Password       string `json:"Password"`
	Plugin         string `json:"Plugin"`
	PluginOption   string `json:"PluginOption"`
	Protocol       string `json:"Protocol"`
	ProtocolParam  string `json:"ProtocolParam"`
	OBFS           string `json:"OBFS"`
	OBFSParam      string `json:"OBFSParam"`
	UserID         string `json:"UserID"`
	AlterID        string `json:"AlterID"`
	TransferProtocol string `json:"TransferProtocol"`
	FakeType       string `json:"FakeType"`
	Host           string `json:"Host"`
	Path           string `json:"Path"`
	TLSSecure      bool   `json:"TLSSecure"`
	Username       string `json:"Username"`
}

// ParseNetch decodes a single "Netch://base64(json)" link. The outer
// "Server": [...] collection form is unwrapped by the container parser,
// which feeds each element's raw JSON through ParseNetchJSON (mirroring
// explodeNetchConf's re-dispatch through explodeNetch in the original).
func ParseNetch(raw string) (*node.Node, error) {
	body := strings.TrimPrefix(raw, "Netch://")
	decoded, err := DecodeBase64(body)
	if err != nil {
		return nil, fmt.Errorf("netch: decode: %w", err)
	}
	return ParseNetchJSON(decoded)
}

// ParseNetchJSON builds a Node from one already-decoded Netch JSON entry.
// Exported (unlike netchJSON itself) so the container parser's "Server":
// [...] collection loop can reuse this without going through the
// "Netch://"+base64 wire envelope for every element.
func ParseNetchJSON(data []byte) (*node.Node, error) {
	var j netchJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("netch: unmarshal: %w", err)
	}
	return NodeFromNetch(j)
}

// NodeFromNetch builds a Node from an already-decoded Netch entry, shared
// by ParseNetch and the Netch container parser's per-server loop.
func NodeFromNetch(j netchJSON) (*node.Node, error) {
	port, err := strconv.Atoi(strings.TrimSpace(j.Port.String()))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("netch: invalid port %q", j.Port)
	}

	switch j.Type {
	case "SS":
		ss, err := valueobjects.NewSSParams(j.Password, j.EncryptMethod, j.Plugin, pluginOptsFromNetch(j))
		if err != nil {
			return nil, fmt.Errorf("netch ss: %w", err)
		}
		n := node.New(node.LinkShadowsocks, "", j.Remark, j.Hostname, uint16(port))
		n.SS = ss
		return n, nil

	case "SSR":
		// A plain-origin stream-cipher SSR entry is emitted as SS directly by
		// the original (see explodeNetch's SSR branch); Node.NormalizeSSR
		// reaches the same outcome, so we always build SSR here and normalize
		// it before returning.
		ssr, err := valueobjects.NewSSRParams(j.Password, j.EncryptMethod, orDefault(j.Protocol, "origin"), j.ProtocolParam, orDefault(j.OBFS, "plain"), j.OBFSParam)
		if err != nil {
			return nil, fmt.Errorf("netch ssr: %w", err)
		}
		n := node.New(node.LinkShadowsocksR, "", j.Remark, j.Hostname, uint16(port))
		n.SSR = ssr
		if nerr := n.NormalizeSSR(); nerr != nil {
			return nil, fmt.Errorf("netch ssr: %w", nerr)
		}
		return n, nil

	case "VMess":
		alterID, _ := strconv.Atoi(j.AlterID)
		tls := j.TLSSecure
		params, err := valueobjects.NewVMessParams(j.Hostname, j.UserID, alterID, j.EncryptMethod, j.TransferProtocol, j.Path, j.Host, tls, j.FakeType)
		if err != nil {
			return nil, fmt.Errorf("netch vmess: %w", err)
		}
		n := node.New(node.LinkVMess, "", j.Remark, j.Hostname, uint16(port))
		n.VMess = params
		return n, nil

	case "Socks5":
		n := node.New(node.LinkSOCKS5, "", j.Remark, j.Hostname, uint16(port))
		n.SocksHTTP = valueobjects.NewSocksHTTPParams(j.Username, j.Password, false)
		return n, nil

	case "HTTP", "HTTPS":
		t := node.LinkHTTP
		if j.Type == "HTTPS" {
			t = node.LinkHTTPS
		}
		n := node.New(t, "", j.Remark, j.Hostname, uint16(port))
		n.SocksHTTP = valueobjects.NewSocksHTTPParams(j.Username, j.Password, j.Type == "HTTPS")
		return n, nil

	default:
		return nil, fmt.Errorf("netch: unrecognized type %q", j.Type)
	}
}

func pluginOptsFromNetch(j netchJSON) valueobjects.PluginOpts {
	if j.PluginOption == "" {
		return nil
	}
	_, opts := valueobjects.ParsePlugin("_;" + j.PluginOption)
	return opts
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
