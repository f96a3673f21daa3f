package container

import (
	"encoding/json"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// sstapDoc mirrors original_source/speedtestutil.cpp's explodeSSTap: a flat
// "configs" array where "type" distinguishes SOCKS5 ("5") from SS/SSR
// ("6", disambiguated per invariant 4).
type sstapDoc struct {
	Configs []sstapEntry `json:"configs"`
}

type sstapEntry struct {
	Type          string `json:"type"`
	Group         string `json:"group"`
	Remarks       string `json:"remarks"`
	Server        string `json:"server"`
	ServerPort    int    `json:"server_port"`
	Password      string `json:"password"`
	Method        string `json:"method"`
	Protocol      string `json:"protocol"`
	Obfs          string `json:"obfs"`
	ProtocolParam string `json:"protocolparam"`
	ObfsParam     string `json:"obfsparam"`
	Username      string `json:"username"`
}

// ParseSSTap converts an SSTap JSON export, detected by the top-level
// "idInUse" key in spec.md §4.3's auto-detection order.
func ParseSSTap(raw string) []*node.Node {
	var doc sstapDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}

	var nodes []*node.Node
	for _, e := range doc.Configs {
		if e.ServerPort < 1 || e.ServerPort > 65535 {
			continue
		}
		port := uint16(e.ServerPort)

		switch e.Type {
		case "5":
			n := node.New(node.LinkSOCKS5, e.Group, e.Remarks, e.Server, port)
			n.SocksHTTP = valueobjects.NewSocksHTTPParams(e.Username, e.Password, false)
			nodes = append(nodes, n)

		case "6":
			ssr, err := valueobjects.NewSSRParams(e.Password, e.Method, orDefault(e.Protocol, "origin"), e.ProtocolParam, orDefault(e.Obfs, "plain"), e.ObfsParam)
			if err != nil {
				continue
			}
			n := node.New(node.LinkShadowsocksR, e.Group, e.Remarks, e.Server, port)
			n.SSR = ssr
			if err := n.NormalizeSSR(); err != nil {
				continue
			}
			nodes = append(nodes, n)
		}
	}
	return nodes
}
