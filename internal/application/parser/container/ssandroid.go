package container

import (
	"encoding/json"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// ssAndroidEntry mirrors the per-node fields explodeSSAndroid reads
// (original_source/speedtestutil.cpp); the original wraps the raw backup
// array as {"nodes": [...]} before parsing, a re-wrapping step that exists
// only to reuse its own JSON cursor API and carries no semantic weight
// here.
type ssAndroidEntry struct {
	Remarks    string `json:"remarks"`
	Server     string `json:"server"`
	ServerPort int    `json:"server_port"`
	Password   string `json:"password"`
	Method     string `json:"method"`
}

// ParseSSAndroid converts an SS-Android JSON export (a bare array of
// server entries), detected by the presence of a "proxy_apps" key
// somewhere in the document per spec.md §4.3.
func ParseSSAndroid(raw string) []*node.Node {
	var entries []ssAndroidEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}

	var nodes []*node.Node
	for _, e := range entries {
		if e.ServerPort < 1 || e.ServerPort > 65535 {
			continue
		}
		ss, err := valueobjects.NewSSParams(e.Password, e.Method, "", nil)
		if err != nil {
			continue
		}
		n := node.New(node.LinkShadowsocks, "", e.Remarks, e.Server, uint16(e.ServerPort))
		n.SS = ss
		nodes = append(nodes, n)
	}
	return nodes
}
