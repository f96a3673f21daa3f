package container

import (
	"encoding/json"

	"subconverter/internal/application/parser/link"
	"subconverter/internal/domain/node"
)

// netchCollectionDoc is Netch's multi-server export: a top-level "Server"
// array whose elements are the same flat record ParseNetch decodes from a
// single "Netch://" link, per explodeNetchConf re-dispatching each element
// through explodeNetch in the original.
type netchCollectionDoc struct {
	Server []json.RawMessage `json:"Server"`
}

// ParseNetchCollection converts a Netch collection export, detected by the
// top-level "ModeFileNameType" key in spec.md §4.3's auto-detection order.
func ParseNetchCollection(raw string) []*node.Node {
	var doc netchCollectionDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}

	var nodes []*node.Node
	for _, entry := range doc.Server {
		n, err := link.ParseNetchJSON(entry)
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}
