// Package node holds the canonical proxy-node record every link and
// container parser produces and every emitter consumes.
//
// Per the redesign away from one struct per protocol, Node is a single
// tagged-variant record: common fields plus one non-nil *Params pointer
// selected by Type. Parsers and emitters switch on Type rather than
// dispatching through an interface.
package node

import (
	"fmt"

	"subconverter/internal/domain/node/valueobjects"
)

// Node is the canonical representation of one proxy server entry, produced
// by a link or container parser and consumed by filter/rename/emoji and the
// emitters.
type Node struct {
	Type    LinkType
	ID      int
	Group   string
	Remarks string
	Server  string
	Port    uint16

	VMess     *valueobjects.VMessParams
	SS        *valueobjects.SSParams
	SSR       *valueobjects.SSRParams
	SocksHTTP *valueobjects.SocksHTTPParams
}

// New builds a Node, assigning Type's default Group when group is blank and
// defaulting blank remarks via EnsureRemarks. It validates nothing
// (invariant: Emittable nodes have a non-empty server, a port in [1,65535],
// and exactly one non-nil params pointer matching Type) and does not
// enforce Emittable — callers that parse partially-formed entries (e.g. a
// container row missing its port) construct the Node and let Emittable
// report the defect, rather than failing construction outright.
func New(t LinkType, group, remarks, server string, port uint16) *Node {
	if group == "" {
		group = t.DefaultGroup()
	}
	n := &Node{
		Type:    t,
		Group:   group,
		Remarks: remarks,
		Server:  server,
		Port:    port,
	}
	n.EnsureRemarks()
	return n
}

// EnsureRemarks defaults Remarks to "<server>:<port>" when blank, per
// spec.md's rule that every emitted node carries a non-empty display name.
func (n *Node) EnsureRemarks() {
	if n.Remarks == "" {
		n.Remarks = fmt.Sprintf("%s:%d", n.Server, n.Port)
	}
}

// Emittable reports whether n satisfies the invariants an emitter may rely
// on without re-checking: a valid server address, an in-range port, a
// non-empty remarks, and exactly the params pointer matching Type.
func (n *Node) Emittable() error {
	if !n.Type.IsValid() {
		return fmt.Errorf("node: unrecognized link type")
	}
	if !ValidServerAddress(n.Server) {
		return fmt.Errorf("node %q: invalid server address %q", n.Remarks, n.Server)
	}
	if n.Port < 1 {
		return fmt.Errorf("node %q: port out of range: %d", n.Remarks, n.Port)
	}
	if n.Remarks == "" {
		return fmt.Errorf("node: remarks must not be empty")
	}
	switch n.Type {
	case LinkVMess:
		if n.VMess == nil {
			return fmt.Errorf("node %q: missing vmess params", n.Remarks)
		}
	case LinkShadowsocks:
		if n.SS == nil {
			return fmt.Errorf("node %q: missing shadowsocks params", n.Remarks)
		}
	case LinkShadowsocksR:
		if n.SSR == nil {
			return fmt.Errorf("node %q: missing shadowsocksr params", n.Remarks)
		}
	case LinkSOCKS5, LinkHTTP, LinkHTTPS:
		if n.SocksHTTP == nil {
			return fmt.Errorf("node %q: missing socks/http params", n.Remarks)
		}
	}
	return nil
}

// ApplyCustomPort overrides Port when override is non-zero, per spec.md
// §4.2's custom_port preference: a post-parse transform, not a field any
// parser sets itself.
func (n *Node) ApplyCustomPort(override uint16) {
	if override != 0 {
		n.Port = override
	}
}

// AssignIDs numbers nodes densely from 0 in slice order, satisfying
// invariant 6 (id unique per response, monotonically non-decreasing in
// aggregated input order). Called once by the orchestrator after filtering,
// since ids are meaningless before dropped nodes are removed.
func AssignIDs(nodes []*Node) {
	for i, n := range nodes {
		n.ID = i
	}
}

// NormalizeSSR applies spec invariant 4: an SSR node whose protocol/obfs are
// both the no-op defaults ("origin"/"plain") and whose cipher is a plain SS
// stream cipher carries no SSR-specific behavior, so it is re-tagged as a
// Shadowsocks node. Nodes using an SSR-only cipher (e.g. "none", "table")
// are left as SSR even when protocol/obfs are both plain, since there is no
// equivalent SS node to retag them to.
func (n *Node) NormalizeSSR() error {
	if n.Type != LinkShadowsocksR || n.SSR == nil {
		return nil
	}
	if !n.SSR.IsPlainOrigin() || !valueobjects.IsStreamCipher(n.SSR.Method) {
		return nil
	}
	ss, err := n.SSR.ToSS()
	if err != nil {
		return fmt.Errorf("node %q: retag ssr as ss: %w", n.Remarks, err)
	}
	n.Type = LinkShadowsocks
	n.SS = ss
	n.SSR = nil
	return nil
}
