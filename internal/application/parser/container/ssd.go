package container

import (
	"encoding/json"
	"strings"

	"subconverter/internal/application/parser/link"
	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// ssdDoc is the SSD subscription envelope: top-level fields are defaults
// every server in Servers may override by name, per spec.md §4.3 and the
// recovered detail in SPEC_FULL.md (grounded on original_source's SSD
// handling).
type ssdDoc struct {
	Airport       string      `json:"airport"`
	Port          int         `json:"port"`
	Encryption    string      `json:"encryption"`
	Password      string      `json:"password"`
	Plugin        string      `json:"plugin"`
	PluginOptions string      `json:"plugin_options"`
	Servers       []ssdServer `json:"servers"`
}

type ssdServer struct {
	Server        string  `json:"server"`
	Port          *int    `json:"port"`
	Encryption    *string `json:"encryption"`
	Password      *string `json:"password"`
	Plugin        *string `json:"plugin"`
	PluginOptions *string `json:"plugin_options"`
	Remarks       string  `json:"remarks"`
}

// ParseSSD decodes an "ssd://"-prefixed subscription body.
func ParseSSD(raw string) []*node.Node {
	body := strings.TrimPrefix(raw, "ssd://")
	decoded, err := link.DecodeBase64(body)
	if err != nil {
		return nil
	}
	var doc ssdDoc
	if err := json.Unmarshal(decoded, &doc); err != nil {
		return nil
	}

	var nodes []*node.Node
	for _, s := range doc.Servers {
		port := doc.Port
		if s.Port != nil {
			port = *s.Port
		}
		if port < 1 || port > 65535 {
			continue
		}
		encryption := stringOrDefault(s.Encryption, doc.Encryption)
		password := stringOrDefault(s.Password, doc.Password)
		plugin := stringOrDefault(s.Plugin, doc.Plugin)
		pluginOptions := stringOrDefault(s.PluginOptions, doc.PluginOptions)

		var opts valueobjects.PluginOpts
		if pluginOptions != "" {
			_, opts = valueobjects.ParsePlugin("_;" + pluginOptions)
		}
		ss, err := valueobjects.NewSSParams(password, encryption, plugin, opts)
		if err != nil {
			continue
		}
		n := node.New(node.LinkShadowsocks, doc.Airport, s.Remarks, s.Server, uint16(port))
		n.SS = ss
		nodes = append(nodes, n)
	}
	return nodes
}

func stringOrDefault(override *string, def string) string {
	if override != nil {
		return *override
	}
	return def
}
