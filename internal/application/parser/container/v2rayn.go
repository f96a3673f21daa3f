package container

import (
	"encoding/json"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// v2raynSingleDoc is the single-server V2RayN export shape, grounded on
// original_source/speedtestutil.cpp's explodeVmessConf: a v2ray-core style
// "outbounds" document, of which only the first outbound's first vnext
// entry is read.
type v2raynSingleDoc struct {
	Outbounds []struct {
		Settings struct {
			Vnext []struct {
				Address string `json:"address"`
				Port    int    `json:"port"`
				Users   []struct {
					ID       string `json:"id"`
					AlterID  int    `json:"alterId"`
					Security string `json:"security"`
				} `json:"users"`
			} `json:"vnext"`
		} `json:"settings"`
		StreamSettings struct {
			Network    string `json:"network"`
			Security   string `json:"security"`
			WSSettings struct {
				Path    string            `json:"path"`
				Headers map[string]string `json:"headers"`
			} `json:"wsSettings"`
		} `json:"streamSettings"`
	} `json:"outbounds"`
}

// v2raynCollectionDoc is the multi-subscription V2RayN export shape: a flat
// "vmess" array whose entries carry a "subid" indexing the parallel
// "subItem" array for the group label, per explodeVmessConf.
type v2raynCollectionDoc struct {
	Vmess   []v2raynEntry   `json:"vmess"`
	SubItem []v2raynSubItem `json:"subItem"`
}

type v2raynSubItem struct {
	ID      string `json:"id"`
	Remarks string `json:"remarks"`
}

type v2raynEntry struct {
	ConfigType     int    `json:"configType"`
	Address        string `json:"address"`
	Port           int    `json:"port"`
	ID             string `json:"id"`
	AlterID        int    `json:"alterId"`
	Security       string `json:"security"`
	Network        string `json:"network"`
	HeaderType     string `json:"headerType"`
	RequestHost    string `json:"requestHost"`
	Path           string `json:"path"`
	StreamSecurity string `json:"streamSecurity"`
	Remarks        string `json:"remarks"`
	SubID          string `json:"subid"`
}

// V2RayN configType values (explodeVmessConf): 1=VMess, 3=SS, 4=SOCKS.
const (
	v2raynTypeVMess = 1
	v2raynTypeSS    = 3
	v2raynTypeSocks = 4
)

// ParseV2RayN converts a V2RayN JSON export, either a single-config file
// (top-level "outbounds") or a subscription collection under "vmess"/
// "subItem", per spec.md §4.3.
func ParseV2RayN(raw string) []*node.Node {
	if hasJSONKey(raw, "outbounds") {
		return parseV2RayNSingle(raw)
	}
	return parseV2RayNCollection(raw)
}

func parseV2RayNSingle(raw string) []*node.Node {
	var doc v2raynSingleDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || len(doc.Outbounds) == 0 {
		return nil
	}
	ob := doc.Outbounds[0]
	if len(ob.Settings.Vnext) == 0 || len(ob.Settings.Vnext[0].Users) == 0 {
		return nil
	}
	vn := ob.Settings.Vnext[0]
	if vn.Port < 1 || vn.Port > 65535 {
		return nil
	}
	user := vn.Users[0]

	params, err := valueobjects.NewVMessParams(vn.Address, user.ID, user.AlterID, user.Security, ob.StreamSettings.Network, ob.StreamSettings.WSSettings.Path, ob.StreamSettings.WSSettings.Headers["Host"], ob.StreamSettings.Security == "tls", "")
	if err != nil {
		return nil
	}
	n := node.New(node.LinkVMess, "", "", vn.Address, uint16(vn.Port))
	n.VMess = params
	return []*node.Node{n}
}

func parseV2RayNCollection(raw string) []*node.Node {
	var doc v2raynCollectionDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}

	groupOf := make(map[string]string, len(doc.SubItem))
	for _, item := range doc.SubItem {
		groupOf[item.ID] = item.Remarks
	}

	var nodes []*node.Node
	for _, e := range doc.Vmess {
		if e.Port < 1 || e.Port > 65535 {
			continue
		}
		port := uint16(e.Port)
		group := groupOf[e.SubID]

		switch e.ConfigType {
		case v2raynTypeVMess:
			params, err := valueobjects.NewVMessParams(e.Address, e.ID, e.AlterID, e.Security, e.Network, e.Path, e.RequestHost, e.StreamSecurity == "tls", e.HeaderType)
			if err != nil {
				continue
			}
			n := node.New(node.LinkVMess, group, e.Remarks, e.Address, port)
			n.VMess = params
			nodes = append(nodes, n)

		case v2raynTypeSS:
			ss, err := valueobjects.NewSSParams(e.ID, e.Security, "", nil)
			if err != nil {
				continue
			}
			n := node.New(node.LinkShadowsocks, group, e.Remarks, e.Address, port)
			n.SS = ss
			nodes = append(nodes, n)

		case v2raynTypeSocks:
			n := node.New(node.LinkSOCKS5, group, e.Remarks, e.Address, port)
			n.SocksHTTP = valueobjects.NewSocksHTTPParams("", "", false)
			nodes = append(nodes, n)
		}
	}
	return nodes
}
