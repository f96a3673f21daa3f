package emit

import (
	"fmt"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/ruleset"
)

const (
	ContentTypeText   = "text/plain;charset=utf-8"
	ContentTypeBase64 = "text/plain"
)

// Options bundles the per-request knobs Dispatch needs beyond the common
// (nodes, base_config, rules, groups, ext) signature every emitter shares:
// the Surge dialect version, the SSD airport label, ClashR mode, and
// whether ruleset lines replace the base config's rules.
type Options struct {
	SurgeVersion   SurgeVersion
	Airport        string
	ClashR         bool
	OverwriteRules bool
}

// Dispatch renders nodes into the dialect named by target, returning the
// body and the content-type §4.7 step 10 specifies for it. target must be
// one of clash, clashr, surge, surfboard, mellow, ss, ssr, v2ray, quan,
// quanx, ssd — callers validate target against that set before calling.
func Dispatch(target string, nodes []*node.Node, baseConfig string, groups []ExtraGroup, rules []*ruleset.Entry, opts Options, ext Ext) (body, contentType string, err error) {
	switch target {
	case "clash":
		body, err = Clash(nodes, baseConfig, groups, rules, opts.OverwriteRules, false, ext)
		return body, ContentTypeText, err
	case "clashr":
		body, err = Clash(nodes, baseConfig, groups, rules, opts.OverwriteRules, true, ext)
		return body, ContentTypeText, err
	case "surge":
		version := opts.SurgeVersion
		if version == 0 {
			version = Surge4
		}
		body, err = Surge(version, nodes, baseConfig, groups, rules, opts.OverwriteRules, ext)
		return body, ContentTypeText, err
	case "surfboard":
		body, err = Surfboard(nodes, baseConfig, groups, rules, opts.OverwriteRules, ext)
		return body, ContentTypeText, err
	case "mellow":
		body, err = Mellow(nodes, groups, ext)
		return body, ContentTypeText, err
	case "ss":
		return WrapBase64(EmitList(nodes, node.LinkShadowsocks, ext)), ContentTypeBase64, nil
	case "ssr":
		return WrapBase64(EmitList(nodes, node.LinkShadowsocksR, ext)), ContentTypeBase64, nil
	case "v2ray":
		return WrapBase64(EmitList(nodes, node.LinkVMess, ext)), ContentTypeBase64, nil
	case "quan":
		return WrapBase64(EmitMixedList(nodes, ext)), ContentTypeBase64, nil
	case "quanx":
		return EmitQuantumultX(nodes, ext), ContentTypeText, nil
	case "ssd":
		body, err = EmitSSD(nodes, opts.Airport, ext)
		return body, ContentTypeBase64, err
	default:
		return "", "", fmt.Errorf("emit: unrecognized target %q", target)
	}
}
