// Package convert implements the request orchestrator of spec.md §4.7:
// the single convert(query) entry point that fetches subscriptions,
// drives the parse/filter/emit pipeline, and never propagates an error
// to its caller — every failure is folded into a plain-text response
// body, per §7's "the orchestrator never throws."
package convert

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"subconverter/internal/application/emit"
	"subconverter/internal/application/filter"
	"subconverter/internal/application/parser/container"
	appruleset "subconverter/internal/application/ruleset"
	"subconverter/internal/domain/node"
	domainruleset "subconverter/internal/domain/ruleset"
	"subconverter/internal/infrastructure/config"
	"subconverter/internal/infrastructure/httpfetch"
	"subconverter/internal/shared/goroutine"
	"subconverter/internal/shared/logger"
)

var validTargets = map[string]bool{
	"clash": true, "clashr": true, "surge": true, "surfboard": true,
	"mellow": true, "ss": true, "ssr": true, "v2ray": true,
	"quan": true, "quanx": true, "ssd": true,
}

// Request is the parsed query surface §4.7 recognizes. RawQuery is the
// original query string, needed verbatim for the managed-config preamble.
type Request struct {
	Target     string
	URL        string
	Group      string
	Upload     bool
	UploadPath string
	SurgeVer   int
	AppendType bool
	TFO        bool
	UDP        bool
	NodeList   bool
	Include    string
	Exclude    string
	Emoji      bool
	Groups     string
	RawQuery   string
}

// Result is what the HTTP layer writes back verbatim.
type Result struct {
	Status      int
	ContentType string
	Body        string
}

func invalidRequest() Result {
	return Result{Status: 200, ContentType: emit.ContentTypeText, Body: "Invalid request!"}
}

func noNodesFound() Result {
	return Result{Status: 200, ContentType: emit.ContentTypeText, Body: "No nodes were found!"}
}

// Fetcher is the subset of httpfetch.Client the orchestrator depends on,
// kept as an interface so tests can substitute a stub.
type Fetcher interface {
	Get(ctx context.Context, target, proxyMode string) ([]byte, error)
}

// GistUploader is the fire-and-forget upload side-channel §4.7 step 9
// calls. Failures are logged and never surface to the caller.
type GistUploader interface {
	Upload(ctx context.Context, filename, content string) (string, error)
}

// Converter holds the orchestrator's collaborators: the outbound fetch
// client, the ruleset aggregator, and (optionally) the Gist uploader.
type Converter struct {
	Fetcher    Fetcher
	Aggregator *appruleset.Aggregator
	Gist       GistUploader
}

func NewConverter(proxyMode string) *Converter {
	client := httpfetch.New(0)
	return &Converter{
		Fetcher:    client,
		Aggregator: appruleset.New(client, proxyMode),
	}
}

// Convert runs §4.7 steps 2-10 against a configuration snapshot already
// read by the caller (step 1's lock/reload is the caller's
// responsibility, since it is a cross-request concern this package has
// no state to hold).
func (c *Converter) Convert(ctx context.Context, req Request, prefs *config.Preferences) Result {
	target := strings.ToLower(strings.TrimSpace(req.Target))
	if !validTargets[target] {
		return invalidRequest()
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		rawURL = prefs.Common.DefaultURL
	}
	if rawURL == "" {
		return invalidRequest()
	}

	nodes := c.fetchAndParse(ctx, rawURL, req.Group, prefs)

	include := filter.CompilePatterns(nonEmptySplit(req.Include, ","))
	if len(include) == 0 {
		include = filter.CompilePatterns(prefs.Common.IncludeRemarks)
	}
	exclude := filter.CompilePatterns(nonEmptySplit(req.Exclude, ","))
	if len(exclude) == 0 {
		exclude = filter.CompilePatterns(prefs.Common.ExcludeRemarks)
	}
	nodes = filter.Apply(nodes, include, exclude)

	renameRules := filter.ParseRules(prefs.Common.RenameNode)
	filter.ApplyRename(nodes, renameRules)

	addEmoji := req.Emoji || prefs.Emojis.AddEmoji
	emojiTable := filter.ParseEmojiRules(prefs.Emojis.Rule)
	filter.ApplyEmoji(nodes, prefs.Emojis.RemoveOldEmoji, addEmoji, emojiTable)

	node.AssignIDs(nodes)

	if len(nodes) == 0 {
		return noNodesFound()
	}

	ext := emit.Ext{
		AppendProxyType: req.AppendType || prefs.Common.AppendProxyType,
		TFO:             req.TFO,
		UDP:             req.UDP,
		NodeList:        req.NodeList,
		SurgeSSRPath:    prefs.SurgeExternalProxy.SurgeSSRPath,
	}

	groups := c.resolveGroups(req.Groups, prefs.ClashProxyGroup.CustomProxyGroup)

	var rules []*domainruleset.Entry
	if prefs.Ruleset.Enabled {
		rules = buildRulesetEntries(prefs.Ruleset.SurgeRuleset)
		c.Aggregator.Resolve(ctx, rules)
	}

	baseConfig := c.readBaseConfig(ctx, baseConfigSource(target, prefs))

	opts := emit.Options{
		SurgeVersion:   emit.SurgeVersion(req.SurgeVer),
		Airport:        req.UploadPath,
		ClashR:         target == "clashr",
		OverwriteRules: prefs.Ruleset.OverwriteOriginalRules,
	}
	body, contentType, err := emit.Dispatch(target, nodes, baseConfig, groups, rules, opts, ext)
	if err != nil {
		logger.Get().Error("emit failed", "target", target, "error", err)
		return Result{Status: 200, ContentType: emit.ContentTypeText, Body: ""}
	}

	if (target == "surge" || target == "surfboard") && prefs.ManagedConfig.WriteManagedConfig {
		body = emit.ManagedConfigPreamble(prefs.ManagedConfig.ManagedConfigPrefix, req.RawQuery, req.NodeList) + body
	}

	if req.Upload && c.Gist != nil {
		uploadBody := body
		uploadPath := req.UploadPath
		goroutine.SafeGo(logger.Get(), "gist-upload", func() {
			if _, err := c.Gist.Upload(context.Background(), uploadPath, uploadBody); err != nil {
				logger.Get().Warn("gist upload failed", "error", err)
			}
		})
	}

	return Result{Status: 200, ContentType: contentType, Body: body}
}

// RefreshRulesets re-resolves every configured surge_ruleset[] entry
// against the network/disk, for the /refreshrules endpoint and for
// update_ruleset_on_request (§4.7 step 4). Exported so the HTTP layer can
// trigger it under its own configuration-lock discipline without
// duplicating the preferences-to-Entry parsing that Convert already does.
func (c *Converter) RefreshRulesets(ctx context.Context, prefs *config.Preferences) {
	if !prefs.Ruleset.Enabled {
		return
	}
	entries := buildRulesetEntries(prefs.Ruleset.SurgeRuleset)
	c.Aggregator.Resolve(ctx, entries)
}

// fetchAndParse splits url on "|", fetches and auto-detects each source in
// turn, and tags every node with its source's group label. Per §5's
// ordering guarantee, sources and the nodes within each are appended in
// order — there is no concurrent fan-out here, matching the
// single-worker-per-request model §5 describes.
func (c *Converter) fetchAndParse(ctx context.Context, rawURL, groupOverride string, prefs *config.Preferences) []*node.Node {
	sources := strings.Split(rawURL, "|")
	var nodes []*node.Node
	for i, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		body, err := c.Fetcher.Get(ctx, src, prefs.Common.ProxySubscription)
		if err != nil {
			logger.Get().Warn("subscription fetch failed", "source", src, "error", err)
			continue
		}
		decoded := decodeIfBase64(strings.TrimSpace(string(body)))
		parsed := container.Parse(decoded)
		defaultGroup := fmt.Sprintf("Group%d", i)
		for _, n := range parsed {
			switch {
			case groupOverride != "":
				n.Group = groupOverride
			case n.Group == "":
				n.Group = defaultGroup
			}
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// decodeIfBase64 undoes the outer base64 envelope a raw subscription body
// carries when it is itself a base64-encoded link list rather than a
// recognizable container document, per spec.md §4.3's top-level handling
// of plain link-list subscriptions.
func decodeIfBase64(body string) string {
	if body == "" {
		return body
	}
	if strings.ContainsAny(body, "\x00") {
		return body
	}
	for _, scheme := range []string{"ss://", "ssr://", "vmess://", "socks://", "http://", "https://", "{", "[", "proxies:"} {
		if strings.HasPrefix(body, scheme) {
			return body
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(body); err == nil {
		return string(decoded)
	}
	return body
}

func nonEmptySplit(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveGroups parses the request's groups query param (base64 of
// newline-separated custom_proxy_group specs) when present, falling back
// to the preferences' configured groups otherwise.
func (c *Converter) resolveGroups(encoded string, prefsGroups []string) []emit.ExtraGroup {
	specs := prefsGroups
	if strings.TrimSpace(encoded) != "" {
		if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			specs = nonEmptySplit(string(decoded), "\n")
		}
	}
	var groups []emit.ExtraGroup
	for _, spec := range specs {
		g, err := emit.ParseExtraGroup(spec)
		if err != nil {
			logger.Get().Warn("invalid custom_proxy_group spec", "spec", spec, "error", err)
			continue
		}
		groups = append(groups, g)
	}
	return groups
}

// buildRulesetEntries turns preferences' "group,source" surge_ruleset[]
// strings into domain Entry values, skipping malformed ones.
func buildRulesetEntries(specs []string) []*domainruleset.Entry {
	var entries []*domainruleset.Entry
	for _, spec := range specs {
		group, source, ok := strings.Cut(spec, ",")
		if !ok {
			continue
		}
		e, err := domainruleset.NewEntry(strings.TrimSpace(group), strings.TrimSpace(source))
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// baseConfigSource resolves the dialect's configured rule_base path per
// preferences' [common] keys.
func baseConfigSource(target string, prefs *config.Preferences) string {
	switch target {
	case "clash", "clashr":
		return prefs.Common.ClashRuleBase
	case "surge":
		return prefs.Common.SurgeRuleBase
	case "surfboard":
		return prefs.Common.SurfboardRuleBase
	case "mellow":
		return prefs.Common.MellowRuleBase
	default:
		return ""
	}
}

// readBaseConfig reads source as a local file when it exists, otherwise
// fetches it over HTTP with the system proxy, per §4.7 step 8. An empty
// source (no rule_base configured) yields an empty base config, which
// every emitter treats as "start from an empty document."
func (c *Converter) readBaseConfig(ctx context.Context, source string) string {
	if source == "" {
		return ""
	}
	if body, err := os.ReadFile(source); err == nil {
		return string(body)
	}
	body, err := c.Fetcher.Get(ctx, source, httpfetch.ProxyModeSystem)
	if err != nil {
		logger.Get().Warn("base config fetch failed", "source", source, "error", err)
		return ""
	}
	return string(body)
}
