package container

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gopkg.in/ini.v1"

	"subconverter/internal/domain/node"
	"subconverter/internal/domain/node/valueobjects"
)

// surge2SSEncryptModuleMD5 is the only module MD5 the Surge-2 "custom" kind
// accepts, per spec.md §4.3: any other MD5 causes the entry to be skipped.
const surge2SSEncryptModuleMD5 = "f7653207090ce3389115e9c88541afe0"

// moduleMD5Cache memoizes a module URL's fetched MD5 across requests, per
// spec.md §4.3's "Module MD5 results are memoized across requests."
var moduleMD5Cache sync.Map // url string -> md5 hex string

var moduleHTTPClient = &http.Client{Timeout: 10 * time.Second}

func moduleMD5(url string) (string, error) {
	if v, ok := moduleMD5Cache.Load(url); ok {
		return v.(string), nil
	}
	resp, err := moduleHTTPClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch module %s: %w", url, err)
	}
	defer resp.Body.Close()

	h := md5.New()
	if _, err := io.Copy(h, resp.Body); err != nil {
		return "", fmt.Errorf("read module %s: %w", url, err)
	}
	sum := hex.EncodeToString(h.Sum(nil))
	moduleMD5Cache.Store(url, sum)
	return sum, nil
}

func loadSurgeINI(body string) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{
		AllowShadows:            true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, []byte(body))
}

// LooksLikeSurge reports whether body parses as an INI document with a
// [Proxy] section, the detection predicate step 3 of spec.md §4.3's order.
func LooksLikeSurge(body string) bool {
	f, err := loadSurgeINI(body)
	if err != nil {
		return false
	}
	return f.HasSection("Proxy")
}

// ParseSurge converts every "name = spec" line under [Proxy], dispatching
// on spec's leading token per spec.md §4.3. Lines that fail to parse (an
// unrecognized kind, a rejected custom module, a bad cipher) are skipped.
func ParseSurge(body string) []*node.Node {
	f, err := loadSurgeINI(body)
	if err != nil || !f.HasSection("Proxy") {
		return nil
	}

	var nodes []*node.Node
	for _, key := range f.Section("Proxy").Keys() {
		n, err := surgeNode(key.Name(), key.Value())
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func splitSurgeSpec(spec string) (kind string, positional []string, opts map[string]string) {
	opts = make(map[string]string)
	for i, raw := range strings.Split(spec, ",") {
		p := strings.TrimSpace(raw)
		if i == 0 {
			kind = strings.ToLower(p)
			continue
		}
		if k, v, ok := strings.Cut(p, "="); ok {
			opts[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		} else if p != "" {
			positional = append(positional, p)
		}
	}
	return kind, positional, opts
}

// surgeObfsPlugin maps Surge's obfs=/obfs-host= options onto the canonical
// SIP002 "obfs-local" plugin shape shared with the ss:// link parser.
func surgeObfsPlugin(opts map[string]string) (string, valueobjects.PluginOpts) {
	obfs, ok := opts["obfs"]
	if !ok {
		return "", nil
	}
	var popts valueobjects.PluginOpts
	popts = append(popts, valueobjects.PluginOpt{Key: "obfs", Value: obfs})
	if host, ok := opts["obfs-host"]; ok {
		popts = append(popts, valueobjects.PluginOpt{Key: "obfs-host", Value: host})
	}
	return "obfs-local", popts
}

func wsHeadersHost(raw string) string {
	for _, pair := range strings.Split(raw, "|") {
		if k, v, ok := strings.Cut(pair, ":"); ok && strings.EqualFold(strings.TrimSpace(k), "Host") {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func surgeNode(name, spec string) (*node.Node, error) {
	kind, positional, opts := splitSurgeSpec(spec)

	switch kind {
	case "custom":
		if len(positional) < 5 {
			return nil, fmt.Errorf("surge custom %q: too few fields", name)
		}
		host, portStr, method, password, moduleURL := positional[0], positional[1], positional[2], positional[3], positional[4]
		sum, err := moduleMD5(moduleURL)
		if err != nil {
			return nil, fmt.Errorf("surge custom %q: %w", name, err)
		}
		if sum != surge2SSEncryptModuleMD5 {
			return nil, fmt.Errorf("surge custom %q: unrecognized module md5 %s", name, sum)
		}
		port, err := parsePort(portStr)
		if err != nil {
			return nil, err
		}
		plugin, popts := surgeObfsPlugin(opts)
		ss, err := valueobjects.NewSSParams(password, method, plugin, popts)
		if err != nil {
			return nil, err
		}
		n := node.New(node.LinkShadowsocks, "", name, host, port)
		n.SS = ss
		return n, nil

	case "ss":
		if len(positional) < 2 {
			return nil, fmt.Errorf("surge ss %q: too few fields", name)
		}
		port, err := parsePort(positional[1])
		if err != nil {
			return nil, err
		}
		plugin, popts := surgeObfsPlugin(opts)
		ss, err := valueobjects.NewSSParams(opts["password"], opts["encrypt-method"], plugin, popts)
		if err != nil {
			return nil, err
		}
		n := node.New(node.LinkShadowsocks, "", name, positional[0], port)
		n.SS = ss
		return n, nil

	case "socks5":
		if len(positional) < 2 {
			return nil, fmt.Errorf("surge socks5 %q: too few fields", name)
		}
		port, err := parsePort(positional[1])
		if err != nil {
			return nil, err
		}
		var user, pass string
		if len(positional) > 2 {
			user = positional[2]
		}
		if len(positional) > 3 {
			pass = positional[3]
		}
		n := node.New(node.LinkSOCKS5, "", name, positional[0], port)
		n.SocksHTTP = valueobjects.NewSocksHTTPParams(user, pass, false)
		return n, nil

	case "vmess":
		if len(positional) < 2 {
			return nil, fmt.Errorf("surge vmess %q: too few fields", name)
		}
		port, err := parsePort(positional[1])
		if err != nil {
			return nil, err
		}
		transport := "tcp"
		if strings.EqualFold(opts["ws"], "true") {
			transport = "ws"
		}
		tls := strings.EqualFold(opts["tls"], "true")
		hostHeader := wsHeadersHost(opts["ws-headers"])
		params, err := valueobjects.NewVMessParams(positional[0], opts["username"], 0, "", transport, opts["ws-path"], hostHeader, tls, "")
		if err != nil {
			return nil, err
		}
		n := node.New(node.LinkVMess, "", name, positional[0], port)
		n.VMess = params
		return n, nil

	case "shadowsocks":
		if len(positional) < 2 {
			return nil, fmt.Errorf("surge shadowsocks %q: too few fields", name)
		}
		port, err := parsePort(positional[1])
		if err != nil {
			return nil, err
		}
		group := opts["tag"]
		if protocol, ok := opts["ssr-protocol"]; ok {
			ssr, err := valueobjects.NewSSRParams(opts["password"], opts["method"], protocol, opts["ssr-protocol-param"], orDefault(opts["obfs"], "plain"), opts["obfs-host"])
			if err != nil {
				return nil, err
			}
			n := node.New(node.LinkShadowsocksR, group, name, positional[0], port)
			n.SSR = ssr
			if err := n.NormalizeSSR(); err != nil {
				return nil, err
			}
			return n, nil
		}
		plugin, popts := surgeObfsPlugin(opts)
		ss, err := valueobjects.NewSSParams(opts["password"], opts["method"], plugin, popts)
		if err != nil {
			return nil, err
		}
		n := node.New(node.LinkShadowsocks, group, name, positional[0], port)
		n.SS = ss
		return n, nil

	default:
		return nil, fmt.Errorf("surge %q: unrecognized kind %q", name, kind)
	}
}
