package valueobjects

import (
	"sort"
	"strings"
)

// PluginOpt is one key=value pair of a Shadowsocks plugin option string.
type PluginOpt struct {
	Key   string
	Value string
}

// PluginOpts is an order-preserving sequence of plugin options, since
// Shadowsocks clients are sensitive to option order in some plugins
// (obfs-local's "obfs;obfs-host" ordering in particular). A plain Go map
// cannot make this guarantee, so unlike most of this package's value
// objects PluginOpts is a slice, not a map-backed struct.
type PluginOpts []PluginOpt

// ParsePlugin splits a plugin spec of the shape "name;opt=val;opt=val" into
// the plugin name and its ordered options. A bare option with no "=" is
// kept with an empty value.
func ParsePlugin(raw string) (name string, opts PluginOpts) {
	parts := strings.Split(raw, ";")
	if len(parts) == 0 {
		return "", nil
	}
	name = parts[0]
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		if k, v, ok := strings.Cut(part, "="); ok {
			opts = append(opts, PluginOpt{Key: k, Value: v})
		} else {
			opts = append(opts, PluginOpt{Key: part})
		}
	}
	return name, opts
}

// String renders the options back as "opt=val;opt=val", the form plugin=
// query parameters and obfs-local expect.
func (o PluginOpts) String() string {
	parts := make([]string, 0, len(o))
	for _, opt := range o {
		if opt.Value == "" {
			parts = append(parts, opt.Key)
			continue
		}
		parts = append(parts, opt.Key+"="+opt.Value)
	}
	return strings.Join(parts, ";")
}

// Get returns the value of the first option named key.
func (o PluginOpts) Get(key string) (string, bool) {
	for _, opt := range o {
		if opt.Key == key {
			return opt.Value, true
		}
	}
	return "", false
}

// ToMap collapses PluginOpts into a map, losing order; used only where the
// destination format (Clash YAML plugin-opts) is itself unordered.
func (o PluginOpts) ToMap() map[string]string {
	if len(o) == 0 {
		return nil
	}
	m := make(map[string]string, len(o))
	for _, opt := range o {
		m[opt.Key] = opt.Value
	}
	return m
}

// PluginOptsFromMap builds PluginOpts from an unordered map (e.g. Clash's
// plugin-opts block), sorted by key for deterministic output.
func PluginOptsFromMap(m map[string]string) PluginOpts {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	opts := make(PluginOpts, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, PluginOpt{Key: k, Value: m[k]})
	}
	return opts
}
