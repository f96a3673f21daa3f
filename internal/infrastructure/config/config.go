// Package config loads pref.ini (the §6 preferences schema) with
// gopkg.in/ini.v1, chosen over the teacher's spf13/viper because several
// keys here repeat (surge_ruleset, rename_node, custom_proxy_group, rule)
// rather than arraying — ini.v1's AllowShadows plus Key.ValueWithShadows
// is exactly the "[]" repeated-key notation §6 describes.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/ini.v1"
)

// Common holds [common].
type Common struct {
	APIMode           bool
	DefaultURL        string
	ExcludeRemarks    []string
	IncludeRemarks    []string
	ClashRuleBase     string
	SurgeRuleBase     string
	SurfboardRuleBase string
	MellowRuleBase    string
	AppendProxyType   bool
	ProxyRuleset      string
	ProxySubscription string
	RenameNode        []string
}

// SurgeExternalProxy holds [surge_external_proxy].
type SurgeExternalProxy struct {
	SurgeSSRPath string
}

// ManagedConfig holds [managed_config].
type ManagedConfig struct {
	WriteManagedConfig  bool
	ManagedConfigPrefix string
}

// Emojis holds [emojis].
type Emojis struct {
	AddEmoji       bool
	RemoveOldEmoji bool
	Rule           []string
}

// Ruleset holds [ruleset].
type Ruleset struct {
	Enabled                bool
	OverwriteOriginalRules bool
	UpdateRulesetOnRequest bool
	SurgeRuleset           []string
}

// ClashProxyGroup holds [clash_proxy_group].
type ClashProxyGroup struct {
	CustomProxyGroup []string
}

// Server holds [server].
type Server struct {
	Listen string
	Port   int
}

// Advanced holds [advanced].
type Advanced struct {
	PrintDebugInfo        bool
	MaxPendingConnections int
	MaxConcurrentThreads  int
}

// Preferences is the full pref.ini document, §6's preferences schema.
type Preferences struct {
	Common             Common
	SurgeExternalProxy SurgeExternalProxy
	ManagedConfig      ManagedConfig
	Emojis             Emojis
	Ruleset            Ruleset
	ClashProxyGroup    ClashProxyGroup
	Server             Server
	Advanced           Advanced
}

func defaults() *Preferences {
	return &Preferences{
		Common: Common{
			APIMode:           false,
			ProxyRuleset:      "NONE",
			ProxySubscription: "NONE",
		},
		Server: Server{
			Listen: "0.0.0.0",
			Port:   25500,
		},
		Advanced: Advanced{
			MaxPendingConnections: 10240,
			MaxConcurrentThreads:  4,
		},
	}
}

// Load parses path into a Preferences, applying defaults for anything the
// file omits. A missing file is not an error — it yields pure defaults,
// matching the teacher's "config file is optional" Load behavior.
func Load(path string) (*Preferences, error) {
	prefs := defaults()
	if path == "" {
		return prefs, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:            true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	common := f.Section("common")
	prefs.Common.APIMode = common.Key("api_mode").MustBool(prefs.Common.APIMode)
	prefs.Common.DefaultURL = common.Key("default_url").String()
	prefs.Common.ExcludeRemarks = common.Key("exclude_remarks").ValueWithShadows()
	prefs.Common.IncludeRemarks = common.Key("include_remarks").ValueWithShadows()
	prefs.Common.ClashRuleBase = common.Key("clash_rule_base").String()
	prefs.Common.SurgeRuleBase = common.Key("surge_rule_base").String()
	prefs.Common.SurfboardRuleBase = common.Key("surfboard_rule_base").String()
	prefs.Common.MellowRuleBase = common.Key("mellow_rule_base").String()
	prefs.Common.AppendProxyType = common.Key("append_proxy_type").MustBool(prefs.Common.AppendProxyType)
	prefs.Common.ProxyRuleset = orDefault(common.Key("proxy_ruleset").String(), prefs.Common.ProxyRuleset)
	prefs.Common.ProxySubscription = orDefault(common.Key("proxy_subscription").String(), prefs.Common.ProxySubscription)
	prefs.Common.RenameNode = common.Key("rename_node").ValueWithShadows()

	surgeExt := f.Section("surge_external_proxy")
	prefs.SurgeExternalProxy.SurgeSSRPath = surgeExt.Key("surge_ssr_path").String()

	managed := f.Section("managed_config")
	prefs.ManagedConfig.WriteManagedConfig = managed.Key("write_managed_config").MustBool()
	prefs.ManagedConfig.ManagedConfigPrefix = managed.Key("managed_config_prefix").String()

	emojis := f.Section("emojis")
	prefs.Emojis.AddEmoji = emojis.Key("add_emoji").MustBool()
	prefs.Emojis.RemoveOldEmoji = emojis.Key("remove_old_emoji").MustBool()
	prefs.Emojis.Rule = emojis.Key("rule").ValueWithShadows()

	ruleset := f.Section("ruleset")
	prefs.Ruleset.Enabled = ruleset.Key("enabled").MustBool()
	prefs.Ruleset.OverwriteOriginalRules = ruleset.Key("overwrite_original_rules").MustBool()
	prefs.Ruleset.UpdateRulesetOnRequest = ruleset.Key("update_ruleset_on_request").MustBool()
	prefs.Ruleset.SurgeRuleset = ruleset.Key("surge_ruleset").ValueWithShadows()

	clashGroup := f.Section("clash_proxy_group")
	prefs.ClashProxyGroup.CustomProxyGroup = clashGroup.Key("custom_proxy_group").ValueWithShadows()

	server := f.Section("server")
	prefs.Server.Listen = orDefault(server.Key("listen").String(), prefs.Server.Listen)
	prefs.Server.Port = server.Key("port").MustInt(prefs.Server.Port)

	advanced := f.Section("advanced")
	prefs.Advanced.PrintDebugInfo = advanced.Key("print_debug_info").MustBool()
	prefs.Advanced.MaxPendingConnections = advanced.Key("max_pending_connections").MustInt(prefs.Advanced.MaxPendingConnections)
	prefs.Advanced.MaxConcurrentThreads = advanced.Key("max_concurrent_threads").MustInt(prefs.Advanced.MaxConcurrentThreads)

	return prefs, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Snapshot is the atomically-swapped configuration state §5 describes:
// routine requests read it without acquiring the configuration lock,
// reload/refresh replace it wholesale under that lock.
type Snapshot struct {
	mu    sync.RWMutex
	value *Preferences
}

// NewSnapshot wraps an initial Preferences value.
func NewSnapshot(p *Preferences) *Snapshot {
	return &Snapshot{value: p}
}

// Get returns the current Preferences by reference. Callers must not
// mutate the returned value; Store installs a wholesale replacement
// instead of mutating in place, so existing readers' snapshots stay valid.
func (s *Snapshot) Get() *Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Store atomically replaces the snapshot, the configuration-lock-guarded
// "full-table swap" §5 requires for preferences reload.
func (s *Snapshot) Store(p *Preferences) {
	s.mu.Lock()
	s.value = p
	s.mu.Unlock()
}

// Lock is the single mutual-exclusion lock §5 calls `on_configuring`: it
// serializes readConf()/refreshRulesets() (and any caller that must
// observe a consistent, non-partial configuration) against each other.
// It is distinct from Snapshot's own RWMutex, which only protects the
// pointer swap itself — Lock instead brackets the whole
// read-file-then-swap or fetch-then-replace operation, so two concurrent
// /readconf and /refreshrules calls (or the update_ruleset_on_request
// path racing either) never interleave.
type Lock struct {
	mu sync.Mutex
}

// Do runs fn with the configuration lock held.
func (l *Lock) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}
