// Package container holds the parsers that consume a whole subscription
// document (as opposed to a single link) and produce zero or more nodes:
// Clash YAML, Surge INI, SSD, SSTap, V2RayN JSON, Netch's collection form,
// the Windows SS/SSR JSON exports, SS-Android JSON, and single-node SSR
// libev JSON, plus the auto-detection dispatcher in detect.go.
package container

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// hasJSONKey reports whether raw looks like JSON carrying the given key,
// the cheap probe the auto-detection order in §4.3 runs before committing
// to a specific container parser. Several of the distinguishing keys this
// probes for (e.g. V2RayN's "vnext") are nested rather than top-level, so
// this is a textual sniff rather than a structural one — mirroring how the
// original tool's format sniffing worked, a full decode happens only once
// a format has been chosen.
func hasJSONKey(raw, key string) bool {
	if !json.Valid([]byte(raw)) {
		return false
	}
	return strings.Contains(raw, `"`+key+`"`)
}

// orDefault returns def when s is empty, used for the SSR/SSTap/Netch
// protocol and obfs fields that default to "origin"/"plain" when absent.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// parsePort parses a decimal port string, rejecting anything outside the
// valid TCP port range.
func parsePort(s string) (uint16, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 || p > 65535 {
		return 0, fmt.Errorf("container: invalid port %q", s)
	}
	return uint16(p), nil
}
