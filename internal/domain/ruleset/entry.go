// Package ruleset holds the domain record for one configured rule-set
// source and the normalization rules applied when its body is merged into
// an emitted config.
package ruleset

import (
	"fmt"
	"strings"
)

// inlinePrefix marks a source_url_or_path value as a single literal rule
// line rather than a file path or URL, per spec.md §4.5 step 1.
const inlinePrefix = "[]"

// Entry is one (group, source) pair from the preferences' rule-set list,
// plus the bookkeeping recorded once the aggregator has tried to resolve
// it: Fetched holds the raw body on success, FetchError records why it
// doesn't, so a later emission pass can skip entries that failed without
// re-running the fetch.
type Entry struct {
	group  string
	source string

	Fetched    string
	FetchError error
}

// NewEntry validates the fields common to every entry: a group name is
// always required, and the source must be non-empty. Unlike the teacher's
// RuleSetEntry, the source is not required to be an http(s) URL: it may
// also be a local file path or an inline "[]rule" literal, so URL-scheme
// validation happens in the aggregator at resolve time, not here.
func NewEntry(group, source string) (*Entry, error) {
	if group == "" {
		return nil, fmt.Errorf("ruleset entry: group name is required")
	}
	if source == "" {
		return nil, fmt.Errorf("ruleset entry: source is required")
	}
	return &Entry{group: group, source: source}, nil
}

func (e *Entry) Group() string  { return e.group }
func (e *Entry) Source() string { return e.source }

// IsInline reports whether source is a single literal rule line rather
// than a file path or URL.
func (e *Entry) IsInline() bool {
	return strings.HasPrefix(e.source, inlinePrefix)
}

// InlineRule returns the literal rule text for an inline entry (the source
// with its "[]" marker stripped). Only meaningful when IsInline is true.
func (e *Entry) InlineRule() string {
	return strings.TrimPrefix(e.source, inlinePrefix)
}

// Empty reports whether the entry has nothing usable to emit: it was never
// fetched, fetching failed, or the fetched body is blank (spec.md §4.5
// step 4 discards entries with an empty body).
func (e *Entry) Empty() bool {
	if e.IsInline() {
		return strings.TrimSpace(e.InlineRule()) == ""
	}
	return e.FetchError != nil || strings.TrimSpace(e.Fetched) == ""
}

// NormalizedLines splits Fetched into the rule lines Clash-family emitters
// accept, applying spec.md §4.5's normalization:
//   - split on "\n", or on "\r" when the body uses bare-CR line endings
//   - strip stray "\r"
//   - drop blank lines and lines starting with "#" or ";"
//   - drop lines whose leading token is USER-AGENT, URL-REGEX, or
//     PROCESS-NAME (unsupported by Clash)
//   - strip ",no-resolve" from IP-CIDR(6) lines and ",force-remote-dns"
//     from DOMAIN-SUFFIX lines
//   - append ",<group>" to every surviving line
func (e *Entry) NormalizedLines() []string {
	if e.IsInline() {
		line := strings.TrimSpace(e.InlineRule())
		if line == "" {
			return nil
		}
		return []string{line + "," + e.group}
	}

	body := e.Fetched
	sep := "\n"
	if !strings.Contains(body, "\n") && strings.Contains(body, "\r") {
		sep = "\r"
	}

	var out []string
	for _, raw := range strings.Split(body, sep) {
		line := strings.TrimSpace(strings.ReplaceAll(raw, "\r", ""))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		token := line
		if idx := strings.IndexByte(line, ','); idx >= 0 {
			token = line[:idx]
		}
		switch strings.ToUpper(token) {
		case "USER-AGENT", "URL-REGEX", "PROCESS-NAME":
			continue
		}

		switch strings.ToUpper(token) {
		case "IP-CIDR", "IP-CIDR6":
			line = strings.ReplaceAll(line, ",no-resolve", "")
		case "DOMAIN-SUFFIX":
			line = strings.ReplaceAll(line, ",force-remote-dns", "")
		}

		out = append(out, line+","+e.group)
	}
	return out
}
