// Package ruleset resolves configured rule-set sources (inline literals,
// local files, or remote URLs) into fetched bodies, per spec.md §4.5.
package ruleset

import (
	"context"
	"fmt"
	"os"

	"subconverter/internal/domain/ruleset"
	"subconverter/internal/infrastructure/httpfetch"
	"subconverter/internal/shared/logger"
)

// Fetcher resolves a URL body, used so the aggregator can be tested
// without a real network round trip.
type Fetcher interface {
	Get(ctx context.Context, target, proxyMode string) ([]byte, error)
}

// Aggregator resolves a list of ruleset.Entry sources against local disk
// and the network.
type Aggregator struct {
	fetcher   Fetcher
	proxyMode string
}

// New builds an Aggregator that fetches remote sources through the given
// proxy mode (httpfetch.ProxyModeSystem, httpfetch.ProxyModeNone, or an
// explicit proxy URL).
func New(fetcher Fetcher, proxyMode string) *Aggregator {
	return &Aggregator{fetcher: fetcher, proxyMode: proxyMode}
}

// NewDefault builds an Aggregator backed by a real httpfetch.Client.
func NewDefault(proxyMode string) *Aggregator {
	return New(httpfetch.New(0), proxyMode)
}

// Resolve fills in Fetched/FetchError on every entry per spec.md §4.5:
// inline entries need no resolution, a local file is read if it exists,
// otherwise the source is HTTP-GET'd with exactly one retry through the
// configured rule-set proxy. Resolution happens in place; Resolve never
// returns an error itself, since a single source's failure must not abort
// the rest of the list (§4.5 step 4, and SPEC_FULL.md §4.5's retry note).
func (a *Aggregator) Resolve(ctx context.Context, entries []*ruleset.Entry) {
	for _, e := range entries {
		if e.IsInline() {
			continue
		}
		a.resolveOne(ctx, e)
	}
}

func (a *Aggregator) resolveOne(ctx context.Context, e *ruleset.Entry) {
	if body, err := os.ReadFile(e.Source()); err == nil {
		e.Fetched = string(body)
		return
	}

	body, err := a.fetcher.Get(ctx, e.Source(), a.proxyMode)
	if err == nil && len(body) > 0 {
		e.Fetched = string(body)
		return
	}

	// Retry exactly once through the same proxy mode before giving up.
	body, retryErr := a.fetcher.Get(ctx, e.Source(), a.proxyMode)
	if retryErr == nil && len(body) > 0 {
		e.Fetched = string(body)
		return
	}

	if retryErr == nil {
		retryErr = fmt.Errorf("ruleset: empty body from %s", e.Source())
	}
	e.FetchError = retryErr
	logger.Get().Warn("ruleset fetch failed",
		"group", e.Group(),
		"source", e.Source(),
		"error", retryErr,
	)
}
