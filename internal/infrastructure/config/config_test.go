package config

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrefs(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pref.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	prefs, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	require.NoError(t, err)
	assert.False(t, prefs.Common.APIMode)
	assert.Equal(t, "NONE", prefs.Common.ProxySubscription)
	assert.Equal(t, 25500, prefs.Server.Port)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	prefs, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, prefs.Advanced.MaxConcurrentThreads)
}

func TestLoad_ParsesRepeatedKeysViaShadows(t *testing.T) {
	path := writePrefs(t, `
[common]
api_mode = true
exclude_remarks = expired
exclude_remarks = trial
default_url = https://example.com/sub

[ruleset]
enabled = true
surge_ruleset = Proxy,https://example.com/proxy.list
surge_ruleset = Direct,[]GEOIP,CN,DIRECT

[server]
listen = 127.0.0.1
port = 8080
`)
	prefs, err := Load(path)
	require.NoError(t, err)

	assert.True(t, prefs.Common.APIMode)
	assert.Equal(t, "https://example.com/sub", prefs.Common.DefaultURL)
	assert.Equal(t, []string{"expired", "trial"}, prefs.Common.ExcludeRemarks)
	assert.True(t, prefs.Ruleset.Enabled)
	assert.Equal(t, []string{
		"Proxy,https://example.com/proxy.list",
		"Direct,[]GEOIP,CN,DIRECT",
	}, prefs.Ruleset.SurgeRuleset)
	assert.Equal(t, "127.0.0.1", prefs.Server.Listen)
	assert.Equal(t, 8080, prefs.Server.Port)
}

func TestSnapshot_StoreReplacesWholesale(t *testing.T) {
	snap := NewSnapshot(defaults())
	first := snap.Get()
	assert.Equal(t, 25500, first.Server.Port)

	replacement := defaults()
	replacement.Server.Port = 9999
	snap.Store(replacement)

	assert.Equal(t, 9999, snap.Get().Server.Port)
	assert.Equal(t, 25500, first.Server.Port, "previously returned snapshot must stay unchanged")
}

func TestLock_SerializesConcurrentCallers(t *testing.T) {
	lock := &Lock{}
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock.Do(func() {
				n := atomic.AddInt32(&active, 1)
				if n > atomic.LoadInt32(&maxActive) {
					atomic.StoreInt32(&maxActive, n)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive, "Lock.Do must not allow overlapping critical sections")
}
