package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appruleset "subconverter/internal/application/ruleset"
	"subconverter/internal/application/convert"
	"subconverter/internal/infrastructure/config"
)

func TestConfigHandler_ReadConfReloadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pref.ini")
	require.NoError(t, os.WriteFile(path, []byte("[common]\ndefault_url = https://first\n"), 0o644))

	prefs, err := config.Load(path)
	require.NoError(t, err)
	snapshot := config.NewSnapshot(prefs)

	fetcher := &stubFetcher{}
	converter := &convert.Converter{Fetcher: fetcher, Aggregator: appruleset.New(fetcher, "NONE")}
	h := NewConfigHandler(converter, snapshot, &config.Lock{}, path)

	require.NoError(t, os.WriteFile(path, []byte("[common]\ndefault_url = https://second\n"), 0o644))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readconf", nil)
	h.ReadConf(c)

	assert.Equal(t, "done", w.Body.String())
	assert.Equal(t, "https://second", snapshot.Get().Common.DefaultURL)
}

func TestConfigHandler_RefreshRulesReturnsDone(t *testing.T) {
	fetcher := &stubFetcher{}
	converter := &convert.Converter{Fetcher: fetcher, Aggregator: appruleset.New(fetcher, "NONE")}
	prefs, err := config.Load("")
	require.NoError(t, err)
	h := NewConfigHandler(converter, config.NewSnapshot(prefs), &config.Lock{}, "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/refreshrules", nil)
	h.RefreshRules(c)

	assert.Equal(t, "done", w.Body.String())
}

func TestDebugHandler_DisabledInAPIMode(t *testing.T) {
	prefs, err := config.Load("")
	require.NoError(t, err)
	prefs.Common.APIMode = true
	h := NewDebugHandler(nil, config.NewSnapshot(prefs))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/get?url=https://example.com", nil)
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugHandler_GetLocalMissingPathIsInvalid(t *testing.T) {
	prefs, err := config.Load("")
	require.NoError(t, err)
	h := NewDebugHandler(nil, config.NewSnapshot(prefs))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/getlocal", nil)
	h.GetLocal(c)

	assert.Equal(t, "Invalid request!", w.Body.String())
}
