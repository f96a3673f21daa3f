package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appruleset "subconverter/internal/application/ruleset"
	"subconverter/internal/application/convert"
	"subconverter/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct{ body string }

func (s *stubFetcher) Get(ctx context.Context, target, proxyMode string) ([]byte, error) {
	return []byte(s.body), nil
}

func TestRouter_RegistersSpecEndpoints(t *testing.T) {
	prefs, err := config.Load("")
	require.NoError(t, err)

	fetcher := &stubFetcher{}
	converter := &convert.Converter{Fetcher: fetcher, Aggregator: appruleset.New(fetcher, "NONE")}

	r := NewRouter(Deps{
		Converter:  converter,
		Config:     config.NewSnapshot(prefs),
		ConfigLock: &config.Lock{},
	})
	r.SetupRoutes()

	for _, path := range []string{"/sub", "/clash", "/surge", "/ss", "/refreshrules", "/readconf", "/get", "/getlocal", "/version"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.Engine().ServeHTTP(w, req)
		assert.NotEqual(t, http.StatusNotFound, w.Code, "path %s should be registered", path)
	}
}

func TestRouter_UnknownPathIs404(t *testing.T) {
	prefs, err := config.Load("")
	require.NoError(t, err)
	fetcher := &stubFetcher{}
	converter := &convert.Converter{Fetcher: fetcher, Aggregator: appruleset.New(fetcher, "NONE")}

	r := NewRouter(Deps{
		Converter:  converter,
		Config:     config.NewSnapshot(prefs),
		ConfigLock: &config.Lock{},
	})
	r.SetupRoutes()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	r.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
