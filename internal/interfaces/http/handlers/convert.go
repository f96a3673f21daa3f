// Package handlers adapts gin requests into calls against the
// application layer: convert.Converter for the conversion endpoints,
// config.Snapshot for reload, and the raw httpfetch.Client for the
// debug passthrough endpoints. No business logic lives here — a handler's
// job is query-string extraction, validation, and writing the response
// spec.md §6 describes.
package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"subconverter/internal/application/convert"
	"subconverter/internal/application/ruleset"
	"subconverter/internal/infrastructure/config"
	"subconverter/internal/infrastructure/httpfetch"
	"subconverter/internal/shared/logger"
	"subconverter/internal/shared/version"
)

// ConvertHandler serves /sub and its per-dialect shortcut routes.
type ConvertHandler struct {
	converter *convert.Converter
	cfg       *config.Snapshot
	lock      *config.Lock
	confPath  string
	cfwChild  bool
	validate  *validator.Validate
}

// NewConvertHandler wires the handler for spec.md §4.7 step 1: cfwChild
// mirrors the `-cfw` flag (§6's CLI), which forces the same
// reload-then-refresh path api_mode=false already takes, on every request.
func NewConvertHandler(converter *convert.Converter, cfg *config.Snapshot, lock *config.Lock, confPath string, cfwChild bool) *ConvertHandler {
	return &ConvertHandler{converter: converter, cfg: cfg, lock: lock, confPath: confPath, cfwChild: cfwChild, validate: validator.New()}
}

// subQuery mirrors spec.md §4.7's recognized query parameters, validated
// with go-playground/validator before being translated into a
// convert.Request: target must be one of the documented dialects, and
// ver is bounded to 0-4. group is not validated.
type subQuery struct {
	Target     string `form:"target" validate:"required,oneof=clash clashr surge surfboard mellow ss ssr v2ray quan quanx ssd"`
	URL        string `form:"url"`
	Group      string `form:"group"`
	Upload     bool   `form:"upload"`
	UploadPath string `form:"upload_path"`
	Ver        int    `form:"ver" validate:"gte=0,lte=4"`
	AppendType bool   `form:"append_type"`
	TFO        bool   `form:"tfo"`
	UDP        bool   `form:"udp"`
	List       bool   `form:"list"`
	Include    string `form:"include"`
	Exclude    string `form:"exclude"`
	Emoji      bool   `form:"emoji"`
	Groups     string `form:"groups"`
}

// Sub handles GET /sub, reading target from the query string per §6.
func (h *ConvertHandler) Sub(c *gin.Context) {
	h.convert(c, "")
}

// Shortcut returns a handler for one of the per-dialect routes (/clash,
// /ss, ...), which are equivalent to /sub&target=<name> per §6's table.
func (h *ConvertHandler) Shortcut(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.convert(c, target)
	}
}

func (h *ConvertHandler) convert(c *gin.Context, forcedTarget string) {
	var q subQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.String(http.StatusOK, "Invalid request!")
		return
	}
	if forcedTarget != "" {
		q.Target = forcedTarget
	}
	if err := h.validate.Struct(q); err != nil {
		c.String(http.StatusOK, "Invalid request!")
		return
	}

	prefs := h.cfg.Get()

	// §4.7 step 1: api_mode=true requests observe the snapshot as-is
	// (shared read, no lock); otherwise reload pref.ini before handling
	// the request, matching the teacher's "always fresh config" default.
	// -cfw forces the same path regardless of api_mode (§6's CLI flag).
	if !prefs.Common.APIMode || h.cfwChild {
		h.lock.Do(func() {
			if reloaded, err := config.Load(h.confPath); err == nil {
				h.cfg.Store(reloaded)
			} else {
				logger.Get().Warn("preferences reload failed", "path", h.confPath, "error", err)
			}
		})
		prefs = h.cfg.Get()
	}

	// §4.7 step 4: a ruleset refresh is serialized with the configuration
	// lock so at most one refresh runs at a time.
	if prefs.Ruleset.UpdateRulesetOnRequest || h.cfwChild {
		h.lock.Do(func() {
			h.converter.RefreshRulesets(c.Request.Context(), prefs)
		})
	}

	req := convert.Request{
		Target:     q.Target,
		URL:        q.URL,
		Group:      q.Group,
		Upload:     q.Upload,
		UploadPath: q.UploadPath,
		SurgeVer:   q.Ver,
		AppendType: q.AppendType,
		TFO:        q.TFO,
		UDP:        q.UDP,
		NodeList:   q.List,
		Include:    q.Include,
		Exclude:    q.Exclude,
		Emoji:      q.Emoji,
		Groups:     q.Groups,
		RawQuery:   c.Request.URL.RawQuery,
	}

	result := h.converter.Convert(c.Request.Context(), req, prefs)
	c.Data(result.Status, result.ContentType, []byte(result.Body))
}

// ConfigHandler serves the configuration-lock-guarded control endpoints:
// /refreshrules and /readconf.
type ConfigHandler struct {
	converter  *convert.Converter
	cfg        *config.Snapshot
	lock       *config.Lock
	confPath   string
	aggregator *ruleset.Aggregator
}

func NewConfigHandler(converter *convert.Converter, cfg *config.Snapshot, lock *config.Lock, confPath string) *ConfigHandler {
	return &ConfigHandler{converter: converter, cfg: cfg, lock: lock, confPath: confPath, aggregator: converter.Aggregator}
}

// RefreshRules handles GET /refreshrules, §6's "re-run ruleset aggregator"
// endpoint, held under the configuration lock so it cannot interleave with
// a concurrent /readconf or another refresh (§5).
func (h *ConfigHandler) RefreshRules(c *gin.Context) {
	h.lock.Do(func() {
		h.converter.RefreshRulesets(c.Request.Context(), h.cfg.Get())
	})
	c.String(http.StatusOK, "done")
}

// ReadConf handles GET /readconf, reloading pref.ini into a fresh
// Snapshot value under the configuration lock (§5's "full-table swap").
func (h *ConfigHandler) ReadConf(c *gin.Context) {
	h.lock.Do(func() {
		prefs, err := config.Load(h.confPath)
		if err != nil {
			logger.Get().Error("readconf failed", "path", h.confPath, "error", err)
			return
		}
		h.cfg.Store(prefs)
	})
	c.String(http.StatusOK, "done")
}

// DebugHandler serves the /get and /getlocal passthrough endpoints, both
// disabled when api_mode is true per §6.
type DebugHandler struct {
	fetcher *httpfetch.Client
	cfg     *config.Snapshot
}

func NewDebugHandler(fetcher *httpfetch.Client, cfg *config.Snapshot) *DebugHandler {
	return &DebugHandler{fetcher: fetcher, cfg: cfg}
}

// Get handles GET /get?url=..., a raw proxy fetch of the given URL.
func (h *DebugHandler) Get(c *gin.Context) {
	if h.cfg.Get().Common.APIMode {
		c.String(http.StatusNotFound, "")
		return
	}
	target := c.Query("url")
	if target == "" {
		c.String(http.StatusOK, "Invalid request!")
		return
	}
	body, err := h.fetcher.Get(c.Request.Context(), target, h.cfg.Get().Common.ProxySubscription)
	if err != nil {
		logger.Get().Warn("debug fetch failed", "url", target, "error", err)
		c.String(http.StatusOK, "")
		return
	}
	c.Data(http.StatusOK, "text/plain;charset=utf-8", body)
}

// GetLocal handles GET /getlocal?path=..., reading a local file verbatim.
func (h *DebugHandler) GetLocal(c *gin.Context) {
	if h.cfg.Get().Common.APIMode {
		c.String(http.StatusNotFound, "")
		return
	}
	path := c.Query("path")
	if path == "" {
		c.String(http.StatusOK, "Invalid request!")
		return
	}
	body, err := os.ReadFile(path)
	if err != nil {
		logger.Get().Warn("debug getlocal failed", "path", path, "error", err)
		c.String(http.StatusOK, "")
		return
	}
	c.Data(http.StatusOK, "text/plain;charset=utf-8", body)
}

// Version handles GET /version, the ambient liveness endpoint SPEC_FULL.md
// adds (not present in spec.md §6's table).
func Version(c *gin.Context) {
	c.String(http.StatusOK, version.Current)
}
