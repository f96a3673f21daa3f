// Package http wires gin route registration to the handlers package,
// grounded on the teacher's internal/interfaces/http/router.go "gin
// engine + route groups" shape (read before deletion) with the
// auth/permission machinery stripped per spec.md §1's "does not
// authenticate requests."
package http

import (
	"github.com/gin-gonic/gin"

	"subconverter/internal/application/convert"
	"subconverter/internal/infrastructure/config"
	"subconverter/internal/infrastructure/gist"
	"subconverter/internal/infrastructure/httpfetch"
	"subconverter/internal/interfaces/http/handlers"
	"subconverter/internal/interfaces/http/middleware"
)

// Router holds the gin engine and the handlers it dispatches to.
type Router struct {
	engine    *gin.Engine
	convert   *handlers.ConvertHandler
	cfgH      *handlers.ConfigHandler
	debug     *handlers.DebugHandler
	maxThread int
}

// Deps bundles the collaborators NewRouter needs to build its handlers.
type Deps struct {
	Converter            *convert.Converter
	Config               *config.Snapshot
	ConfigLock           *config.Lock
	ConfPath             string
	CFWChild             bool
	Fetcher              *httpfetch.Client
	GistToken            string
	MaxConcurrentThreads int
}

// NewRouter builds the gin engine and its handlers, but does not register
// routes yet — call SetupRoutes for that.
func NewRouter(deps Deps) *Router {
	if deps.GistToken != "" {
		deps.Converter.Gist = gist.New(deps.GistToken)
	}

	return &Router{
		engine:    gin.New(),
		convert:   handlers.NewConvertHandler(deps.Converter, deps.Config, deps.ConfigLock, deps.ConfPath, deps.CFWChild),
		cfgH:      handlers.NewConfigHandler(deps.Converter, deps.Config, deps.ConfigLock, deps.ConfPath),
		debug:     handlers.NewDebugHandler(deps.Fetcher, deps.Config),
		maxThread: deps.MaxConcurrentThreads,
	}
}

// shortcutTargets maps each dialect-named route in spec.md §6's table to
// its target= value.
var shortcutTargets = map[string]string{
	"/clash":     "clash",
	"/clashr":    "clashr",
	"/surge":     "surge",
	"/surfboard": "surfboard",
	"/mellow":    "mellow",
	"/ss":        "ss",
	"/ssr":       "ssr",
	"/v2ray":     "v2ray",
	"/quan":      "quan",
	"/quanx":     "quanx",
	"/ssd":       "ssd",
}

// SetupRoutes registers every endpoint spec.md §6 names, plus the ambient
// /version liveness route SPEC_FULL.md adds.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS())
	r.engine.Use(middleware.Concurrency(r.maxThread))

	r.engine.GET("/sub", r.convert.Sub)
	for path, target := range shortcutTargets {
		r.engine.GET(path, r.convert.Shortcut(target))
	}

	r.engine.GET("/refreshrules", r.cfgH.RefreshRules)
	r.engine.GET("/readconf", r.cfgH.ReadConf)
	r.engine.GET("/get", r.debug.Get)
	r.engine.GET("/getlocal", r.debug.GetLocal)
	r.engine.GET("/version", handlers.Version)
}

// Engine returns the underlying gin engine, e.g. for http.Server.Handler.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
