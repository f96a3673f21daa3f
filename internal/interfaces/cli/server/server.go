// Package server provides the `orris server` cobra command: the process
// bootstrap spec.md §1 calls out as an external collaborator ("process
// bootstrap and working-directory handling"). It loads preferences,
// wires the HTTP router, and runs the listener with graceful shutdown,
// grounded on the teacher's internal/interfaces/cli/server command (read
// before deletion) with the database/migration/event-dispatcher
// machinery stripped — this service holds no persistent state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	appruleset "subconverter/internal/application/ruleset"
	"subconverter/internal/application/convert"
	"subconverter/internal/infrastructure/config"
	"subconverter/internal/infrastructure/httpfetch"
	httprouter "subconverter/internal/interfaces/http"
	"subconverter/internal/shared/logger"
)

var (
	confPath  string
	listen    string
	port      int
	cfwChild  bool
	debugMode bool
	gistToken string
)

// NewCommand builds the `server` subcommand: --cfw, --conf, --listen,
// --port per SPEC_FULL.md's CLI surface. The flags take cobra's
// double-dash form; a single-dash -cfw is not accepted.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the subscription-conversion HTTP server",
		Long:  `Start the proxy-subscription conversion server described by pref.ini.`,
		RunE:  run,
	}

	cmd.Flags().StringVar(&confPath, "conf", "pref.ini", "path to the preferences file")
	cmd.Flags().StringVar(&listen, "listen", "", "override [server] listen from the preferences file")
	cmd.Flags().IntVar(&port, "port", 0, "override [server] port from the preferences file")
	cmd.Flags().BoolVar(&cfwChild, "cfw", false, "mark this process as a child of a foreign config manager, forcing reload+refresh on every request")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "enable verbose logging and gin debug mode")
	cmd.Flags().StringVar(&gistToken, "gist-token", os.Getenv("GIST_TOKEN"), "GitHub token for the upload=true Gist side-channel")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger.Init(logger.Options{Level: level})
	log := logger.Get()

	prefs, err := config.Load(confPath)
	if err != nil {
		return fmt.Errorf("server: load preferences: %w", err)
	}
	if listen != "" {
		prefs.Server.Listen = listen
	}
	if port != 0 {
		prefs.Server.Port = port
	}

	snapshot := config.NewSnapshot(prefs)
	lock := &config.Lock{}

	fetchClient := httpfetch.New(0)
	converter := &convert.Converter{
		Fetcher:    fetchClient,
		Aggregator: appruleset.New(fetchClient, prefs.Common.ProxyRuleset),
	}

	if !debugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httprouter.NewRouter(httprouter.Deps{
		Converter:            converter,
		Config:               snapshot,
		ConfigLock:           lock,
		ConfPath:             confPath,
		CFWChild:             cfwChild,
		Fetcher:              fetchClient,
		GistToken:            gistToken,
		MaxConcurrentThreads: prefs.Advanced.MaxConcurrentThreads,
	})
	router.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", prefs.Server.Listen, prefs.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "address", addr, "cfw_child", cfwChild)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}
	log.Info("server exited gracefully")
	return nil
}
