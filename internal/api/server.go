// Package api serves the city over HTTP.
// GET endpoints are read-only views of the live simulation.
// POST endpoints are player input; they require a bearer token when
// AdminKey is set.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/metrics"
)

// Server serves the city state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Metrics  *metrics.Recorder // nil disables /metrics
	Limiter  *RateLimiter      // nil disables throttling
	WorldID  func() string     // nil omits world_id from status
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = open.

	// CORSOrigins lists allowed browser origins. Empty allows any origin.
	CORSOrigins []string

	// NewCity clears the save and returns a fresh state. Nil disables reset.
	NewCity func() (*engine.State, error)
}

// Register mounts every route on h.
func (s *Server) Register(h *server.Hertz) {
	h.Use(s.corsMiddleware())
	if s.Limiter != nil {
		h.Use(rateLimitMiddleware(s.Limiter))
	}

	v1 := h.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/grid", s.handleGrid)
	v1.GET("/history", s.handleHistory)
	v1.GET("/summary", s.handleSummary)
	v1.GET("/tutorial", s.handleTutorial)
	v1.GET("/events", s.handleEvents)
	v1.GET("/catalog", s.handleCatalog)
	v1.GET("/tile/:x/:y", s.handleTile)

	v1.POST("/build", s.adminOnly, s.handleBuild)
	v1.POST("/plant", s.adminOnly, s.handlePlant)
	v1.POST("/demolish", s.adminOnly, s.handleDemolish)
	v1.POST("/advance", s.adminOnly, s.handleAdvance)
	v1.POST("/speed", s.adminOnly, s.handleSpeed)
	v1.POST("/reset", s.adminOnly, s.handleReset)

	if s.Metrics != nil {
		h.GET("/metrics", adaptor.HertzHandler(promhttp.HandlerFor(s.Metrics.Registry(), promhttp.HandlerOpts{})))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Port)
	h := server.New(
		server.WithHostPorts(addr),
		server.WithExitWaitTime(2*time.Second),
	)
	s.Register(h)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "metrics", s.Metrics != nil)

	errCh := make(chan error, 1)
	go func() { errCh <- h.Run() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

const corsAllowMethods = "GET,POST,OPTIONS"
const corsAllowHeaders = "Content-Type,Authorization"

func (s *Server) applyCORSHeaders(ctx *app.RequestContext) {
	origin := string(ctx.GetHeader("Origin"))
	switch {
	case len(s.CORSOrigins) == 0:
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	case origin != "" && s.originAllowed(origin):
		ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
		ctx.Response.Header.Set("Vary", "Origin")
	default:
		return
	}
	ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	ctx.Response.Header.Set("Access-Control-Max-Age", "600")
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.CORSOrigins {
		if strings.EqualFold(strings.TrimSpace(o), origin) {
			return true
		}
	}
	return false
}

func (s *Server) corsMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		s.applyCORSHeaders(ctx)
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}

func (s *Server) checkBearerToken(ctx *app.RequestContext) bool {
	auth := string(ctx.GetHeader("Authorization"))
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires the bearer token when AdminKey is set.
func (s *Server) adminOnly(c context.Context, ctx *app.RequestContext) {
	if s.AdminKey != "" && !s.checkBearerToken(ctx) {
		writeErrorBody(ctx, consts.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
		ctx.Abort()
		return
	}
	ctx.Next(c)
}
