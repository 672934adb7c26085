// Package server assembles the HTTP surface: route groups, auth middleware,
// and the websocket endpoint.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workeye/backend/internal/broadcast"
	dashboardhandler "workeye/backend/internal/dashboard/handler"
	healthhandler "workeye/backend/internal/health/handler"
	"workeye/backend/internal/security"
	"workeye/backend/internal/server/middleware"
	trackerhandler "workeye/backend/internal/tracker/handler"
	confighandler "workeye/backend/internal/trackingconfig/handler"
)

// Deps are the wired components the router mounts.
type Deps struct {
	Log            *zap.Logger
	Tenants        middleware.TenantGetter
	TokenComparer  middleware.TokenComparer
	TokenValidator *security.TokenValidator
	RequestTimeout time.Duration

	Tracker   *trackerhandler.Handler
	Dashboard *dashboardhandler.Handler
	Config    *confighandler.Handler
	Health    *healthhandler.Handler
	WS        *broadcast.WSHandler
}

// NewRouter builds the gin engine with all routes mounted.
//
// Layout:
//
//	GET  /health                      liveness + db ping (no auth)
//	POST /api/tracker/punch-in        tracker token auth
//	POST /api/tracker/punch-out
//	POST /api/tracker/upload
//	POST /api/tracker/heartbeat
//	GET  /api/tracker/status
//	GET  /api/tracker/configuration
//	GET  /api/dashboard/team-status   dashboard JWT auth
//	GET  /api/dashboard/configuration
//	PUT  /api/dashboard/configuration
//	GET  /ws                          dashboard JWT auth (header or ?token=)
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))

	d.Health.Register(r)

	trackerAuth := middleware.TrackerAuth(d.Tenants, d.TokenComparer)
	dashboardAuth := middleware.DashboardAuth(d.TokenValidator)
	timeout := middleware.Timeout(d.RequestTimeout)

	tracker := r.Group("/api/tracker", trackerAuth, timeout)
	d.Tracker.Register(tracker)
	d.Config.RegisterRead(tracker)

	dashboard := r.Group("/api/dashboard", dashboardAuth, timeout)
	d.Dashboard.Register(dashboard)
	d.Config.RegisterRead(dashboard)
	d.Config.RegisterWrite(dashboard)

	// No timeout middleware here: the websocket is long-lived.
	r.GET("/ws", dashboardAuth, d.WS.ServeWS)

	return r
}
