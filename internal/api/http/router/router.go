package router

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/bajehapp/bajeh_backend/config"
	"github.com/bajehapp/bajeh_backend/internal/api/http/handler"
	"github.com/bajehapp/bajeh_backend/internal/api/http/middleware"
	"github.com/bajehapp/bajeh_backend/internal/fanout"
	"github.com/bajehapp/bajeh_backend/internal/identity"
	"github.com/bajehapp/bajeh_backend/internal/service/board"
	"github.com/bajehapp/bajeh_backend/internal/service/dispatch"
	"github.com/bajehapp/bajeh_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg         *config.Config
	DB          *sql.DB `optional:"true"`
	Auth        authorize.IAuthorization
	Directory   identity.Directory
	Hub         *fanout.Hub
	DispatchSvc dispatch.Service
	BoardSvc    board.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	callerRequired := middleware.CallerRequired(r.p.Directory, r.p.Auth)

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	dispatchH := handler.NewDispatchHandler(r.p.DispatchSvc)
	boardH := handler.NewBoardHandler(r.p.BoardSvc)
	eventsH := handler.NewEventsHandler(r.p.Hub)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerTicketRoutes(api, dispatchH, callerRequired, requirePerm)
	r.registerBoardRoutes(api, boardH, callerRequired, requirePerm)
	r.registerEventRoutes(api, eventsH, callerRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.ready(c.Context()) },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

// ready reports whether the backing stores answer. The ticket store is the
// only hard dependency; the board tolerates a redis blip.
func (r *Router) ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if r.p.DB != nil {
		if err := r.p.DB.PingContext(ctx); err != nil {
			return false
		}
	}
	return true
}
