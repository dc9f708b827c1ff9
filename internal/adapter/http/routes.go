package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lead-origination/internal/adapter/middleware"
	"lead-origination/internal/metrics"
	authuc "lead-origination/internal/usecase/auth"
	leaduc "lead-origination/internal/usecase/lead"
	"lead-origination/internal/usecase/wizard"
)

// Deps are the collaborators behind the routes. Redis is optional; without it
// create endpoints run without idempotency.
type Deps struct {
	Leads    *leaduc.Usecase
	Wizard   *wizard.Sequencer
	Auth     *authuc.Usecase
	Tokens   *middleware.TokenManager
	Redis    *redis.Client
	IdempTTL time.Duration
	Probes   map[string]Probe
	Log      *zap.Logger
}

func Register(e *echo.Echo, d Deps) {
	h := NewHandler(d.Probes)
	ah := NewAuthHandler(d.Auth, d.Tokens)
	lh := NewLeadHandler(d.Leads, d.Wizard)
	sh := NewStepHandler(d.Wizard)
	mh := NewMobileHandler(d.Wizard)
	dh := NewDocumentHandler(d.Wizard)
	ph := NewPaymentHandler(d.Leads)

	e.GET("/health", h.Health)
	e.GET("/metrics", metrics.Handler())

	e.POST("/auth/login", ah.Login)
	e.POST("/auth/verify-otp", ah.VerifyOTP)

	guard := middleware.RequireSession(d.Tokens, d.Auth)
	create := []echo.MiddlewareFunc{}
	if d.Redis != nil {
		create = append(create, middleware.IdempotencyMiddleware(d.Redis, d.IdempTTL, d.Log))
	}

	a := e.Group("/auth", guard)
	a.POST("/logout", ah.Logout)
	a.GET("/me", ah.Me)

	g := e.Group("/leads", guard)
	g.GET("", lh.List)
	g.POST("", lh.Create, create...)
	g.GET("/export.csv", lh.Export)
	g.GET("/stats", lh.Stats)
	g.GET("/:id", lh.Get)
	g.PATCH("/:id", lh.Patch)
	g.POST("/:id/submit", lh.Submit)
	g.POST("/:id/status", lh.UpdateStatus)
	g.POST("/:id/resume", lh.Resume)

	g.GET("/:id/steps/:step", sh.Enter)
	g.POST("/:id/steps/:step/validate", sh.Validate)
	g.POST("/:id/steps/:step/next", sh.Next)
	g.POST("/:id/steps/:step/exit", sh.Exit)
	g.POST("/:id/steps/:step/previous", sh.Previous)

	g.GET("/:id/mobile/otp", mh.State)
	g.POST("/:id/mobile/otp/send", mh.Send)
	g.POST("/:id/mobile/otp/verify", mh.Verify)
	g.DELETE("/:id/mobile/otp", mh.Reset)

	g.GET("/:id/steps/:step/documents", dh.List)
	g.POST("/:id/steps/:step/documents", dh.Add)
	g.POST("/:id/steps/:step/documents/capture", dh.Capture)
	g.POST("/:id/steps/:step/documents/:docId/retry", dh.Retry)
	g.DELETE("/:id/steps/:step/documents/:docId", dh.Delete)

	g.POST("/:id/payments", ph.Create, create...)
	g.POST("/:id/payments/:paymentId/send", ph.Send)
	g.POST("/:id/payments/:paymentId/status", ph.Result)
}
