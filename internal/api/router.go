package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/cyco/cyco-engine/internal/api/handler"
	"github.com/cyco/cyco-engine/internal/api/middleware"
	"github.com/cyco/cyco-engine/internal/core/ports"
	"github.com/cyco/cyco-engine/internal/infrastructure/http/handlers"
	"github.com/cyco/cyco-engine/internal/infrastructure/realtime"
)

const serviceName = "cyco-engine"

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Tokens   ports.TokenVerifier
	Users    ports.UserService
	Catalog  ports.CatalogService
	Forum    ports.ForumService
	Payments ports.PaymentService

	Hub   *realtime.Hub
	Queue realtime.Enqueuer

	HealthChecks map[string]handlers.Check

	Log zerolog.Logger
}

// Options tune the HTTP surface.
type Options struct {
	CORSOrigins  []string
	RateLimitRPS float64
	BodyLimit    string
	Tracing      bool
	Metrics      bool
	Docs         bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handler.HeaderIdempotencyKey,
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
	}))
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	if opts.Tracing {
		e.Use(otelecho.Middleware(serviceName))
	}
	if opts.Metrics {
		e.Use(echoprometheus.NewMiddleware("cyco"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}
	if opts.Docs {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	authenticate := middleware.Authenticate(deps.Tokens)
	requireAdmin := middleware.RequireAdmin(deps.Users)
	limited := middleware.RateLimit(opts.RateLimitRPS)

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	forumHandler := handler.NewForumHandler(deps.Forum)
	paymentHandler := handler.NewPaymentHandler(deps.Payments)

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, serviceName)
	})

	// --- Auth ---
	e.POST("/jwt", authHandler.IssueToken, limited)
	e.POST("/login", authHandler.Login, limited)

	// --- Catalog ---
	e.GET("/movies", catalogHandler.ListMovies)
	e.POST("/movies", catalogHandler.CreateMovie)
	e.GET("/series", catalogHandler.ListSeries, authenticate)

	// --- Users ---
	e.POST("/register", userHandler.Register, limited)
	e.GET("/users", userHandler.List)
	e.GET("/user/:email", userHandler.Get)
	e.GET("/users/admin/:email", userHandler.CheckAdmin, authenticate)
	e.PATCH("/users/admin/:id", userHandler.Promote, authenticate, requireAdmin)
	e.POST("/wishlist", userHandler.AddToWishlist)

	// --- Payments ---
	e.POST("/create-payment-intent", paymentHandler.CreateIntent, limited)
	e.POST("/payments", paymentHandler.RecordPayment)

	// --- Forum ---
	e.POST("/forumQueries", forumHandler.Create)
	e.GET("/forumQueries", forumHandler.List)
	e.POST("/forumQueries/:id", forumHandler.SetViews)

	// --- Notifications ---
	if deps.Hub != nil {
		notificationHandler := handler.NewNotificationHandler(deps.Hub, deps.Queue, opts.CORSOrigins, deps.Log)
		e.GET("/ws", notificationHandler.Connect)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
