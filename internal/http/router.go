package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/MatviieshynO/auth-service/internal/cache"
	"github.com/MatviieshynO/auth-service/internal/config"
	"github.com/MatviieshynO/auth-service/internal/http/handlers"
	"github.com/MatviieshynO/auth-service/internal/http/middlewares"
	"github.com/MatviieshynO/auth-service/internal/observability"
	"github.com/MatviieshynO/auth-service/internal/repo/postgres"
	"github.com/MatviieshynO/auth-service/internal/token"
	"github.com/MatviieshynO/auth-service/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, cfg config.Config, pool *pgxpool.Pool, projections *cache.Users) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())

	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware("auth-service"))
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories and the lifecycle service

	usersRepo := postgres.NewUsersRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)
	issuer := token.NewIssuer(cfg.ConfirmEmailSecret)

	svc := users.NewService(usersRepo, users.BcryptHasher{}, issuer, jobsRepo, cfg.APIURL, log)

	usersHandler := handlers.NewUsersHandler(svc, projections)

	// throttle the user endpoints only; probes and metrics stay unthrottled
	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)

	u := r.Group("/users", limiter.Middleware(middlewares.KeyByIP))

	u.POST("", usersHandler.Create)
	u.GET("", usersHandler.GetAll)
	u.GET("/:id", usersHandler.FindOne)
	u.PUT("/:id", usersHandler.Update)
	u.DELETE("/:id", usersHandler.Delete)
	u.PATCH("/change-password/:id", usersHandler.ChangePassword)

	return r
}
