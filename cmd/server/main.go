package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hireloop/identity/modules/auth"
	"github.com/hireloop/identity/modules/rbac"
	"github.com/hireloop/identity/pkg/apiresponse"
	"github.com/hireloop/identity/pkg/config"
	"github.com/hireloop/identity/pkg/email"
	"github.com/hireloop/identity/pkg/httpserver"
	"github.com/hireloop/identity/pkg/jwt"
	"github.com/hireloop/identity/pkg/logger"
	"github.com/hireloop/identity/pkg/pg"
	"github.com/hireloop/identity/pkg/ratelimiter"
	"github.com/hireloop/identity/pkg/redis"
	"github.com/hireloop/identity/pkg/totp"
	"github.com/hireloop/identity/store/postgres"
)

type appConfig struct {
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"json"`

	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
	JWT   jwt.Config
	OTP   totp.Config
	Email email.Config
	Auth  auth.Config
	OAuth auth.OAuthConfig

	RateLimitCapacity int           `env:"RATE_LIMIT_CAPACITY" envDefault:"5"`
	RateLimitRefill   int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"5"`
	RateLimitInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"15m"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithAttr(slog.String("service", "identity")),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	stores := postgres.NewStores(pool)

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return fmt.Errorf("initializing token service: %w", err)
	}

	otp, err := totp.NewGenerator(cfg.OTP)
	if err != nil {
		return fmt.Errorf("initializing otp generator: %w", err)
	}

	mailer, err := newMailer(cfg.Email, log)
	if err != nil {
		return fmt.Errorf("initializing mailer: %w", err)
	}

	limiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initializing rate limiter: %w", err)
	}

	oauthEngine := auth.NewOAuthEngineFromConfig(cfg.OAuth, &http.Client{Timeout: 15 * time.Second})

	authSvc := auth.NewService(
		cfg.Auth,
		stores.Users,
		stores.Organisations,
		stores.Roles,
		tokens,
		otp,
		mailer,
		oauthEngine,
		limiter,
		log,
	)

	rbacSvc := rbac.NewService(stores.Roles, stores.Permissions, nil, log)
	guard := auth.NewGuard(rbacSvc, cfg.Auth.OrganisationRole, log)
	rbacSvc.SetCacheInvalidator(guard)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", healthHandler(pg.Healthcheck(pool)))
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokens, log))
		r.Route("/api/v1", func(r chi.Router) {
			r.Mount("/roles", rbac.RolesRouter(rbacSvc, guard.RequirePermission("rbac:manage")))
			r.Mount("/permissions", rbac.PermissionsRouter(rbacSvc, guard.RequirePermission("rbac:manage")))
			r.Mount("/", auth.Router(authSvc))
		})
	})

	server := httpserver.New(cfg.HTTP, log)
	log.InfoContext(ctx, "starting server", slog.String("addr", cfg.HTTP.Addr))
	return server.Run(ctx, router)
}

// newMailer uses Postmark when tokens are configured and falls back to the
// logging sender in development.
func newMailer(cfg email.Config, log *slog.Logger) (email.Sender, error) {
	if cfg.PostmarkServerToken == "" || cfg.PostmarkAccountToken == "" {
		log.Warn("postmark tokens missing, outbound mail is logged only")
		return email.NewLogSender(log), nil
	}
	return email.NewPostmarkSender(cfg)
}

// newLimiter backs the login/OTP throttle with Redis when reachable, and an
// in-process store otherwise.
func newLimiter(ctx context.Context, cfg appConfig, log *slog.Logger) (*ratelimiter.Bucket, error) {
	limitCfg := ratelimiter.Config{
		Capacity:       cfg.RateLimitCapacity,
		RefillRate:     cfg.RateLimitRefill,
		RefillInterval: cfg.RateLimitInterval,
	}

	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory rate limiting", logger.Error(err))
		return ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), limitCfg)
	}
	return ratelimiter.NewBucket(ratelimiter.NewRedisStore(client, "ratelimit"), limitCfg)
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			apiresponse.Error(w, http.StatusServiceUnavailable, "unhealthy", nil)
			return
		}
		apiresponse.OK(w, "ok", nil)
	}
}
