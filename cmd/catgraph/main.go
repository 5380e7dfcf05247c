package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/catgraph/internal/config"
	"github.com/totegamma/catgraph/internal/infra/gateway"
	"github.com/totegamma/catgraph/internal/infra/providers"
	"github.com/totegamma/catgraph/internal/present/graphql"
	"github.com/totegamma/catgraph/internal/present/rest"
	restmw "github.com/totegamma/catgraph/internal/present/rest/middleware"
	"github.com/totegamma/catgraph/internal/service"
	"github.com/totegamma/catgraph/internal/telemetry"
	"github.com/totegamma/catgraph/internal/usecase"
)

const serviceName = "catgraph"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the yaml config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store := config.NewStore(*configPath, conf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTrace, err := telemetry.Setup(ctx, serviceName, conf.Server)
	if err != nil {
		slog.Error("failed to setup tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		_ = shutdownTrace(context.Background())
	}()

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := providers.NewRedis(conf.Server)
	if rdb != nil {
		defer rdb.Close()
	}
	mc := providers.NewMemcache(conf.Server)

	signalService := service.NewSignalService(rdb)
	authService := service.NewAuthService(store)

	catRepo := providers.NewCatRepository(db)
	identity := gateway.NewIdentityGateway(providers.NewClient(conf.Identity))

	catUsecase := usecase.NewCatUsecase(catRepo, signalService)
	userUsecase := usecase.NewUserUsecase(identity, store)

	schema, err := graphql.NewSchema(graphql.NewResolver(catUsecase, userUsecase), conf.Server.MaxParallelism)
	if err != nil {
		slog.Error("failed to parse schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	limiter := providers.NewLimiter(conf.RateLimit, rdb, mc)
	rateLimit := restmw.NewRateLimitMiddleware(limiter, func() int {
		rl := store.Get().RateLimit
		if !rl.Enabled {
			return 0
		}
		return rl.Limit
	})
	auth := restmw.NewAuthMiddleware(authService)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(otelecho.Middleware(serviceName))

	handler := rest.NewHandler(schema, signalService)
	handler.RegisterRoutes(e, auth.IdentifyIdentity, rateLimit.Limit)

	go watchReload(ctx, store)

	go func() {
		err := e.Start(conf.Server.ListenAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown", slog.String("error", err.Error()))
	}
}

// watchReload re-reads the config on SIGHUP. Only the identity service address,
// the jwt secret and the rate limit budget take effect without a restart.
func watchReload(ctx context.Context, store *config.Store) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			err := store.Reload()
			if err != nil {
				slog.Error("config reload failed", slog.String("error", err.Error()))
				continue
			}
			slog.Info("config reloaded")
		}
	}
}
