package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpadp "stokvel-backend/internal/adapter/http"
	idemp "stokvel-backend/internal/adapter/middleware"
	"stokvel-backend/internal/adapter/repository/mysql"
	"stokvel-backend/internal/config"
	"stokvel-backend/internal/infrastructure/cache"
	"stokvel-backend/internal/infrastructure/db"
	"stokvel-backend/internal/infrastructure/metrics"
	"stokvel-backend/internal/infrastructure/notify"
	"stokvel-backend/internal/infrastructure/payout"
	"stokvel-backend/internal/usecase/admission"
	"stokvel-backend/internal/usecase/autofund"
	"stokvel-backend/internal/usecase/defaults"
	"stokvel-backend/internal/usecase/identity"
	"stokvel-backend/internal/usecase/ledger"
	"stokvel-backend/internal/usecase/lending"
	"stokvel-backend/internal/usecase/repayment"
	"stokvel-backend/internal/usecase/savings"
	"stokvel-backend/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.Setup(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("exit", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.SQLitePath
	if cfg.DBDriver == config.DriverMySQL {
		dsn = cfg.MySQLDSN()
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, dsn)
	if err != nil {
		return err
	}
	if err := mysql.Migrate(gdb); err != nil {
		return err
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs := metrics.New(reg)

	store := mysql.NewGormUoW(gdb)
	if club, err := store.Read().Accounts.GetClub(ctx); err == nil {
		obs.SetActiveMembers(club.TotalMembers)
	}

	runner := ledger.NewRunner(store, payout.NewLogGateway(log),
		ledger.WithPublisher(notify.NewRedisPublisher(rdb, notify.DefaultChannel)),
		ledger.WithObserver(obs),
		ledger.WithLogger(log),
	)
	lend := lending.NewUsecase(runner)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator(cfg.AmountDecimals)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(idemp.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL()))

	httpadp.Register(e, httpadp.Deps{
		Admission:         admission.NewUsecase(runner),
		Savings:           savings.NewUsecase(runner),
		Lending:           lend,
		Repayment:         repayment.NewUsecase(runner),
		Defaults:          defaults.NewUsecase(runner),
		AutoFund:          autofund.NewUsecase(runner, lend),
		Identity:          identity.NewUsecase(store),
		Events:            runner,
		Presenter:         httpadp.NewPresenter(cfg.AmountDecimals),
		AutoFundOnRequest: cfg.AutoFundOnRequest,
		Metrics:           metrics.Handler(reg),
		HealthChecks: map[string]httpadp.HealthCheck{
			"db": func(ctx context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	addr := ":" + cfg.AppPort
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "db", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
