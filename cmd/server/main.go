package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/coop-transport-seating/internal/config"
	"github.com/iliyamo/coop-transport-seating/internal/database"
	"github.com/iliyamo/coop-transport-seating/internal/handler"
	"github.com/iliyamo/coop-transport-seating/internal/middleware"
	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/obs"
	"github.com/iliyamo/coop-transport-seating/internal/projection"
	"github.com/iliyamo/coop-transport-seating/internal/queue"
	"github.com/iliyamo/coop-transport-seating/internal/repository"
	"github.com/iliyamo/coop-transport-seating/internal/router"
	"github.com/iliyamo/coop-transport-seating/internal/seating"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName: "coop-transport-seating",
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	checks := map[string]handler.Check{}

	var db *sql.DB
	if cfg.Storage == "mysql" {
		db, err = database.Open(ctx, cfg.DB, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.DB.Migrate {
			for _, tier := range model.Tiers {
				if err := database.Migrate(ctx, db, tier); err != nil {
					return err
				}
			}
		}
		checks["mysql"] = db.PingContext
	}

	// Redis backs the waiting queue when selected, and the history cache
	// and rate limiter whenever it is reachable.
	rdb := config.NewRedisClient(cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else if cfg.QueueBackend == "redis" {
		return errors.New("QUEUE_BACKEND=redis but redis is unreachable")
	}

	opts := []seating.Option{seating.WithLogger(log)}
	if cfg.Events.URL != "" {
		pub := queue.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, log)
		defer pub.Close()
		opts = append(opts, seating.WithPublisher(pub))

		audit := queue.NewAuditConsumer(cfg.Events.URL, cfg.Events.Exchange, cfg.Events.AuditQueue, cfg.Events.AuditLogPath, log)
		go func() { _ = audit.Run(ctx) }()
	}

	engines := make([]*seating.Engine, 0, len(model.Tiers))
	for _, tier := range model.Tiers {
		engines = append(engines, seating.NewEngine(newSeatStore(cfg, db, tier), newWaitingQueue(cfg, rdb, tier), opts...))
	}
	tiers := seating.NewTiers(engines...)
	proj := projection.New(engines[0], engines[1])

	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)
	h := handler.NewSeatingHandler(tiers, proj, cache, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Operator(cfg.OperatorJWTSecret))
	router.RegisterRoutes(e, handler.Health(checks))
	router.RegisterSeating(e, h, router.Guards{
		RateLimit: middleware.RateLimit(cfg.RateLimit, rdb, log),
		Cache:     cache.Middleware(),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "storage": cfg.Storage, "queue": cfg.QueueBackend}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newSeatStore(cfg config.Config, db *sql.DB, tier model.Tier) seating.SeatStore {
	if cfg.Storage == "mysql" {
		return repository.NewMySQLSeatStore(db, tier)
	}
	return repository.NewMemorySeatStore(tier)
}

func newWaitingQueue(cfg config.Config, rdb *redis.Client, tier model.Tier) seating.WaitingQueue {
	if cfg.QueueBackend == "redis" {
		return repository.NewRedisQueue(rdb, tier)
	}
	return repository.NewMemoryQueue(tier)
}
