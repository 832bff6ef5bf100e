package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gamezone-floor/internal/config"
	"github.com/iliyamo/gamezone-floor/internal/database"
	"github.com/iliyamo/gamezone-floor/internal/handler"
	"github.com/iliyamo/gamezone-floor/internal/ledger"
	"github.com/iliyamo/gamezone-floor/internal/middleware"
	"github.com/iliyamo/gamezone-floor/internal/observability"
	"github.com/iliyamo/gamezone-floor/internal/queue"
	"github.com/iliyamo/gamezone-floor/internal/repository"
	"github.com/iliyamo/gamezone-floor/internal/router"
	"github.com/iliyamo/gamezone-floor/internal/scheduler"
	queue_publisher "github.com/iliyamo/gamezone-floor/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	limits := config.LoadDeviceLimits()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	observability.Init()

	// Redis powers the response cache and the shared rate limiter.  A
	// nil client disables both and the service keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	// ---- Repositories ----
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sessions := repository.NewSessionRepo(db)
	bookings := repository.NewBookingRepo(db)
	battles := repository.NewBattleRepo(db)
	subscriptions := repository.NewSubscriptionRepo(db)
	salaries := repository.NewSalaryRepo(db)

	// ---- Core services ----
	floorLedger := ledger.NewService(sessions, queue_publisher.NewFloorNotifier(), limits)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	converter := scheduler.NewConverter(bookings, floorLedger, cfg.BookingInterval)
	go converter.Start(ctx)

	go func() {
		if err := queue.StartFloorConsumer(); err != nil {
			log.Printf("floor consumer stopped: %v", err)
		}
	}()

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	sessionHandler := handler.NewSessionHandler(floorLedger)
	bookingHandler := handler.NewBookingHandler(bookings)
	battleHandler := handler.NewBattleHandler(battles)
	managementHandler := handler.NewManagementHandler(subscriptions, salaries)
	analyticsHandler := handler.NewAnalyticsHandler(sessions)
	exportHandler := handler.NewExportHandler(floorLedger)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterFloor(e, sessionHandler, bookingHandler, battleHandler, cfg.JWTSecret, cache)
	router.RegisterOwner(e, managementHandler, analyticsHandler, exportHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
