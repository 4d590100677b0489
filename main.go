// File: slotify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotify/config"
	"slotify/cron"
	"slotify/database"
	bookingRepo "slotify/database/repository/booking"
	catalogRepo "slotify/database/repository/catalog"
	rulesRepo "slotify/database/repository/rules"
	"slotify/handlers"
	"slotify/middleware"
	"slotify/routes"
	"slotify/services/availability"
	"slotify/services/reservation"
	"slotify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	catalog := catalogRepo.NewMongoCatalogRepo()
	rules := rulesRepo.NewCachedRuleRepo(
		rulesRepo.NewMongoRuleRepo(),
		utils.GetCacheClient(),
		config.RuleCacheTTL(),
	)
	bookings := bookingRepo.NewMongoBookingRepo()

	if err := catalog.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure catalog indexes: %v", err)
	}
	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// services.
	engine := &availability.DefaultEngine{
		Catalog:     catalog,
		Rules:       rules,
		Bookings:    bookings,
		Granularity: config.SlotGranularity(),
	}
	locks := reservation.NewRedisLockService(utils.GetLockClient(), config.SlotGranularity())
	controller := &reservation.DefaultController{
		Catalog:  catalog,
		Bookings: bookings,
		Engine:   engine,
		Locks:    locks,
		LockTTL:  config.LockTTL(),
	}

	availabilityHandler := handlers.NewAvailabilityHandler(engine, logger)
	bookingHandler := handlers.NewBookingHandler(controller, logger)

	routes.RegisterRoutes(router, availabilityHandler, bookingHandler)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetLockClient()},
		database.MongoClient,
	)
	cron.InitExpiryWorker(bookings)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
