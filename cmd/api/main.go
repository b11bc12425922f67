package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/feed"
	"marketplace/internal/handler"
	"marketplace/internal/middleware"
	"marketplace/internal/notify"
	"marketplace/internal/repository"
	"marketplace/internal/router"
	"marketplace/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting marketplace API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	contactRepo := repository.NewContactRepository(pool, logger)
	shopRepo := repository.NewShopRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize feed loader with S3 and local fallback
	fileLoader := feed.NewFileLoader(logger)
	var feedLoader feed.Loader

	if cfg.S3.Enabled {
		s3Loader, err := feed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			feedLoader = fileLoader
		} else {
			feedLoader = s3Loader
		}
	} else {
		feedLoader = fileLoader
		logger.Info().Msg("using local file system for feed files (S3 disabled)")
	}

	// Initialize the order-confirmation dispatcher
	var dispatcher notify.Dispatcher
	if cfg.Kafka.Enabled() {
		dispatcher = notify.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	} else {
		dispatcher = notify.NewLogDispatcher(logger)
		logger.Info().Msg("kafka brokers not configured, order confirmations are log-only")
	}
	defer dispatcher.Close()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, contactRepo, shopRepo, dispatcher, logger)
	contactService := service.NewContactService(contactRepo, logger)

	importer := feed.NewImporter(shopRepo, productRepo, logger)
	exporter := feed.NewExporter(shopRepo, productRepo, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	shopOrderHandler := handler.NewShopOrderHandler(orderService, logger)
	contactHandler := handler.NewContactHandler(contactService, logger)
	shopHandler := handler.NewShopHandler(importer, exporter, feedLoader, shopRepo, logger)

	// Initialize router
	metrics := middleware.NewMetrics()
	mux := router.New(
		productHandler,
		cartHandler,
		orderHandler,
		shopOrderHandler,
		contactHandler,
		shopHandler,
		userRepo,
		metrics,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
