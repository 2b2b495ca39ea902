package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"printd/internal/config"
	"printd/internal/database"
	"printd/internal/handler"
	"printd/internal/mw"
	"printd/internal/service"
	"printd/internal/worker"
)

const version = "1.0.0"

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(context.Background(), db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	// Services
	orders := service.NewOrderStore(db)
	platform := service.NewPlatformClient(cfg.PlatformAddress)
	places := service.NewPlaceCache()

	// Workers
	propagator := worker.NewPropagationWorker(orders, platform)
	scheduler := worker.NewScheduler(orders, propagator, places, platform)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/", handler.IndexHandler(version))
	r.Get("/health", handler.HealthHandler)
	r.Get("/login", handler.LoginHandler(platform, cfg.JWTSecret))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/order1", handler.OrderTemplateAHandler(orders, propagator))
		r.Post("/order2", handler.OrderTemplateBHandler(orders, propagator))
		r.Get("/order", handler.GetOrderHandler(orders))
		r.Get("/local/orders", handler.ListOrdersHandler(orders))
		r.Get("/local/places", handler.PlacesHandler(places))

		r.Get("/sync1", handler.SyncJobHandler("catchup", scheduler.RunCatchup))
		r.Get("/sync2", handler.SyncJobHandler("reconciliation", scheduler.RunReconciliation))
		r.Get("/sync3", handler.SyncJobHandler("refresh", scheduler.RunRefresh))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	propagator.Start(ctx)
	go scheduler.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "version", version)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop workers and scheduler
	propagator.Wait()

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
