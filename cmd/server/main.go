package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicops/box-scheduler/internal/cache"
	"github.com/clinicops/box-scheduler/internal/config"
	"github.com/clinicops/box-scheduler/internal/database"
	"github.com/clinicops/box-scheduler/internal/handlers"
	"github.com/clinicops/box-scheduler/internal/metrics"
	"github.com/clinicops/box-scheduler/internal/middleware"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/rbac"
	"github.com/clinicops/box-scheduler/internal/repository"
	"github.com/clinicops/box-scheduler/internal/services"
	"github.com/clinicops/box-scheduler/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Box Scheduler")

	// Connect to database
	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		LogLevel: cfg.Database.LogLevel,
	}

	if err := database.Connect(dbConfig); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	// Initialize the permission store backend
	var kv cache.Cache
	if cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		kv, err = cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Info().Msg("Redis permission store initialized")
	} else {
		kv = cache.NewMemoryCache()
		log.Info().Msg("Memory permission store initialized")
	}

	// Seed the role catalog and build the resolver
	rbacStore := rbac.NewStore(kv)
	if err := rbacStore.SeedCatalog(context.Background(), models.DefaultRoles); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed role catalog")
	}
	resolver := rbac.NewResolver(rbacStore)

	// Initialize repositories
	assignmentRepo := repository.NewAssignmentRepository(database.DB)
	appointmentRepo := repository.NewAppointmentRepository(database.DB)
	boxRepo := repository.NewBoxRepository(database.DB)
	doctorRepo := repository.NewDoctorRepository(database.DB)
	auditRepo := repository.NewAuditRepository(database.DB)

	// Initialize services
	assignmentService := services.NewAssignmentService(assignmentRepo, appointmentRepo, resolver, auditRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, assignmentRepo, resolver, auditRepo)
	boxService := services.NewBoxService(boxRepo, resolver, auditRepo)
	doctorService := services.NewDoctorService(doctorRepo, resolver, auditRepo)
	rbacService := services.NewRBACService(rbacStore, resolver, auditRepo)
	auditService := services.NewAuditService(auditRepo, resolver)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(kv)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	boxHandler := handlers.NewBoxHandler(boxService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	rbacHandler := handlers.NewRBACHandler(rbacService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints (no authentication required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
		r.Handle("/metrics", promhttp.Handler())
	}

	// Scheduling API (requires an identity token)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.JWTSecret))

		r.Route("/boxes", func(r chi.Router) {
			r.Post("/", boxHandler.Create)
			r.Get("/", boxHandler.List)
			r.Get("/{id}", boxHandler.Get)
			r.Put("/{id}", boxHandler.Update)
			r.Delete("/{id}", boxHandler.Delete)
		})

		r.Route("/doctors", func(r chi.Router) {
			r.Post("/", doctorHandler.Create)
			r.Get("/", doctorHandler.List)
			r.Get("/{id}", doctorHandler.Get)
			r.Put("/{id}", doctorHandler.Update)
			r.Delete("/{id}", doctorHandler.Delete)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", assignmentHandler.Create)
			r.Get("/", assignmentHandler.List)
			r.Get("/{id}", assignmentHandler.Get)
			r.Patch("/{id}", assignmentHandler.Update)
			r.Delete("/{id}", assignmentHandler.Delete)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", appointmentHandler.Create)
			r.Get("/", appointmentHandler.List)
			r.Get("/{id}", appointmentHandler.Get)
			r.Patch("/{id}", appointmentHandler.Update)
			r.Delete("/{id}", appointmentHandler.Delete)
		})

		r.Route("/rbac", func(r chi.Router) {
			r.Post("/bindings", rbacHandler.AssignRoles)
			r.Get("/bindings/{userID}", rbacHandler.GetBinding)
		})

		r.Get("/audit", auditHandler.List)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
