package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otcheredev/clinic-management/internal/cache"
	"github.com/otcheredev/clinic-management/internal/config"
	"github.com/otcheredev/clinic-management/internal/database"
	"github.com/otcheredev/clinic-management/internal/handlers"
	"github.com/otcheredev/clinic-management/internal/metrics"
	"github.com/otcheredev/clinic-management/internal/middleware"
	"github.com/otcheredev/clinic-management/internal/repository"
	"github.com/otcheredev/clinic-management/internal/services"
	"github.com/otcheredev/clinic-management/pkg/logger"
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
	log.Info().Msg("Starting Clinic Management Service")

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

	// Initialize cache
	var cacheImpl cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Type == "redis" {
			addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			cacheImpl, err = cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to connect to Redis")
			}
			log.Info().Msg("Redis cache initialized")
		} else {
			cacheImpl = cache.NewMemoryCache()
			log.Info().Msg("Memory cache initialized")
		}
	} else {
		cacheImpl = cache.NewMemoryCache()
		log.Info().Msg("Cache disabled, using memory cache as fallback")
	}

	// Initialize repositories
	clinicRepo := repository.NewClinicRepository()
	branchRepo := repository.NewBranchRepository()
	userRepo := repository.NewUserRepository()
	patientRepo := repository.NewPatientRepository()
	invRepo := repository.NewInvestigationRepository()
	auditRepo := repository.NewAuditRepository()

	// Initialize services
	authService := services.NewAuthService(userRepo, cacheImpl, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	clinicService := services.NewClinicService(clinicRepo, auditRepo)
	branchService := services.NewBranchService(branchRepo, clinicRepo, auditRepo)
	userService := services.NewUserService(userRepo, branchRepo, clinicRepo, cacheImpl, auditRepo)
	patientService := services.NewPatientService(patientRepo, invRepo, auditRepo)
	auditService := services.NewAuditService(auditRepo)
	statsService := services.NewStatsService(clinicRepo, branchRepo, userRepo, patientRepo, invRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService)
	clinicHandler := handlers.NewClinicHandler(clinicService)
	branchHandler := handlers.NewBranchHandler(branchService)
	userHandler := handlers.NewUserHandler(userService)
	patientHandler := handlers.NewPatientHandler(patientService)
	auditHandler := handlers.NewAuditHandler(auditService)
	dashboardHandler := handlers.NewDashboardHandler(statsService)

	auth := middleware.NewAuth(authService)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
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
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Get("/users/me", authHandler.Me)
			r.Post("/users/change-password", authHandler.ChangePassword)

			r.Get("/clinics", clinicHandler.ListClinics)
			r.Post("/clinics", clinicHandler.CreateClinic)
			r.Get("/clinics/{id}", clinicHandler.GetClinic)
			r.Put("/clinics/{id}", clinicHandler.UpdateClinic)
			r.Delete("/clinics/{id}", clinicHandler.DeleteClinic)

			r.Get("/branches", branchHandler.ListBranches)
			r.Post("/branches", branchHandler.CreateBranch)
			r.Get("/branches/{id}", branchHandler.GetBranch)
			r.Put("/branches/{id}", branchHandler.UpdateBranch)
			r.Delete("/branches/{id}", branchHandler.DeleteBranch)

			r.Get("/users", userHandler.ListUsers)
			r.Post("/users", userHandler.CreateUser)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Put("/users/{id}", userHandler.UpdateUser)
			r.Delete("/users/{id}", userHandler.DeleteUser)

			r.Get("/patients", patientHandler.ListPatients)
			r.Post("/patients", patientHandler.CreatePatient)
			r.Get("/patients/{id}", patientHandler.GetPatient)
			r.Put("/patients/{id}", patientHandler.UpdatePatient)
			r.Delete("/patients/{id}", patientHandler.DeletePatient)

			r.Get("/patients/{patientID}/investigations", patientHandler.ListInvestigations)
			r.Post("/patients/{patientID}/investigations", patientHandler.CreateInvestigation)
			r.Get("/investigations/{id}", patientHandler.GetInvestigation)
			r.Put("/investigations/{id}", patientHandler.UpdateInvestigation)
			r.Delete("/investigations/{id}", patientHandler.DeleteInvestigation)

			r.Get("/dashboard/stats", dashboardHandler.GetStats)

			r.Get("/audit-logs", auditHandler.ListAuditLogs)
		})
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
