package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vigilant-backend/internal/config"
	"vigilant-backend/internal/handlers"
	"vigilant-backend/internal/middleware"
	"vigilant-backend/internal/repository"
	"vigilant-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Ensure schema
	if err := repository.CreateTables(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database schema")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	// Initialize services
	mailer, err := services.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create mailer")
	}

	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	helperService := services.NewHelperService(userRepo, mailer)
	trackHub := services.NewTrackHub()
	incidentService := services.NewIncidentService(incidentRepo, userRepo, mailer, trackHub, cfg.App.FrontendURL)
	resourceService := services.NewResourceService(resourceRepo)
	avatarService, err := services.NewAvatarService(
		userRepo,
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create avatar service")
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, helperService, avatarService)
	incidentHandler := handlers.NewIncidentHandler(incidentService)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	wsHandler := handlers.NewWebSocketHandler(trackHub, incidentService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users/register", userHandler.Register)
		r.Post("/users/login", userHandler.Login)
		r.Get("/incidents/track/{incident_id}", incidentHandler.TrackLocation)
		r.Get("/resources", resourceHandler.List)
		r.Get("/resources/{resource_id}", resourceHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/users/profile", userHandler.GetProfile)
			r.Put("/users/profile", userHandler.UpdateProfile)
			r.Post("/users/profile/avatar", userHandler.UploadAvatar)
			r.Get("/users/emergency-contacts", userHandler.GetEmergencyContacts)
			r.Put("/users/emergency-contacts", userHandler.UpdateEmergencyContacts)
			r.Get("/users/nearest", userHandler.Nearest)
			r.Post("/users/notify", userHandler.Notify)
			r.Get("/users/notifications", userHandler.Notifications)

			r.Post("/incidents/report", incidentHandler.Report)
			r.Post("/incidents/sos", incidentHandler.SOS)
			r.Post("/incidents/{incident_id}/location", incidentHandler.UpdateLocation)
			r.Get("/incidents/mine", incidentHandler.MyIncidents)
			r.Delete("/incidents/{incident_id}", incidentHandler.Delete)

			r.Post("/resources", resourceHandler.Create)
			r.Put("/resources/{resource_id}", resourceHandler.Update)
			r.Delete("/resources/{resource_id}", resourceHandler.Delete)
		})
	})

	// WebSocket route
	r.Get("/ws/track", wsHandler.HandleTrack)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server; open tracking sockets close with it
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
