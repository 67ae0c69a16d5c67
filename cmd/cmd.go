package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"photo-gallery-backend/internal/config"
	"photo-gallery-backend/internal/handlers"
	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/repository"
	"photo-gallery-backend/internal/services"
	"photo-gallery-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
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

	// Apply schema migrations
	if err := runMigrations(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

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

	// Initialize blob store
	blobs, diskStore, err := newBlobStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	photoRepo := repository.NewPhotoRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresHours)*time.Hour)
	groupService := services.NewGroupService(groupRepo, userRepo)
	photoService := services.NewPhotoService(photoRepo, groupService, blobs)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, groupService)
	groupHandler := handlers.NewGroupHandler(groupService)
	photoHandler := handlers.NewPhotoHandler(photoService, cfg.Upload.MaxFileSizeMB*1024*1024)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(authService))
				r.Get("/search", authHandler.SearchUsers)
				r.Get("/{userId}/invitations", authHandler.GetInvitations)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))
			r.Get("/", groupHandler.ListGroups)
			r.Post("/", groupHandler.CreateGroup)
			r.Get("/{groupId}", groupHandler.GetGroup)
			r.Post("/{groupId}/invite", groupHandler.InviteMember)
			r.Post("/{groupId}/accept-invite", groupHandler.AcceptInvite)
			r.Post("/{groupId}/reject-invite", groupHandler.RejectInvite)
			r.Post("/{groupId}/leave", groupHandler.LeaveGroup)
			r.Post("/{groupId}/remove", groupHandler.RemoveMember)
		})

		r.Route("/photos", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))
			r.Get("/", photoHandler.ListPhotos)
			r.Post("/", photoHandler.UploadPhotos)
			r.Post("/check-duplicates", photoHandler.CheckDuplicates)
			r.Put("/{photoId}", photoHandler.UpdatePhoto)
			r.Delete("/{photoId}", photoHandler.DeletePhoto)
		})
	})

	// Static serving of disk-backed photo blobs
	if diskStore != nil {
		fileServer := http.StripPrefix(cfg.Storage.Disk.PublicBaseURL+"/", http.FileServer(http.Dir(diskStore.Root())))
		r.Get(cfg.Storage.Disk.PublicBaseURL+"/*", fileServer.ServeHTTP)
	}

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
			Str("storage", cfg.Storage.Backend).
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

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newBlobStore builds the configured blob store backend. The second return
// is non-nil only for the disk backend and enables static file serving.
func newBlobStore(cfg *config.Config) (storage.BlobStore, *storage.DiskStore, error) {
	switch cfg.Storage.Backend {
	case "disk":
		store, err := storage.NewDiskStore(cfg.Storage.Disk.Root)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "s3":
		store, err := storage.NewS3Store(context.Background(), storage.S3Options{
			Region:    cfg.Storage.S3.Region,
			Bucket:    cfg.Storage.S3.Bucket,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Endpoint:  cfg.Storage.S3.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// runMigrations applies pending schema migrations at startup. The pgx/v5
// migrate driver registers the pgx5:// scheme, so the postgres:// URL is
// rewritten before use.
func runMigrations(cfg *config.Config) error {
	databaseURL := strings.Replace(cfg.Database.URL(), "postgres://", "pgx5://", 1)
	m, err := migrate.New("file://"+cfg.Migrations.Path, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database schema up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("Database migrations applied")
	return nil
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
