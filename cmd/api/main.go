// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/oluseyi-dev/inspira-backend/internal/comments"
	"github.com/oluseyi-dev/inspira-backend/internal/common/database"
	"github.com/oluseyi-dev/inspira-backend/internal/config"
	"github.com/oluseyi-dev/inspira-backend/internal/identity"
	"github.com/oluseyi-dev/inspira-backend/internal/inspirations"
	"github.com/oluseyi-dev/inspira-backend/internal/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := runMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	authMW := identity.NewMiddleware(cfg.JWTSecret)

	uploads := inspirations.NewUploadService(inspirations.UploadConfig{
		UseS3:          cfg.UseS3,
		S3Bucket:       cfg.S3Bucket,
		AWSRegion:      cfg.AWSRegion,
		LocalUploadDir: cfg.LocalUploadDir,
		BaseURL:        cfg.BaseURL,
		MaxSize:        cfg.MaxImageSize,
	})

	inspirationRepo := inspirations.NewPostgresRepository(db)
	inspirationService := inspirations.NewService(inspirationRepo, uploads, cfg.MaxImagesPerPost)
	inspirationHandler := inspirations.NewHandler(inspirationService)

	commentRepo := comments.NewPostgresRepository(db)
	commentService := comments.NewService(commentRepo, cfg.CommentEditWindow)
	commentHandler := comments.NewHandler(commentService)

	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	inspirations.RegisterRoutes(router, inspirationHandler, authMW)
	comments.RegisterRoutes(router, commentHandler, authMW)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (%s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

func runMigrations(db *sqlx.DB) error {
	statements := []string{
		// Profiles are owned by the account system; this table only carries
		// the columns the feed joins against.
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			avatar VARCHAR(500) DEFAULT '',
			bio TEXT DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// original_id deliberately has no foreign key: a derived share keeps
		// its snapshot and a dangling reference after the root is deleted.
		`CREATE TABLE IF NOT EXISTS inspirations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			images JSONB NOT NULL DEFAULT '[]',
			tags JSONB NOT NULL DEFAULT '[]',
			location VARCHAR(200),
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			likes_count INT NOT NULL DEFAULT 0,
			comments_count INT NOT NULL DEFAULT 0,
			shares_count INT NOT NULL DEFAULT 0,
			kind VARCHAR(20) NOT NULL DEFAULT 'original',
			original_id BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS inspiration_likes (
			inspiration_id BIGINT NOT NULL REFERENCES inspirations(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (inspiration_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS inspiration_comments (
			id BIGSERIAL PRIMARY KEY,
			inspiration_id BIGINT NOT NULL REFERENCES inspirations(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			parent_id BIGINT REFERENCES inspiration_comments(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			likes_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS inspiration_comment_likes (
			comment_id BIGINT NOT NULL REFERENCES inspiration_comments(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (comment_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS inspiration_shares (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			inspiration_id BIGINT NOT NULL REFERENCES inspirations(id) ON DELETE CASCADE,
			original_id BIGINT NOT NULL REFERENCES inspirations(id) ON DELETE CASCADE,
			quote VARCHAR(500),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_inspirations_user_created ON inspirations(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_inspirations_created ON inspirations(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_inspirations_tags ON inspirations USING GIN (tags)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_inspiration ON inspiration_comments(inspiration_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_parent ON inspiration_comments(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shares_original ON inspiration_shares(original_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	log.Println("Database migrations completed")
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.RequestURI, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
