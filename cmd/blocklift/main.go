package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/blocklift/blocklift/internal/config"
	"github.com/blocklift/blocklift/internal/database"
	"github.com/blocklift/blocklift/internal/handlers"
	"github.com/blocklift/blocklift/internal/middleware"
	"github.com/blocklift/blocklift/internal/models"
)

func main() {
	configPath := os.Getenv("BLOCKLIFT_CONFIG")
	if configPath == "" {
		configPath = "blocklift.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("database ready", "path", filepath.Clean(cfg.Database.Path))

	if err := bootstrapAdmin(db, logger); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(db)
	sessionManager.Lifetime = time.Duration(cfg.Session.LifetimeDays) * 24 * time.Hour
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Session.SecureCookies

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	router := handlers.NewRouter(db, sessionManager, loginLimiter, logger)

	logger.Info("blocklift listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// bootstrapAdmin creates the initial admin user from environment variables
// if no users exist in the database.
func bootstrapAdmin(db *sql.DB, logger *slog.Logger) error {
	count, err := models.CountUsers(db)
	if err != nil {
		return fmt.Errorf("check user count: %w", err)
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("BLOCKLIFT_ADMIN_USER")
	password := os.Getenv("BLOCKLIFT_ADMIN_PASS")
	email := os.Getenv("BLOCKLIFT_ADMIN_EMAIL")

	if username == "" || password == "" {
		return fmt.Errorf("no users exist and BLOCKLIFT_ADMIN_USER / BLOCKLIFT_ADMIN_PASS env vars are not set")
	}

	user, err := models.CreateUser(db, username, username, password, email, models.RoleAdmin, sql.NullInt64{})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info("bootstrapped admin user", "username", user.Username, "id", user.ID)
	return nil
}
