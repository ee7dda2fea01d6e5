package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"crowdlog/internal/config"
	"crowdlog/internal/handlers/backup"
	"crowdlog/internal/handlers/dashboard"
	"crowdlog/internal/handlers/filters"
	"crowdlog/internal/handlers/upload"
	"crowdlog/internal/services/analytics"
	"crowdlog/internal/services/dataloader"
	"crowdlog/internal/services/snapshot"
	"crowdlog/internal/services/storage"
	"crowdlog/internal/services/telemetry"
	"crowdlog/internal/version"
)

const unlockAttempts = 3

var (
	cfg   *config.Config
	store *storage.Storage
	ctrl  *analytics.Controller
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	info := version.Get()
	log.Printf("Starting %s on %s", info, cfg.ListenAddr)
	if w := info.Warning(); w != "" {
		log.Printf("Warning: %s", w)
	}
	log.Printf("Data directory: %s", cfg.DataDirectory)

	store, err = storage.New(cfg.DataDirectory)
	if err != nil {
		log.Fatalf("Error opening data directory: %v", err)
	}
	if store.IsEncrypted() {
		unlockStorage()
	}

	if err := SetupDependencies(cfg); err != nil {
		log.Fatalf("Error setting up dependencies: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: shutdown did not complete: %v", err)
	}
}

// unlockStorage prompts for the storage password on an interactive terminal.
// Without one the server starts locked and waits for /api/storage/unlock.
func unlockStorage() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.Println("Storage is encrypted; unlock it with POST /api/storage/unlock")
		return
	}

	for i := 0; i < unlockAttempts; i++ {
		fmt.Fprint(os.Stderr, "Storage password: ")
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Printf("Warning: could not read password: %v", err)
			return
		}

		if err := store.Unlock(string(password)); err != nil {
			log.Printf("Unlock failed: %v", err)
			continue
		}
		log.Println("Storage unlocked")
		return
	}
	log.Println("Starting with locked storage")
}

// SetupDependencies wires the services and handlers for the given config
func SetupDependencies(c *config.Config) error {
	cfg = c

	if store == nil {
		s, err := storage.New(cfg.DataDirectory)
		if err != nil {
			return fmt.Errorf("opening data directory: %w", err)
		}
		store = s
	}

	aliases, err := dataloader.LoadColumnAliases(cfg.SchemaFile)
	if err != nil {
		return fmt.Errorf("loading column aliases: %w", err)
	}
	if cfg.SchemaFile != "" {
		log.Printf("Loaded column aliases from %s", cfg.SchemaFile)
	}

	ctrl = analytics.New(dataloader.New(aliases), snapshot.NewStore(store))
	ctrl.Restore()

	upload.Initialize(cfg, ctrl)
	filters.Initialize(ctrl)
	dashboard.Initialize(cfg, ctrl, store)
	backup.Initialize(store, ctrl)

	return nil
}

// SetupRouter builds the HTTP routes
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/dataset", http.StatusTemporaryRedirect)
	})

	upload.RegisterRoutes(r)
	filters.RegisterRoutes(r)
	dashboard.RegisterRoutes(r)

	// Backup and storage routes
	r.Get("/api/health", backup.HandleHealth)
	r.Get("/api/backup", backup.HandleBackup)
	r.Post("/api/restore", backup.HandleRestore)
	r.Post("/api/storage/unlock", backup.HandleUnlock)
	r.Post("/api/storage/lock", backup.HandleLock)
	r.Post("/api/storage/encrypt", backup.HandleEncrypt)
	r.Post("/api/storage/decrypt", backup.HandleDecrypt)

	r.Handle("/metrics", telemetry.Handler())

	return r
}
