package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"vulcanhr/internal/broadcast"
	"vulcanhr/internal/cloud"
	"vulcanhr/internal/db"
	"vulcanhr/internal/localstore"
	"vulcanhr/internal/platform/config"
	"vulcanhr/internal/platform/logging"
	authhandler "vulcanhr/internal/transport/http/handlers/auth"
	employeehandler "vulcanhr/internal/transport/http/handlers/employees"
	evaluationhandler "vulcanhr/internal/transport/http/handlers/evaluations"
	reporthandler "vulcanhr/internal/transport/http/handlers/reports"
	synchandler "vulcanhr/internal/transport/http/handlers/sync"
	userhandler "vulcanhr/internal/transport/http/handlers/users"
	"vulcanhr/internal/transport/http/middleware"
	"vulcanhr/internal/vulcandb"
)

// NewRouter assembles the HTTP surface over an already constructed
// database. Split out from Run so tests can drive the full stack through
// httptest.
func NewRouter(cfg config.Config, data *vulcandb.DB, hub *broadcast.Hub) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// Readiness is local-store readiness; the cloud mirror being
		// down must not take the app out of rotation.
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if !data.Ready(ctx) {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(data, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)

		employeehandler.NewHandler(data).RegisterRoutes(r)
		evaluationhandler.NewHandler(data).RegisterRoutes(r)
		userhandler.NewHandler(data).RegisterRoutes(r)
		synchandler.NewHandler(data, hub).RegisterRoutes(r)
		reporthandler.NewHandler(data).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logging.Init(cfg)

	if dir := filepath.Dir(cfg.LocalStorePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("local store dir: %v", err)
		}
	}
	local, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		log.Fatalf("local store open failed: %v", err)
	}
	defer local.Close()

	ctx := context.Background()
	var mirror vulcandb.Mirror
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, "migrations"); err != nil {
				log.Fatalf("migrations failed: %v", err)
			}
		}
		mirror = cloud.NewClient(pool, cfg.CloudTimeout)
	} else {
		log.Print("DATABASE_URL not set, running without a cloud mirror")
	}

	hub := broadcast.NewHub()
	defer hub.Close()

	data := vulcandb.New(local, mirror, hub, cfg.CloudTimeout)
	initCtx, cancel := context.WithTimeout(ctx, cfg.CloudTimeout+time.Second)
	defer cancel()
	if err := data.Initialize(initCtx); err != nil {
		log.Fatalf("initialize failed: %v", err)
	}

	router := NewRouter(cfg, data, hub)

	log.Printf("VulcanHR server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
