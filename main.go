package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/draftlab/fastbreak/internal/auth"
	"github.com/draftlab/fastbreak/internal/clickhouse"
	"github.com/draftlab/fastbreak/internal/config"
	"github.com/draftlab/fastbreak/internal/dal"
	"github.com/draftlab/fastbreak/internal/draft"
	"github.com/draftlab/fastbreak/internal/handlers"
	"github.com/draftlab/fastbreak/internal/loader"
	"github.com/draftlab/fastbreak/internal/logger"
	"github.com/draftlab/fastbreak/internal/mocks"
	"github.com/draftlab/fastbreak/internal/models"
	"github.com/draftlab/fastbreak/internal/pubsub"
)

var (
	cfg          *config.Config
	dataStore    dal.SnapshotStore
	session      *draft.Session
	authProvider auth.AuthProvider
	ps           *pubsub.PubSub
	warehouse    interface {
		FetchProjections(ctx context.Context) (map[string]float64, error)
		Ping(ctx context.Context) error
		Close() error
	}
)

func main() {
	// Initialize logger first
	logger.Init()

	logger.Info("Starting fastbreak draft service")

	var err error
	cfg, err = config.Load("")
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		log.Fatalf("Failed to load configuration: %v", err)
	}

	isDev := cfg.Environment == "" || cfg.Environment == "development"

	// Load the player table
	players, err := loader.Load(cfg.Players.CSV, cfg.League.Scoring)
	if err != nil {
		logger.Error("Failed to load player table", "error", err, "file", cfg.Players.CSV)
		log.Fatalf("Failed to load player table: %v", err)
	}

	// Initialize the snapshot store
	switch cfg.Database.Driver {
	case "memory":
		dataStore = dal.NewMemoryStore()
		logger.Info("Using in-memory snapshot store")
	case "sqlite":
		dataStore, err = dal.NewSQLiteStore(cfg.Database.SQLiteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite snapshot store", "file", cfg.Database.SQLiteFile)
	case "postgres":
		if isDev {
			dataStore, err = mocks.NewMockPostgresStore(cfg.Database.SQLiteFile)
			if err != nil {
				logger.Error("Failed to initialize mock Postgres", "error", err)
				log.Fatalf("Failed to initialize mock Postgres: %v", err)
			}
			break
		}
		if cfg.Database.URL == "" {
			logger.Error("DATABASE_URL is required for the postgres driver")
			log.Fatal("DATABASE_URL is required for the postgres driver")
		}
		dataStore, err = dal.NewPostgresStore(cfg.Database.URL)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres snapshot store")
	default:
		logger.Error("Unknown database driver", "driver", cfg.Database.Driver)
		log.Fatalf("Unknown database driver: %s (valid: memory, sqlite, postgres)", cfg.Database.Driver)
	}

	// Build the draft session, resuming a stored snapshot when one exists
	draftCfg, err := cfg.League.DraftConfig()
	if err != nil {
		logger.Error("Invalid league configuration", "error", err)
		log.Fatalf("Invalid league configuration: %v", err)
	}
	session = resumeOrFresh(players, draftCfg)

	// Initialize pub/sub (NATS JetStream, embedded NATS, or mock)
	var upstream pubsub.Upstream
	switch {
	case cfg.NATS.URL == "mock":
		mockNats, err := pubsub.NewMockNATSPubSub(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Error("Failed to initialize mock NATS", "error", err)
			log.Fatalf("Failed to initialize mock NATS: %v", err)
		}
		upstream = mockNats
	case isDev:
		logger.Info("Starting embedded NATS server for local development")
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Subject: cfg.NATS.Subject,
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		upstream = embeddedNats
		logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
	default:
		realNats, err := pubsub.NewNATSPubSub(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		upstream = realNats
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	}

	ps = pubsub.NewWithUpstream(upstream)

	// Initialize the projection warehouse (mock in development)
	if isDev {
		warehouse = mocks.NewMockWarehouse()
	} else {
		warehouse, err = clickhouse.NewClient(
			cfg.ClickHouse.Addr,
			cfg.ClickHouse.Database,
			cfg.ClickHouse.Username,
			cfg.ClickHouse.Password,
		)
		if err != nil {
			logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouse.Addr)
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		logger.Info("Connected to ClickHouse", "address", cfg.ClickHouse.Addr, "database", cfg.ClickHouse.Database)
	}

	// Refresh projections now and every five minutes
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		syncProjections()

		for range ticker.C {
			syncProjections()
		}
	}()

	// Initialize authentication (mock in development)
	if isDev {
		logger.Info("Using mock authentication for local development")
		authProvider = auth.NewMockAuth()
	} else {
		if cfg.Auth.BaseURL == "" || cfg.Auth.ClientID == "" || cfg.Auth.ClientSecret == "" {
			logger.Error("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET are required for production")
			log.Fatal("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET are required for production")
		}

		redirectURL := cfg.Auth.RedirectURL
		if redirectURL == "" {
			redirectURL = "http://localhost:3000/auth/callback"
		}

		authProvider = auth.NewAuthentikAuth(&auth.AuthentikConfig{
			BaseURL:      cfg.Auth.BaseURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Connected to Authentik", "url", cfg.Auth.BaseURL)
	}

	// Set up HTTP routes
	mux := http.NewServeMux()

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	api := handlers.NewAPIHandlers(session, ps)

	// Draft API; mutating routes sit behind the auth middleware
	mux.HandleFunc("/api/draft/state", api.GetDraftState)
	mux.HandleFunc("/api/draft/start", authProvider.Middleware(api.StartDraft))
	mux.HandleFunc("/api/draft/pick", authProvider.Middleware(api.DraftPick))
	mux.HandleFunc("/api/draft/autopick", authProvider.Middleware(api.AutoPick))
	mux.HandleFunc("/api/draft/reset", authProvider.Middleware(api.ResetDraft))
	mux.HandleFunc("/api/draft/recommendations", api.GetRecommendations)
	mux.HandleFunc("/api/draft/best", api.BestAvailable)

	// Players API
	mux.HandleFunc("/api/players", api.ListPlayers)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/healthz", livenessHandler) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler) // Kubernetes readiness probe

	addr := "0.0.0.0:" + cfg.HTTP.Port
	logger.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

// resumeOrFresh restores the session from the snapshot store, falling back
// to a fresh draft when no snapshot exists or the stored one is unusable.
func resumeOrFresh(players []models.Player, draftCfg draft.Config) *draft.Session {
	snap, err := dataStore.Load()
	if err != nil {
		if !errors.Is(err, dal.ErrNoSnapshot) {
			logger.Warn("Failed to read snapshot store, starting fresh", "error", err)
		}
		return draft.NewSession(players, draftCfg, dataStore)
	}

	restored, err := draft.Restore(players, snap, draftCfg, dataStore)
	if err != nil {
		logger.Warn("Stored snapshot unusable, starting fresh", "error", err)
		if clearErr := dataStore.Clear(); clearErr != nil {
			logger.Warn("Failed to clear unusable snapshot", "error", clearErr)
		}
		return draft.NewSession(players, draftCfg, dataStore)
	}

	logger.Info("Resumed draft from snapshot", "cursor", snap.Cursor, "savedAt", snap.SavedAt)
	return restored
}

// syncProjections pulls fresh numbers from the warehouse into the session
func syncProjections() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	projections, err := warehouse.FetchProjections(ctx)
	if err != nil {
		logger.Error("Failed to fetch projections", "error", err)
		return
	}

	updated := session.UpdateProjections(projections)
	if updated == 0 {
		logger.Debug("Projections already current")
		return
	}

	ps.Publish(pubsub.Event{
		Type:    pubsub.EventPlayersSync,
		Payload: map[string]interface{}{"updated": updated},
	})
	logger.Info("Projections synced", "updated", updated)
}

// storeHealthy probes the snapshot store; an empty store is healthy
func storeHealthy() error {
	_, err := dataStore.Load()
	if err != nil && !errors.Is(err, dal.ErrNoSnapshot) {
		return err
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	// Check snapshot store connectivity
	if err := storeHealthy(); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
		checks["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	// Check warehouse connectivity
	if warehouse != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := warehouse.Ping(ctx); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["clickhouse"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["clickhouse"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	}

	// Connection health is handled internally by the NATS client
	if ps != nil {
		checks["nats"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler handles Kubernetes readiness probes
// Returns 200 if the application is ready to serve traffic (checks critical dependencies)
func readinessHandler(w http.ResponseWriter, r *http.Request) {
	if err := storeHealthy(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "not_ready",
			"reason":    "database_unavailable",
			"timestamp": time.Now().Unix(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
