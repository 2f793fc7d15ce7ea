package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/dkotl/macrolog/internal/ai"
	"github.com/dkotl/macrolog/internal/auth"
	"github.com/dkotl/macrolog/internal/blob"
	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/intakes"
	"github.com/dkotl/macrolog/internal/meals"
	"github.com/dkotl/macrolog/internal/profiles"
	"github.com/dkotl/macrolog/internal/realtime"
	"github.com/dkotl/macrolog/internal/reports"
	"github.com/dkotl/macrolog/internal/storage"
	"github.com/dkotl/macrolog/internal/storage/memory"
	"github.com/dkotl/macrolog/internal/storage/postgres"
	"github.com/dkotl/macrolog/internal/userctx"
)

// Server wires config, storage, services and routes into one HTTP handler.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Store
	photoStore     blob.Store
	authMiddleware *auth.Middleware
}

// New builds the server: storage first, then services and routes on top.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage picks Postgres when DATABASE_URL is set, in-memory otherwise.
// A failed Postgres connection falls back to memory so local development
// works without a database.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: using in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: PostgreSQL connection failed: %v", err)
		log.Println("WARN storage: falling back to in-memory storage")
		s.storage = memory.New()
		return
	}
	log.Println("INFO storage: PostgreSQL connected")
	s.storage = pgStorage
}

// routes builds the services and registers every route.
func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (no auth required)
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	// POST /v1/auth/anonymous - issue a fresh anonymous user and token
	s.mux.HandleFunc("POST /v1/auth/anonymous", authHandler.HandleAnonymousSignIn)

	// GET /v1/auth/session - inspect the presented token
	s.mux.HandleFunc("GET /v1/auth/session", authHandler.HandleSession)

	// Meal photos live in the blob store; the same store serves the
	// download route for backends without presigned URLs.
	s.photoStore = s.initBlobStore()

	aiProvider := ai.NewProvider(s.config)

	profilesService := profiles.NewService(s.storage)
	mealsService := meals.NewService(s.storage, aiProvider, s.config)
	intakesService := intakes.NewService(s.storage, s.config)

	// Live sync: every mutation republishes the whole day, so the hub's
	// snapshot function reads back through the same services.
	hub := realtime.NewHub(s.snapshotFunc(profilesService, mealsService, intakesService))
	profilesService.WithHub(hub).WithPhotoStore(s.photoStore)
	mealsService.WithHub(hub).WithPhotoStore(s.photoStore)
	intakesService.WithHub(hub)

	// Profile API
	profilesHandler := profiles.NewHandler(profilesService)

	// GET /v1/profile - current profile with derived targets
	s.mux.HandleFunc("GET /v1/profile", profilesHandler.HandleGet)

	// PUT /v1/profile - create or replace the profile
	s.mux.HandleFunc("PUT /v1/profile", profilesHandler.HandleUpsert)

	// PATCH /v1/profile - partial update, targets recomputed
	s.mux.HandleFunc("PATCH /v1/profile", profilesHandler.HandlePatch)

	// GET /v1/targets - derived daily targets only
	s.mux.HandleFunc("GET /v1/targets", profilesHandler.HandleTargets)

	// DELETE /v1/account - wipe profile, meals, water and photos
	s.mux.HandleFunc("DELETE /v1/account", profilesHandler.HandleDeleteAccount)

	// Meals API
	mealsHandler := meals.NewHandler(mealsService)

	// POST /v1/meals - log a meal
	s.mux.HandleFunc("POST /v1/meals", mealsHandler.HandleCreate)

	// GET /v1/meals - one day's meals with consumed totals
	s.mux.HandleFunc("GET /v1/meals", mealsHandler.HandleList)

	// GET /v1/meals/{id} - single meal
	s.mux.HandleFunc("GET /v1/meals/{id}", mealsHandler.HandleGet)

	// PUT /v1/meals/{id} - replace meal content
	s.mux.HandleFunc("PUT /v1/meals/{id}", mealsHandler.HandleUpdate)

	// DELETE /v1/meals/{id} - remove a meal
	s.mux.HandleFunc("DELETE /v1/meals/{id}", mealsHandler.HandleDelete)

	// POST /v1/meals/analyze - AI estimate from text, never committed
	s.mux.HandleFunc("POST /v1/meals/analyze", mealsHandler.HandleAnalyze)

	// POST /v1/meals/analyze-photo - AI estimate from a photo
	s.mux.HandleFunc("POST /v1/meals/analyze-photo", mealsHandler.HandleAnalyzePhoto)

	// Water API
	intakesHandler := intakes.NewHandler(intakesService)

	// GET /v1/water - serving counter for a day
	s.mux.HandleFunc("GET /v1/water", intakesHandler.HandleGet)

	// POST /v1/water/increment - one serving up
	s.mux.HandleFunc("POST /v1/water/increment", intakesHandler.HandleIncrement)

	// POST /v1/water/decrement - one serving down, floored at zero
	s.mux.HandleFunc("POST /v1/water/decrement", intakesHandler.HandleDecrement)

	// Reports API
	reportsService := reports.NewService(s.storage, s.config)
	reportsHandler := reports.NewHandler(reportsService)

	// GET /v1/reports/daily - PDF or CSV day report
	s.mux.HandleFunc("GET /v1/reports/daily", reportsHandler.HandleDaily)

	// Live sync API
	realtimeHandlers := realtime.NewHandlers(hub)

	// GET /v1/sync/today - WebSocket stream of full day snapshots
	s.mux.HandleFunc("GET /v1/sync/today", realtimeHandlers.HandleSync)

	// GET /v1/photos/{key...} - photo download for local/memory blob modes
	s.mux.HandleFunc("GET /v1/photos/{key...}", s.handlePhoto)
}

// initBlobStore builds the photo store from BLOB_MODE (local, s3 or auto).
func (s *Server) initBlobStore() blob.Store {
	store, mode, err := blob.NewBlobStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize photo store: %v", err)
	}
	log.Printf("INFO blob: photo store mode: %s", mode)
	return store
}

// daySnapshot is the payload pushed over /v1/sync/today: the complete state
// of the user's day. Profile is null until one is created.
type daySnapshot struct {
	Profile *profiles.ProfileDTO   `json:"profile"`
	Meals   *meals.MealsResponse   `json:"meals"`
	Water   *intakes.WaterResponse `json:"water"`
}

// snapshotFunc reads today's full state back through the services. The hub
// calls it after every mutation and on connect.
func (s *Server) snapshotFunc(profilesService *profiles.Service, mealsService *meals.Service, intakesService *intakes.Service) realtime.SnapshotFunc {
	return func(ctx context.Context, userID string) ([]byte, error) {
		ctx = userctx.WithUserID(ctx, userID)

		var snapshot daySnapshot

		profile, err := profilesService.Get(ctx)
		switch {
		case err == nil:
			snapshot.Profile = profile
		case errors.Is(err, profiles.ErrNotFound):
			// Snapshot without a profile is still a valid day state.
		default:
			return nil, err
		}

		if snapshot.Meals, err = mealsService.ListDay(ctx, ""); err != nil {
			return nil, err
		}
		if snapshot.Water, err = intakesService.Get(ctx, ""); err != nil {
			return nil, err
		}

		return json.Marshal(snapshot)
	}
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Start builds the middleware chain and listens.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	// Build middleware chain (outermost first): CORS → Rate Limit → Auth → Router
	var handler http.Handler = s.mux
	if s.authMiddleware != nil {
		if s.config.AuthMode == config.AuthModeJWT {
			handler = s.authMiddleware.RequireAuth(handler)
		} else {
			// Open mode still honors a presented token, so anonymous
			// sign-in scopes data per user even without enforcement.
			handler = s.authMiddleware.OptionalAuth(handler)
		}
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)

	log.Printf("INFO server: listening on http://localhost%s", addr)
	log.Printf("INFO server: health check: http://localhost%s/healthz", addr)

	return http.ListenAndServe(addr, handler)
}

// Close releases the storage.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
