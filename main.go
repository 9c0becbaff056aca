package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"season-engine/models"
	"season-engine/prediction"
	"season-engine/schedule"
	"season-engine/simulation"
	"season-engine/store"
)

type Server struct {
	router     *mux.Router
	httpServer *http.Server
	config     *Config
	league     *models.League
	schedule   []models.Game
	service    *simulation.Service
	store      *store.Store
}

type Config struct {
	Port         string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	Workers      int
	TrialCount   int
	ScheduleFile string
	RatingsFile  string
	GamesPerTeam int
}

type SimulateRequest struct {
	Trials             int     `json:"trials,omitempty"`
	Seed               int64   `json:"seed,omitempty"`
	TieAllowed         *bool   `json:"tie_allowed,omitempty"`
	HomeFieldAdvantage float64 `json:"home_field_advantage,omitempty"`
	RetainTrialDetail  bool    `json:"retain_trial_detail,omitempty"`
}

type SimulateResponse struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type PredictRequest struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

func NewConfig() *Config {
	workers := runtime.NumCPU()
	if envWorkers := os.Getenv("WORKERS"); envWorkers != "" {
		fmt.Sscanf(envWorkers, "%d", &workers)
	}

	trialCount := simulation.DefaultTrialCount
	if envTrials := os.Getenv("TRIALS"); envTrials != "" {
		fmt.Sscanf(envTrials, "%d", &trialCount)
	}

	gamesPerTeam := models.NFLGamesPerTeam
	if envGames := os.Getenv("GAMES_PER_TEAM"); envGames != "" {
		fmt.Sscanf(envGames, "%d", &gamesPerTeam)
	}

	return &Config{
		Port:         getEnv("PORT", "8082"),
		DBHost:       getEnv("DB_HOST", ""),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "season_user"),
		DBPassword:   getEnv("DB_PASSWORD", "season_pass"),
		DBName:       getEnv("DB_NAME", "season_sim"),
		Workers:      workers,
		TrialCount:   trialCount,
		ScheduleFile: getEnv("SCHEDULE_FILE", ""),
		RatingsFile:  getEnv("RATINGS_FILE", ""),
		GamesPerTeam: gamesPerTeam,
	}
}

func NewServer(config *Config) (*Server, error) {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
	}

	// League and schedule come from Postgres when DB_HOST is set, otherwise
	// from local files. Both paths validate before the server accepts runs.
	if config.DBHost != "" {
		dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort, config.DBName)

		dbConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse db config: %w", err)
		}
		dbConfig.MaxConns = int32(config.Workers * 2)
		dbConfig.MaxConnLifetime = time.Hour
		dbConfig.MaxConnIdleTime = time.Minute * 30

		pool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		s.store = store.New(pool)
		if err := s.store.InitSchema(context.Background()); err != nil {
			return nil, err
		}
		if err := s.loadLeagueFromStore(); err != nil {
			return nil, err
		}
	} else {
		if err := s.loadLeagueFromFiles(); err != nil {
			return nil, err
		}
	}

	report := schedule.Validate(s.league, s.schedule, config.GamesPerTeam)
	if !report.Valid {
		for _, issue := range report.Issues {
			log.Printf("Schedule issue: %s", issue)
		}
	}

	var simStore simulation.Store
	if s.store != nil {
		simStore = s.store
	}
	s.service = simulation.NewService(s.league, s.schedule, simStore)

	s.setupRoutes()
	return s, nil
}

func (s *Server) loadLeagueFromStore() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	teams, err := s.store.LoadTeams(ctx)
	if err != nil {
		return err
	}
	league, err := models.NewLeague(teams)
	if err != nil {
		return err
	}
	games, err := s.store.LoadSchedule(ctx)
	if err != nil {
		return err
	}

	s.league = league
	s.schedule = games
	return nil
}

func (s *Server) loadLeagueFromFiles() error {
	if s.config.ScheduleFile == "" || s.config.RatingsFile == "" {
		return fmt.Errorf("either DB_HOST or both SCHEDULE_FILE and RATINGS_FILE must be set")
	}

	data, err := os.ReadFile(s.config.RatingsFile)
	if err != nil {
		return fmt.Errorf("failed to read ratings file: %w", err)
	}
	var ratings map[string]float64
	if err := json.Unmarshal(data, &ratings); err != nil {
		return fmt.Errorf("failed to parse ratings file: %w", err)
	}

	league, err := models.NFLLeague(ratings)
	if err != nil {
		return err
	}
	games, err := schedule.Load(league, s.config.ScheduleFile)
	if err != nil {
		return err
	}

	s.league = league
	s.schedule = games
	return nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")

	s.router.HandleFunc("/simulate", s.simulateHandler).Methods("POST")
	s.router.HandleFunc("/simulation/{id}/status", s.simulationStatusHandler).Methods("GET")
	s.router.HandleFunc("/simulation/{id}/result", s.simulationResultHandler).Methods("GET")
	s.router.HandleFunc("/simulation/{id}/details", s.simulationDetailsHandler).Methods("GET")

	s.router.HandleFunc("/predict", s.predictHandler).Methods("POST")
	s.router.HandleFunc("/schedule/validation", s.scheduleValidationHandler).Methods("GET")

	s.router.Use(s.recoveryMiddleware)
}

func (s *Server) Start() error {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	})

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handlers.CombinedLoggingHandler(os.Stdout, corsHandler.Handler(s.router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting Season Engine on port %s with %d workers, %d teams, %d games",
		s.config.Port, s.config.Workers, len(s.league.Teams()), len(s.schedule))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down Season Engine...")
	if s.store != nil {
		s.store.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// Handlers

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":  "healthy",
		"time":    time.Now().UTC(),
		"workers": s.config.Workers,
		"teams":   len(s.league.Teams()),
		"games":   len(s.schedule),
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		health["database"] = "connected"
		if err := s.store.Ping(ctx); err != nil {
			health["database"] = "disconnected"
			health["status"] = "unhealthy"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}

	writeJSON(w, health)
}

func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cfg := simulation.DefaultConfig()
	cfg.TrialCount = s.config.TrialCount
	cfg.Workers = s.config.Workers
	if req.Trials != 0 {
		cfg.TrialCount = req.Trials
	}
	cfg.Seed = req.Seed
	if req.TieAllowed != nil {
		cfg.TieAllowed = *req.TieAllowed
	}
	if req.HomeFieldAdvantage != 0 {
		cfg.HomeFieldAdvantage = req.HomeFieldAdvantage
	}
	cfg.RetainTrialDetail = req.RetainTrialDetail

	runID, err := s.service.StartRun(cfg)
	if err != nil {
		var confErr *models.ConfigurationError
		var inputErr *models.InputError
		var schedErr *models.IncompleteScheduleError
		if errors.As(err, &confErr) || errors.As(err, &inputErr) || errors.As(err, &schedErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Failed to start run: %v", err)
		http.Error(w, "Failed to start simulation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, SimulateResponse{
		RunID:     runID,
		Status:    "started",
		Message:   fmt.Sprintf("Simulation started with %d trials", cfg.TrialCount),
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Server) simulationStatusHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	status, exists := s.service.GetRunStatus(runID)
	if !exists {
		http.Error(w, "Simulation not found", http.StatusNotFound)
		return
	}

	progress := 0.0
	if status.TotalTrials > 0 {
		progress = float64(status.CompletedTrials) / float64(status.TotalTrials)
	}
	writeJSON(w, map[string]interface{}{
		"run_id":           status.RunID,
		"status":           status.Status,
		"total_trials":     status.TotalTrials,
		"completed_trials": status.CompletedTrials,
		"progress":         progress,
		"start_time":       status.StartTime,
		"completed_time":   status.CompletedTime,
		"error":            status.Error,
	})
}

func (s *Server) simulationResultHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	if status, exists := s.service.GetRunStatus(runID); exists && status.Status != simulation.StatusCompleted {
		if status.Status == simulation.StatusError {
			http.Error(w, "Simulation failed: "+status.Error, http.StatusInternalServerError)
			return
		}
		http.Error(w, "Simulation not yet complete", http.StatusAccepted)
		return
	}

	report, err := s.service.GetRunResult(r.Context(), runID)
	if err != nil {
		http.Error(w, "Simulation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, report)
}

func (s *Server) simulationDetailsHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	details, ok := s.service.GetRunDetails(runID)
	if !ok {
		http.Error(w, "No retained detail for this run", http.StatusNotFound)
		return
	}
	writeJSON(w, details)
}

func (s *Server) predictHandler(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	home, ok := s.league.Team(req.Home)
	if !ok {
		http.Error(w, "Unknown home team", http.StatusBadRequest)
		return
	}
	away, ok := s.league.Team(req.Away)
	if !ok {
		http.Error(w, "Unknown away team", http.StatusBadRequest)
		return
	}

	model, err := prediction.NewModel(models.NFLDefaultHomeAdvantage, simulation.DefaultTieProbability)
	if err != nil {
		log.Printf("Failed to build outcome model: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	dist, err := model.Predict(home, away)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]interface{}{
		"home":         home.Abbrev,
		"away":         away.Abbrev,
		"distribution": dist,
	})
}

func (s *Server) scheduleValidationHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, schedule.Validate(s.league, s.schedule, s.config.GamesPerTeam))
}

// Middleware

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	config := NewConfig()

	server, err := NewServer(config)
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatal("Server shutdown failed:", err)
		}
		log.Println("Server shutdown complete")
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed to start:", err)
	}
}
