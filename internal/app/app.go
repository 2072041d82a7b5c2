package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/predictball/predictor-league/internal/config"
	"github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/domain/leaguescore"
	"github.com/predictball/predictor-league/internal/domain/prediction"
	"github.com/predictball/predictor-league/internal/domain/user"
	"github.com/predictball/predictor-league/internal/infrastructure/provider/footballdata"
	"github.com/predictball/predictor-league/internal/infrastructure/repository/memory"
	"github.com/predictball/predictor-league/internal/infrastructure/repository/postgres"
	"github.com/predictball/predictor-league/internal/interfaces/httpapi"
	idgen "github.com/predictball/predictor-league/internal/platform/id"
	"github.com/predictball/predictor-league/internal/platform/logging"
	"github.com/predictball/predictor-league/internal/platform/resilience"
	"github.com/predictball/predictor-league/internal/usecase"
)

// NewHTTPServer wires repositories, services, and the HTTP router. The
// returned cleanup closes the database pool and is nil-safe to call even
// when the server never started.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		userRepo       user.Repository
		predictionRepo prediction.Repository
		leagueRepo     league.Repository
		scoreRepo      leaguescore.Repository
	)
	cleanup := func() error { return nil }

	if strings.TrimSpace(cfg.DBURL) != "" {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = db.Close
		userRepo = postgres.NewUserRepository(db)
		predictionRepo = postgres.NewPredictionRepository(db)
		leagueRepo = postgres.NewLeagueRepository(db)
		scoreRepo = postgres.NewLeagueScoreRepository(db)
	} else {
		logger.Warn("DB_URL is empty, using in-memory repositories with seed users")
		userRepo = memory.NewUserRepository(memory.SeedUsers())
		predictionRepo = memory.NewPredictionRepository(nil)
		leagueRepo = memory.NewLeagueRepository(nil)
		scoreRepo = memory.NewLeagueScoreRepository()
	}

	scoringSvc := usecase.NewScoringService(predictionRepo, usecase.ScoringPoints{
		CorrectScoreline: cfg.CorrectScorelinePoints,
		GoalScored:       cfg.GoalsScoredPoints,
		Assist:           cfg.AssistsPoints,
	})
	aggregationSvc := usecase.NewLeagueAggregationService(leagueRepo, scoreRepo, predictionRepo)
	leagueSvc := usecase.NewLeagueService(leagueRepo, scoreRepo, idgen.NewRandomGenerator())
	tableSvc := usecase.NewLeagueTableService(leagueRepo, scoreRepo)
	predictionSvc := usecase.NewPredictionService(predictionRepo)

	resultsClient := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:    cfg.ResultsBaseURL,
		APIKey:     cfg.ResultsToken,
		Timeout:    cfg.ResultsTimeout,
		MaxRetries: cfg.ResultsMaxRetries,
		CacheTTL:   cfg.ResultsCacheTTL,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ResultsCircuitEnabled,
			FailureThreshold: cfg.ResultsCircuitFailureCount,
			OpenTimeout:      cfg.ResultsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ResultsCircuitHalfOpenMaxRq,
		},
	})
	runSvc := usecase.NewGameweekRunService(
		userRepo,
		predictionRepo,
		leagueRepo,
		resultsClient,
		scoringSvc,
		aggregationSvc,
		cfg.ScoringMaxWorkers,
	)

	handler := httpapi.NewHandler(leagueSvc, tableSvc, predictionSvc, runSvc, aggregationSvc, logger)
	router := httpapi.NewRouter(handler, userRepo, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		if err := cleanup(); err != nil {
			logger.Warn("close database", "error", err)
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	// lib/pq returns prepared binary results for JSONB columns unless told
	// otherwise, which breaks sonic decoding of the entries payloads.
	dsn := normalizeDBURL(cfg.DBURL, true)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return db, nil
}
