package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/predictball/predictor-league/internal/platform/logging"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string

	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	DBURL             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	LogLevel logging.Level

	// Scoring point values are externally supplied. Missing or malformed
	// values coerce to 0 so a computed total is always a defined number.
	CorrectScorelinePoints int
	GoalsScoredPoints      int
	AssistsPoints          int

	ScoringMaxWorkers int

	ResultsBaseURL              string
	ResultsToken                string
	ResultsTimeout              time.Duration
	ResultsMaxRetries           int
	ResultsCacheTTL             time.Duration
	ResultsCircuitEnabled       bool
	ResultsCircuitFailureCount  int
	ResultsCircuitOpenTimeout   time.Duration
	ResultsCircuitHalfOpenMaxRq int

	InternalJobToken string

	PprofEnabled bool
	PprofAddr    string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	UptraceEnabled bool
	UptraceDSN     string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	dbMaxIdleConns, err := getEnvAsInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Config{}, err
	}
	dbConnMaxLifetime, err := getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}

	scoringMaxWorkers, err := getEnvAsInt("SCORING_MAX_WORKERS", 8)
	if err != nil {
		return Config{}, err
	}
	if scoringMaxWorkers < 1 {
		return Config{}, fmt.Errorf("SCORING_MAX_WORKERS must be > 0")
	}

	resultsTimeout, err := getEnvAsDuration("RESULTS_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	if resultsTimeout <= 0 {
		return Config{}, fmt.Errorf("RESULTS_TIMEOUT must be > 0")
	}
	resultsMaxRetries, err := getEnvAsInt("RESULTS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, err
	}
	resultsCacheTTL, err := getEnvAsDuration("RESULTS_CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	resultsCircuitEnabled, err := getEnvAsBool("RESULTS_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	resultsCircuitFailureCount, err := getEnvAsInt("RESULTS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, err
	}
	resultsCircuitOpenTimeout, err := getEnvAsDuration("RESULTS_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	resultsCircuitHalfOpenMaxRq, err := getEnvAsInt("RESULTS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, err
	}

	pprofEnabled, err := getEnvAsBool("PPROF_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := getEnvAsBool("PYROSCOPE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	uptraceEnabled, err := getEnvAsBool("UPTRACE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	serviceName := strings.TrimSpace(getEnv("SERVICE_NAME", "predictor-league"))

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: strings.TrimSpace(getEnv("SERVICE_VERSION", "dev")),

		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,

		DBURL:             strings.TrimSpace(getEnv("DB_URL", "")),
		DBMaxOpenConns:    dbMaxOpenConns,
		DBMaxIdleConns:    dbMaxIdleConns,
		DBConnMaxLifetime: dbConnMaxLifetime,

		LogLevel: logging.ParseLevel(getEnv("LOG_LEVEL", "info")),

		CorrectScorelinePoints: getEnvAsPointValue("POINTS_CORRECT_SCORELINE"),
		GoalsScoredPoints:      getEnvAsPointValue("POINTS_GOAL_SCORED"),
		AssistsPoints:          getEnvAsPointValue("POINTS_ASSIST"),

		ScoringMaxWorkers: scoringMaxWorkers,

		ResultsBaseURL:              strings.TrimSpace(getEnv("RESULTS_BASE_URL", "")),
		ResultsToken:                strings.TrimSpace(getEnv("RESULTS_TOKEN", "")),
		ResultsTimeout:              resultsTimeout,
		ResultsMaxRetries:           resultsMaxRetries,
		ResultsCacheTTL:             resultsCacheTTL,
		ResultsCircuitEnabled:       resultsCircuitEnabled,
		ResultsCircuitFailureCount:  resultsCircuitFailureCount,
		ResultsCircuitOpenTimeout:   resultsCircuitOpenTimeout,
		ResultsCircuitHalfOpenMaxRq: resultsCircuitHalfOpenMaxRq,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", serviceName)),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,
	}, nil
}

func parseAppEnv(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case EnvDev, "":
		return EnvDev, nil
	case EnvProd, "production":
		return EnvProd, nil
	default:
		return "", fmt.Errorf("unknown APP_ENV %q", value)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

// getEnvAsPointValue coerces a scoring point value. Unlike infra settings,
// a malformed or missing value is 0, never an error: scoring must always
// produce a defined total.
func getEnvAsPointValue(key string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
