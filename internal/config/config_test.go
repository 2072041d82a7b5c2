package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_ScoringPointsCoerceToZero(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("POINTS_CORRECT_SCORELINE", "10")
	t.Setenv("POINTS_GOAL_SCORED", "not-a-number")
	t.Setenv("POINTS_ASSIST", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CorrectScorelinePoints != 10 {
		t.Fatalf("unexpected CorrectScorelinePoints: %d", cfg.CorrectScorelinePoints)
	}
	if cfg.GoalsScoredPoints != 0 {
		t.Fatalf("expected malformed goal points to coerce to 0, got %d", cfg.GoalsScoredPoints)
	}
	if cfg.AssistsPoints != 0 {
		t.Fatalf("expected negative assist points to coerce to 0, got %d", cfg.AssistsPoints)
	}
}

func TestLoad_ResultsClientConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("RESULTS_BASE_URL", "https://results.example.com")
	t.Setenv("RESULTS_TOKEN", "token-123")
	t.Setenv("RESULTS_TIMEOUT", "4s")
	t.Setenv("RESULTS_MAX_RETRIES", "3")
	t.Setenv("RESULTS_CACHE_TTL", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ResultsBaseURL != "https://results.example.com" {
		t.Fatalf("unexpected ResultsBaseURL: %q", cfg.ResultsBaseURL)
	}
	if cfg.ResultsToken != "token-123" {
		t.Fatalf("unexpected ResultsToken")
	}
	if cfg.ResultsTimeout != 4*time.Second {
		t.Fatalf("unexpected ResultsTimeout: %s", cfg.ResultsTimeout)
	}
	if cfg.ResultsMaxRetries != 3 {
		t.Fatalf("unexpected ResultsMaxRetries: %d", cfg.ResultsMaxRetries)
	}
	if cfg.ResultsCacheTTL != 45*time.Second {
		t.Fatalf("unexpected ResultsCacheTTL: %s", cfg.ResultsCacheTTL)
	}
}

func TestLoad_WorkerSettingsMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SCORING_MAX_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SCORING_MAX_WORKERS=0")
	}
}
