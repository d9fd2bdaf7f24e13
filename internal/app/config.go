package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/station-marker/internal/modules/marking"
	"github.com/yungbote/station-marker/internal/observability"
	"github.com/yungbote/station-marker/internal/platform/envutil"
	"github.com/yungbote/station-marker/internal/platform/logger"
	"github.com/yungbote/station-marker/internal/stations"
)

type Config struct {
	Address string
	Log     logger.Options
	Otel    observability.OtelConfig

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	// OpenAITimeout of zero leaves the outbound call unbounded.
	OpenAITimeout time.Duration
	UseSchema     bool

	StationsFile      string
	RequireAllAnswers bool

	// Scoring overrides; zero values keep the catalog's declared policy.
	OverallMode string
	DomainMin   *float64
	DomainMax   *float64
	OverallMin  *float64
	OverallMax  *float64
}

// LoadConfig reads .env when present, then the process environment.
// A set scoring override that does not parse is an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var errs []error
	override := func(name string) *float64 {
		v, err := optionalFloat(name)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	cfg := Config{
		Address: envutil.String("SERVER_ADDRESS", ":"+envutil.String("PORT", "8080")),
		Log: logger.Options{
			Mode:     envutil.String("LOG_MODE", "development"),
			Level:    envutil.String("LOG_LEVEL", "info"),
			Redact:   envutil.Bool("LOG_REDACTION_ENABLED", true),
			HashSalt: envutil.String("LOG_HASH_SALT", ""),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "station-marker"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
		OpenAIKey:         envutil.String("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     envutil.String("OPENAI_BASE_URL", ""),
		OpenAIModel:       envutil.String("OPENAI_MODEL", "gpt-5-mini"),
		OpenAITimeout:     time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 0)) * time.Second,
		UseSchema:         !strings.EqualFold(envutil.String("SCHEMA_MODE", "strict"), "off"),
		StationsFile:      envutil.String("STATIONS_FILE", ""),
		RequireAllAnswers: envutil.Bool("MARK_REQUIRE_ALL_ANSWERS", false),
		OverallMode:       envutil.String("SCORING_OVERALL_MODE", ""),
		DomainMin:         override("SCORING_DOMAIN_MIN"),
		DomainMax:         override("SCORING_DOMAIN_MAX"),
		OverallMin:        override("SCORING_OVERALL_MIN"),
		OverallMax:        override("SCORING_OVERALL_MAX"),
	}
	return cfg, errors.Join(errs...)
}

func optionalFloat(name string) (*float64, error) {
	raw := envutil.String(name, "")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s=%q is not a number", name, raw)
	}
	return &v, nil
}

// Scoring layers the env overrides on top of the catalog's declared policy.
func (c Config) Scoring(spec stations.ScoringSpec) (marking.ScoringConfig, error) {
	cfg, err := marking.ScoringConfigFromSpec(spec)
	if err != nil {
		return marking.ScoringConfig{}, err
	}
	switch mode := marking.OverallMode(strings.TrimSpace(c.OverallMode)); mode {
	case "":
	case marking.OverallSumScaled, marking.OverallModelReported:
		cfg.Overall = mode
	default:
		return marking.ScoringConfig{}, fmt.Errorf("SCORING_OVERALL_MODE %q is not supported", c.OverallMode)
	}
	if c.DomainMin != nil {
		cfg.DomainMin = *c.DomainMin
	}
	if c.DomainMax != nil {
		cfg.DomainMax = *c.DomainMax
	}
	if c.OverallMin != nil {
		cfg.OverallMin = *c.OverallMin
	}
	if c.OverallMax != nil {
		cfg.OverallMax = *c.OverallMax
	}
	if err := cfg.Validate(); err != nil {
		return marking.ScoringConfig{}, err
	}
	return cfg, nil
}
