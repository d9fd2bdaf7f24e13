package marking

import (
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/station-marker/internal/stations"
)

type OverallMode string

const (
	// OverallModelReported trusts the overall mark returned by the model (after bound checks).
	OverallModelReported OverallMode = "model-reported"
	// OverallSumScaled derives the overall mark from the domain marks.
	OverallSumScaled OverallMode = "sum-scaled"
)

type WordTargets struct {
	Main     string
	FollowUp string
}

// ScoringConfig is the marking policy for a deployed station set.
type ScoringConfig struct {
	Domains     []string
	DomainMin   float64
	DomainMax   float64
	OverallMin  float64
	OverallMax  float64
	Overall     OverallMode
	WordTargets WordTargets
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Domains:    []string{"empathy", "communication", "ethics", "insight"},
		DomainMin:  0,
		DomainMax:  10,
		OverallMin: 0,
		OverallMax: 10,
		Overall:    OverallSumScaled,
		WordTargets: WordTargets{
			Main:     "60-120 words",
			FollowUp: "30-70 words",
		},
	}
}

// ScoringConfigFromSpec converts the catalog's declared policy, filling unset parts from the defaults.
func ScoringConfigFromSpec(spec stations.ScoringSpec) (ScoringConfig, error) {
	cfg := DefaultScoringConfig()
	if len(spec.Domains) > 0 {
		cfg.Domains = append([]string(nil), spec.Domains...)
		cfg.DomainMin, cfg.DomainMax = spec.DomainMin, spec.DomainMax
		cfg.OverallMin, cfg.OverallMax = spec.OverallMin, spec.OverallMax
	}
	if m := strings.TrimSpace(spec.OverallMode); m != "" {
		cfg.Overall = OverallMode(m)
	}
	if s := strings.TrimSpace(spec.WordTargets.Main); s != "" {
		cfg.WordTargets.Main = s
	}
	if s := strings.TrimSpace(spec.WordTargets.FollowUp); s != "" {
		cfg.WordTargets.FollowUp = s
	}
	return cfg, cfg.Validate()
}

func (c ScoringConfig) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("scoring: at least one domain required")
	}
	seen := map[string]bool{}
	for _, d := range c.Domains {
		if strings.TrimSpace(d) == "" || d != strings.TrimSpace(d) {
			return fmt.Errorf("scoring: invalid domain name %q", d)
		}
		if d == overallKey || d == "station" || strings.HasPrefix(d, feedbackPrefix) || strings.HasPrefix(d, "model_") {
			return fmt.Errorf("scoring: domain name %q collides with a reserved key", d)
		}
		if seen[d] {
			return fmt.Errorf("scoring: duplicate domain %q", d)
		}
		seen[d] = true
	}
	if !(c.DomainMax > c.DomainMin) {
		return fmt.Errorf("scoring: domain range [%v,%v] is empty", c.DomainMin, c.DomainMax)
	}
	if !(c.OverallMax > c.OverallMin) {
		return fmt.Errorf("scoring: overall range [%v,%v] is empty", c.OverallMin, c.OverallMax)
	}
	switch c.Overall {
	case OverallModelReported, OverallSumScaled:
	default:
		return fmt.Errorf("scoring: unknown overall mode %q", c.Overall)
	}
	return nil
}

// deriveOverall maps the domain sum linearly from [n*min, n*max] onto the
// overall range and rounds half away from zero.
func (c ScoringConfig) deriveOverall(scores map[string]float64) float64 {
	n := float64(len(c.Domains))
	sum := 0.0
	for _, d := range c.Domains {
		sum += scores[d]
	}
	frac := (sum - n*c.DomainMin) / (n * (c.DomainMax - c.DomainMin))
	return math.Round(c.OverallMin + frac*(c.OverallMax-c.OverallMin))
}

func (c ScoringConfig) wordTarget(questionID string) string {
	if questionID == "main" {
		return c.WordTargets.Main
	}
	return c.WordTargets.FollowUp
}
