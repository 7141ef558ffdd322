package matching

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Policy carries the numeric thresholds of the matching engine. The
// defaults are the clinically reviewed values; a yaml file can override
// them per deployment.
type Policy struct {
	// Evaluator: weighted-sum stage over the five recipient composites.
	MaxTotalScore          float64 `yaml:"max_total_score"`
	CompatibilityThreshold float64 `yaml:"compatibility_threshold"`

	// Ranker: percentage heuristic and tier bounds.
	BasePercentage    float64 `yaml:"base_percentage"`
	VisionBonusFactor float64 `yaml:"vision_bonus_factor"`
	VisionBonusCap    float64 `yaml:"vision_bonus_cap"`
	UrgencyDivisor    float64 `yaml:"urgency_divisor"`
	UrgencyBonusCap   float64 `yaml:"urgency_bonus_cap"`
	BloodOnlyPct      float64 `yaml:"blood_only_pct"`
	HighTierFloor     float64 `yaml:"high_tier_floor"`
	ModerateTierFloor float64 `yaml:"moderate_tier_floor"`
	ShortlistSize     int     `yaml:"shortlist_size"`

	// Perfect-match detector.
	PerfectMatchHLABar float64 `yaml:"perfect_match_hla_bar"`
	CandidateMinHLA    float64 `yaml:"candidate_min_hla"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxTotalScore:          50,
		CompatibilityThreshold: 25,

		BasePercentage:    70,
		VisionBonusFactor: 3,
		VisionBonusCap:    30,
		UrgencyDivisor:    2,
		UrgencyBonusCap:   10,
		BloodOnlyPct:      50,
		HighTierFloor:     70,
		ModerateTierFloor: 50,
		ShortlistSize:     5,

		PerfectMatchHLABar: 8,
		CandidateMinHLA:    6,
	}
}

// LoadPolicy reads a policy override file. An empty path yields the
// defaults; a present but partial file falls back field by field.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return policy, err
	}
	if err := yaml.Unmarshal(content, &policy); err != nil {
		return DefaultPolicy(), fmt.Errorf("invalid matching policy: %w", err)
	}
	if err := policy.validate(); err != nil {
		return DefaultPolicy(), err
	}
	return policy, nil
}

func (p Policy) validate() error {
	if p.MaxTotalScore <= 0 {
		return fmt.Errorf("max_total_score must be positive")
	}
	if p.CompatibilityThreshold < 0 || p.CompatibilityThreshold > p.MaxTotalScore {
		return fmt.Errorf("compatibility_threshold must be within [0, %v]", p.MaxTotalScore)
	}
	if p.ShortlistSize <= 0 {
		return fmt.Errorf("shortlist_size must be positive")
	}
	if p.UrgencyDivisor == 0 {
		return fmt.Errorf("urgency_divisor must be non-zero")
	}
	return nil
}
