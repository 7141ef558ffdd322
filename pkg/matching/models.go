package matching

import (
	"github.com/ocumatch/platform/pkg/common/models"
)

// Verdict of a single-pair compatibility evaluation.
type Verdict string

const (
	VerdictCompatible                 Verdict = "Compatible"
	VerdictIncompatibleBloodGroup     Verdict = "Incompatible/BloodGroup"
	VerdictIncompatibleVisionScore    Verdict = "Incompatible/VisionScore"
	VerdictIncompatibleBelowThreshold Verdict = "Incompatible/BelowThreshold"
)

// ScoreBreakdown lists the five recipient-side composites that feed the
// weighted-sum stage, each contributing up to 10 points.
type ScoreBreakdown struct {
	BloodMatchScore       float64 `json:"bloodMatchScore"`
	VisionScore           float64 `json:"visionScore"`
	HLAMatchScore         float64 `json:"hlaMatchScore"`
	TissueQualityScore    float64 `json:"tissueQualityScore"`
	RecipientUrgencyScore float64 `json:"recipientUrgencyScore"`
}

func (s ScoreBreakdown) Total() float64 {
	return s.BloodMatchScore + s.VisionScore + s.HLAMatchScore + s.TissueQualityScore + s.RecipientUrgencyScore
}

type Evaluation struct {
	Verdict     Verdict         `json:"verdict"`
	Compatible  bool            `json:"compatible"`
	Scores      *ScoreBreakdown `json:"scores,omitempty"`
	TotalScore  float64         `json:"totalScore"`
	SuccessRate float64         `json:"successRate"`
}

// Tier buckets a ranking percentage so callers choosing among
// suggestions do not over-fit to score decimals.
type Tier string

const (
	TierHigh     Tier = "High"
	TierModerate Tier = "Moderate"
	TierLow      Tier = "Low"
)

// RankedPair is a single donor-recipient pairing scored by the ranker.
// The raw percentage is only surfaced in single-pair predict mode.
type RankedPair struct {
	DonorID          string  `json:"donorId"`
	DonorName        string  `json:"donorName"`
	RecipientID      string  `json:"recipientId"`
	RecipientName    string  `json:"recipientName"`
	Percentage       float64 `json:"percentage"`
	Tier             Tier    `json:"tier"`
	BloodMatch       bool    `json:"bloodMatch"`
	VisionCompatible bool    `json:"visionCompatible"`
}

// Suggestion is the shortlist entry exposed to callers: the tier and the
// two compatibility flags, never the numeric percentage.
type Suggestion struct {
	DonorID          string `json:"donorId"`
	DonorName        string `json:"donorName"`
	RecipientID      string `json:"recipientId"`
	RecipientName    string `json:"recipientName"`
	Tier             Tier   `json:"tier"`
	BloodMatch       bool   `json:"bloodMatch"`
	VisionCompatible bool   `json:"visionCompatible"`
}

// Detection is the tagged result of a perfect-match scan. The detector
// never commits on its own; callers decide whether to act on a found
// candidate (or the service commits it when auto-commit is enabled).
type Detection struct {
	Found           bool                `json:"found"`
	DonorID         string              `json:"donorId,omitempty"`
	RecipientID     string              `json:"recipientId,omitempty"`
	CounterpartName string              `json:"counterpartName,omitempty"`
	Committed       bool                `json:"committed"`
	Result          *models.MatchResult `json:"result,omitempty"`
}
