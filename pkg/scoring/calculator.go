package scoring

import (
	"math"

	"github.com/ocumatch/platform/pkg/common/models"
)

// Weighting constants for the donor composite scores. The HLA ceiling is
// the maximum achievable weighted sum given each sub-factor's allowed
// range: (2.0*0.3) + (2.5*0.3) + (1.5*0.2) + (1.2*0.1) + (1.0*0.1) = 1.87.
const (
	clarityWeight = 0.6
	opacityWeight = 0.4

	tissueQualityWeight = 0.8
	storageDaysWeight   = 0.002

	hlaAWeight  = 0.3
	hlaBWeight  = 0.3
	hlaCWeight  = 0.2
	hlaDRWeight = 0.1
	hlaDQWeight = 0.1

	hlaMaxWeightedSum = 1.87
)

// VisionScore derives the 0-10 vision composite from corneal clarity and
// opacity measurements, rounded to one decimal.
func VisionScore(clarity, opacity float64) float64 {
	return round1(clarityWeight*clarity + opacityWeight*opacity)
}

// TissueQualityScore derives the 0-10 tissue composite. Storage days are
// inversely weighted; the 0.002 constant caps the storage contribution at
// 0.2 raw units (2 points after scaling).
func TissueQualityScore(tissueQuality, storageDays float64) float64 {
	raw := tissueQuality*tissueQualityWeight + (100-storageDays)*storageDaysWeight
	return round1(raw * 10)
}

// HLAMatchScore derives the 0-10 HLA composite by ceiling-normalising the
// weighted sub-factor sum against the maximum achievable value.
func HLAMatchScore(a, b, c, dr, dq float64) float64 {
	weighted := a*hlaAWeight + b*hlaBWeight + c*hlaCWeight + dr*hlaDRWeight + dq*hlaDQWeight
	return round1(weighted / hlaMaxWeightedSum * 10)
}

// Composites holds the derived donor scores plus flags marking which
// composites could not be computed. A zero composite with its Incomplete
// flag set means missing inputs, not a clinical zero.
type Composites struct {
	Vision        float64
	HLA           float64
	TissueQuality float64

	VisionIncomplete        bool
	HLAIncomplete           bool
	TissueQualityIncomplete bool
}

// DonorComposites computes all three donor composites from an intake
// request. Any missing sub-factor yields a composite of 0 with the
// matching Incomplete flag set; it never returns an error.
func DonorComposites(in models.DonorIntake) Composites {
	var c Composites

	if in.ClarityScore != nil && in.OpacityScore != nil {
		c.Vision = VisionScore(*in.ClarityScore, *in.OpacityScore)
	} else {
		c.VisionIncomplete = true
	}

	if in.HLAA != nil && in.HLAB != nil && in.HLAC != nil && in.HLADR != nil && in.HLADQ != nil {
		c.HLA = HLAMatchScore(*in.HLAA, *in.HLAB, *in.HLAC, *in.HLADR, *in.HLADQ)
	} else {
		c.HLAIncomplete = true
	}

	if in.TissueQuality != nil && in.StorageDays != nil {
		c.TissueQuality = TissueQualityScore(*in.TissueQuality, *in.StorageDays)
	} else {
		c.TissueQualityIncomplete = true
	}

	return c
}

func (c Composites) Incomplete() bool {
	return c.VisionIncomplete || c.HLAIncomplete || c.TissueQualityIncomplete
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
