package matching

import (
	"math"

	"github.com/ocumatch/platform/pkg/common/models"
)

// Evaluator applies the three-stage compatibility check to a single
// donor-recipient pair: two hard gates followed by a weighted-sum
// threshold over the recipient's five composites. Evaluation is
// read-only and idempotent.
type Evaluator struct {
	policy Policy
}

func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: policy}
}

func (e *Evaluator) Evaluate(donor models.DonorRecord, recipient models.RecipientRecord) Evaluation {
	// Stage 1: blood-group gate.
	if donor.BloodGroup != recipient.BloodGroup {
		return Evaluation{Verdict: VerdictIncompatibleBloodGroup}
	}

	// Stage 2: vision-ordering gate. Strictly greater; equal scores fail.
	if donor.VisionScore <= recipient.VisionScore {
		return Evaluation{Verdict: VerdictIncompatibleVisionScore}
	}

	// Stage 3: weighted sum over the recipient's five composites only;
	// the donor contributed through the gates already passed.
	scores := ScoreBreakdown{
		BloodMatchScore:       recipient.BloodMatchScore,
		VisionScore:           recipient.VisionScore,
		HLAMatchScore:         recipient.HLAMatchScore,
		TissueQualityScore:    recipient.TissueQualityScore,
		RecipientUrgencyScore: recipient.RecipientUrgencyScore,
	}
	total := scores.Total()
	rate := math.Round(total/e.policy.MaxTotalScore*100*10) / 10

	verdict := VerdictCompatible
	if total < e.policy.CompatibilityThreshold {
		verdict = VerdictIncompatibleBelowThreshold
	}

	return Evaluation{
		Verdict:     verdict,
		Compatible:  verdict == VerdictCompatible,
		Scores:      &scores,
		TotalScore:  total,
		SuccessRate: rate,
	}
}
