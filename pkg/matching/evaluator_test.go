package matching

import (
	"testing"

	"github.com/ocumatch/platform/pkg/common/models"
)

func TestEvaluatorBloodGroupGate(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicy())
	d := donor("d1", models.BloodAPositive, 9, 8)
	r := recipient("r1", models.BloodBPositive, 5, 8, 5)

	result := evaluator.Evaluate(d, r)
	if result.Verdict != VerdictIncompatibleBloodGroup {
		t.Fatalf("expected blood group verdict, got %s", result.Verdict)
	}
	if result.SuccessRate != 0 || result.Compatible {
		t.Fatalf("expected zero success rate for failed gate, got %v", result.SuccessRate)
	}
	if result.Scores != nil {
		t.Fatal("expected no score breakdown after a failed gate")
	}
}

func TestEvaluatorVisionGateIsStrict(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicy())
	d := donor("d1", models.BloodAPositive, 8, 8)
	r := recipient("r1", models.BloodAPositive, 8, 8, 5)

	// Equal vision scores must fail the strict gate.
	result := evaluator.Evaluate(d, r)
	if result.Verdict != VerdictIncompatibleVisionScore {
		t.Fatalf("expected vision score verdict for equal scores, got %s", result.Verdict)
	}
	if result.SuccessRate != 0 {
		t.Fatalf("expected zero success rate, got %v", result.SuccessRate)
	}
}

func TestEvaluatorWeightedSum(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicy())
	d := donor("d1", models.BloodAPositive, 9, 8)
	r := models.RecipientRecord{
		ID:                    "r1",
		BloodGroup:            models.BloodAPositive,
		BloodMatchScore:       8,
		VisionScore:           7,
		HLAMatchScore:         8,
		TissueQualityScore:    7,
		RecipientUrgencyScore: 5,
		Status:                models.StatusWaiting,
	}

	result := evaluator.Evaluate(d, r)
	if result.TotalScore != 35 {
		t.Fatalf("expected total score 35, got %v", result.TotalScore)
	}
	if result.SuccessRate != 70.0 {
		t.Fatalf("expected success rate 70.0, got %v", result.SuccessRate)
	}
	if result.Verdict != VerdictCompatible || !result.Compatible {
		t.Fatalf("expected compatible verdict, got %s", result.Verdict)
	}
	if result.Scores == nil || result.Scores.Total() != 35 {
		t.Fatal("expected per-factor breakdown summing to 35")
	}
}

func TestEvaluatorBelowThreshold(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicy())
	d := donor("d1", models.BloodAPositive, 9, 8)
	r := models.RecipientRecord{
		ID:                    "r1",
		BloodGroup:            models.BloodAPositive,
		BloodMatchScore:       4,
		VisionScore:           5,
		HLAMatchScore:         4,
		TissueQualityScore:    3,
		RecipientUrgencyScore: 4,
		Status:                models.StatusWaiting,
	}

	result := evaluator.Evaluate(d, r)
	if result.Verdict != VerdictIncompatibleBelowThreshold {
		t.Fatalf("expected below-threshold verdict, got %s", result.Verdict)
	}
	if result.TotalScore != 20 || result.SuccessRate != 40.0 {
		t.Fatalf("expected 20/50 and 40.0%%, got %v and %v", result.TotalScore, result.SuccessRate)
	}
	if result.Compatible {
		t.Fatal("below-threshold result must not be compatible")
	}
}

func TestEvaluatorThresholdBoundary(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicy())
	d := donor("d1", models.BloodAPositive, 9, 8)
	r := models.RecipientRecord{
		ID:                    "r1",
		BloodGroup:            models.BloodAPositive,
		BloodMatchScore:       5,
		VisionScore:           5,
		HLAMatchScore:         5,
		TissueQualityScore:    5,
		RecipientUrgencyScore: 5,
		Status:                models.StatusWaiting,
	}

	// Exactly 25 of 50 is compatible.
	result := evaluator.Evaluate(d, r)
	if result.Verdict != VerdictCompatible {
		t.Fatalf("expected compatible at the 25-point boundary, got %s", result.Verdict)
	}
	if result.SuccessRate != 50.0 {
		t.Fatalf("expected success rate 50.0, got %v", result.SuccessRate)
	}
}

func TestEvaluatorIdempotent(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicy())
	d := donor("d1", models.BloodOPositive, 9, 8)
	r := recipient("r1", models.BloodOPositive, 6, 8, 7)

	first := evaluator.Evaluate(d, r)
	second := evaluator.Evaluate(d, r)
	if first.Verdict != second.Verdict || first.TotalScore != second.TotalScore || first.SuccessRate != second.SuccessRate {
		t.Fatalf("evaluation is not idempotent: %+v vs %+v", first, second)
	}
}
