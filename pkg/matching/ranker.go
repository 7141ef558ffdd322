package matching

import (
	"math"
	"sort"

	"github.com/ocumatch/platform/pkg/common/models"
)

// Ranker scores every unmatched donor-recipient pairing with the
// percentage heuristic. Its vision rule is deliberately non-strict (>=)
// where the single-pair Evaluator is strict (>); the two are distinct,
// separately maintained algorithms.
type Ranker struct {
	policy Policy
}

func NewRanker(policy Policy) *Ranker {
	return &Ranker{policy: policy}
}

// Rank enumerates all pairs, drops records already matched, scores the
// rest and returns the emitted pairs sorted by percentage descending.
// Ties keep population order.
func (r *Ranker) Rank(donors []models.DonorRecord, recipients []models.RecipientRecord) []RankedPair {
	pairs := make([]RankedPair, 0, len(donors)*len(recipients))
	for _, donor := range donors {
		if donor.Matched() {
			continue
		}
		for _, recipient := range recipients {
			if recipient.Matched() {
				continue
			}
			if pair, ok := r.score(donor, recipient); ok {
				pairs = append(pairs, pair)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Percentage > pairs[j].Percentage
	})
	return pairs
}

// Suggest retains only High-tier pairs and takes the top of the ranking.
// The raw percentage is withheld; callers see the tier and the two
// compatibility flags.
func (r *Ranker) Suggest(donors []models.DonorRecord, recipients []models.RecipientRecord) []Suggestion {
	ranked := r.Rank(donors, recipients)
	suggestions := make([]Suggestion, 0, r.policy.ShortlistSize)
	for _, pair := range ranked {
		if pair.Tier != TierHigh {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			DonorID:          pair.DonorID,
			DonorName:        pair.DonorName,
			RecipientID:      pair.RecipientID,
			RecipientName:    pair.RecipientName,
			Tier:             pair.Tier,
			BloodMatch:       pair.BloodMatch,
			VisionCompatible: pair.VisionCompatible,
		})
		if len(suggestions) == r.policy.ShortlistSize {
			break
		}
	}
	return suggestions
}

// Predict scores a single pair, exposing the raw percentage. The second
// return reports whether the pair would be emitted by the ranking at all.
func (r *Ranker) Predict(donor models.DonorRecord, recipient models.RecipientRecord) (RankedPair, bool) {
	if donor.Matched() || recipient.Matched() {
		return RankedPair{}, false
	}
	return r.score(donor, recipient)
}

func (r *Ranker) score(donor models.DonorRecord, recipient models.RecipientRecord) (RankedPair, bool) {
	bloodMatch := donor.BloodGroup == recipient.BloodGroup
	visionCompatible := donor.VisionScore >= recipient.VisionScore

	var pct float64
	switch {
	case bloodMatch && visionCompatible:
		visionBonus := math.Min(r.policy.VisionBonusCap, r.policy.VisionBonusFactor*(donor.VisionScore-recipient.VisionScore))
		urgencyBonus := math.Min(r.policy.UrgencyBonusCap, recipient.RecipientUrgencyScore/r.policy.UrgencyDivisor)
		pct = r.policy.BasePercentage + visionBonus + urgencyBonus
	case bloodMatch:
		pct = r.policy.BloodOnlyPct
	default:
		return RankedPair{}, false
	}

	return RankedPair{
		DonorID:          donor.ID,
		DonorName:        donor.Name,
		RecipientID:      recipient.ID,
		RecipientName:    recipient.Name,
		Percentage:       pct,
		Tier:             r.tier(pct),
		BloodMatch:       bloodMatch,
		VisionCompatible: visionCompatible,
	}, true
}

func (r *Ranker) tier(pct float64) Tier {
	switch {
	case pct >= r.policy.HighTierFloor:
		return TierHigh
	case pct >= r.policy.ModerateTierFloor:
		return TierModerate
	default:
		return TierLow
	}
}
