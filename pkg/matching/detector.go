package matching

import (
	"github.com/ocumatch/platform/pkg/common/models"
)

// Detector scans the opposite-type unmatched population for a
// counterpart meeting the strict compatibility bar: blood group
// equality, vision ordering appropriate to the subject's role, and an
// HLA composite of at least the policy bar on both sides. It returns a
// tagged Detection and never mutates state itself.
type Detector struct {
	policy Policy
}

func NewDetector(policy Policy) *Detector {
	return &Detector{policy: policy}
}

// DetectForDonor finds the first unmatched recipient, in population
// order, that the given donor perfectly matches.
func (d *Detector) DetectForDonor(donor models.DonorRecord, recipients []models.RecipientRecord) Detection {
	if donor.Matched() {
		return Detection{}
	}
	for _, recipient := range recipients {
		if d.perfect(donor, recipient) {
			return Detection{
				Found:           true,
				DonorID:         donor.ID,
				RecipientID:     recipient.ID,
				CounterpartName: recipient.Name,
			}
		}
	}
	return Detection{}
}

// DetectForRecipient is the symmetric scan triggered from the recipient
// side; the compatibility test is identical.
func (d *Detector) DetectForRecipient(recipient models.RecipientRecord, donors []models.DonorRecord) Detection {
	if recipient.Matched() {
		return Detection{}
	}
	for _, donor := range donors {
		if d.perfect(donor, recipient) {
			return Detection{
				Found:           true,
				DonorID:         donor.ID,
				RecipientID:     recipient.ID,
				CounterpartName: donor.Name,
			}
		}
	}
	return Detection{}
}

func (d *Detector) perfect(donor models.DonorRecord, recipient models.RecipientRecord) bool {
	if donor.Matched() || recipient.Matched() {
		return false
	}
	if donor.BloodGroup != recipient.BloodGroup {
		return false
	}
	if donor.VisionScore < recipient.VisionScore {
		return false
	}
	return donor.HLAMatchScore >= d.policy.PerfectMatchHLABar &&
		recipient.HLAMatchScore >= d.policy.PerfectMatchHLABar
}

// CandidateDonors lists unmatched donors passing the loose prefilter
// used for manual match offers: blood-group equality and an HLA
// composite of at least minHLA (policy default when zero).
func (d *Detector) CandidateDonors(bloodGroup models.BloodGroup, minHLA float64, donors []models.DonorRecord) []models.DonorRecord {
	minHLA = d.candidateBar(minHLA)
	var out []models.DonorRecord
	for _, donor := range donors {
		if !donor.Matched() && donor.BloodGroup == bloodGroup && donor.HLAMatchScore >= minHLA {
			out = append(out, donor)
		}
	}
	return out
}

// CandidateRecipients is the recipient-side prefilter with the same
// criteria.
func (d *Detector) CandidateRecipients(bloodGroup models.BloodGroup, minHLA float64, recipients []models.RecipientRecord) []models.RecipientRecord {
	minHLA = d.candidateBar(minHLA)
	var out []models.RecipientRecord
	for _, recipient := range recipients {
		if !recipient.Matched() && recipient.BloodGroup == bloodGroup && recipient.HLAMatchScore >= minHLA {
			out = append(out, recipient)
		}
	}
	return out
}

func (d *Detector) candidateBar(minHLA float64) float64 {
	if minHLA <= 0 {
		return d.policy.CandidateMinHLA
	}
	return minHLA
}
