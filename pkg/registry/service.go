package registry

import (
	"context"

	"github.com/ocumatch/platform/pkg/common/kafka"
	"github.com/ocumatch/platform/pkg/common/logger"
	"github.com/ocumatch/platform/pkg/common/models"
	"github.com/ocumatch/platform/pkg/scoring"
)

// Service handles intake, lookup and the commit entry point of the
// record store. Composite scores are derived exactly once, here, at
// registration time.
type Service struct {
	repo     *Repository
	producer *kafka.Producer
	dlq      *kafka.Producer
}

func NewService(repo *Repository, producer, dlq *kafka.Producer) *Service {
	return &Service{repo: repo, producer: producer, dlq: dlq}
}

func (s *Service) RegisterDonor(ctx context.Context, in models.DonorIntake) (*models.DonorRecord, error) {
	if err := ValidateDonorIntake(in); err != nil {
		return nil, err
	}

	composites := scoring.DonorComposites(in)
	if composites.Incomplete() {
		// A zero composite means incomplete inputs, not a clinical zero;
		// the record is still stored so the missing factors can be
		// supplied later.
		logger.Log.WithFields(map[string]interface{}{
			"donor_name":     in.Name,
			"vision":         composites.VisionIncomplete,
			"hla":            composites.HLAIncomplete,
			"tissue_quality": composites.TissueQualityIncomplete,
		}).Warn("donor intake has incomplete clinical inputs")
	}

	record := &models.DonorRecord{
		Name:               in.Name,
		Age:                in.Age,
		Gender:             in.Gender,
		Contact:            in.Contact,
		Address:            in.Address,
		BloodGroup:         models.BloodGroup(in.BloodGroup),
		VisionScore:        composites.Vision,
		HLAMatchScore:      composites.HLA,
		TissueQualityScore: composites.TissueQuality,
	}
	if err := s.repo.CreateDonor(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, "donor.registered", map[string]interface{}{
		"donor_id":    record.ID,
		"blood_group": record.BloodGroup,
	})
	return record, nil
}

func (s *Service) RegisterRecipient(ctx context.Context, in models.RecipientIntake) (*models.RecipientRecord, error) {
	if err := ValidateRecipientIntake(in); err != nil {
		return nil, err
	}

	record := &models.RecipientRecord{
		Name:                  in.Name,
		Age:                   in.Age,
		Gender:                in.Gender,
		Contact:               in.Contact,
		Address:               in.Address,
		BloodGroup:            models.BloodGroup(in.BloodGroup),
		VisionScore:           deref(in.VisionScore),
		BloodMatchScore:       deref(in.BloodMatchScore),
		HLAMatchScore:         deref(in.HLAMatchScore),
		TissueQualityScore:    deref(in.TissueQualityScore),
		RecipientUrgencyScore: deref(in.RecipientUrgencyScore),
	}
	if err := s.repo.CreateRecipient(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, "recipient.registered", map[string]interface{}{
		"recipient_id": record.ID,
		"blood_group":  record.BloodGroup,
	})
	return record, nil
}

func (s *Service) GetDonor(ctx context.Context, id string) (*models.DonorRecord, error) {
	return s.repo.GetDonor(ctx, id)
}

func (s *Service) GetRecipient(ctx context.Context, id string) (*models.RecipientRecord, error) {
	return s.repo.GetRecipient(ctx, id)
}

func (s *Service) ListDonors(ctx context.Context, status string) ([]models.DonorRecord, error) {
	return s.repo.ListDonors(ctx, status)
}

func (s *Service) ListRecipients(ctx context.Context, status string) ([]models.RecipientRecord, error) {
	return s.repo.ListRecipients(ctx, status)
}

// CommitMatch applies the two-record transition and announces it. The
// event lets downstream consumers react to commits that never passed
// through their own commit paths.
func (s *Service) CommitMatch(ctx context.Context, donorID, recipientID string) (*models.MatchResult, error) {
	result, err := s.repo.CommitMatch(ctx, donorID, recipientID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "match.committed", map[string]interface{}{
		"donor_id":     result.Donor.ID,
		"recipient_id": result.Recipient.ID,
	})
	return result, nil
}

func (s *Service) ListMatches(ctx context.Context, limit int) ([]models.MatchResult, error) {
	return s.repo.ListMatchAudits(ctx, limit)
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishEvent(ctx, eventType, "registry-service", data); err != nil {
		logger.Log.WithError(err).Error("failed to publish registry event")
		if s.dlq != nil {
			_ = s.dlq.PublishEvent(ctx, eventType, "registry-service", data)
		}
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
