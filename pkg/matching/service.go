package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/ocumatch/platform/pkg/common/kafka"
	"github.com/ocumatch/platform/pkg/common/logger"
	"github.com/ocumatch/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// Service orchestrates the engine components over an injected Store.
// Reads run against whatever snapshot the store returns; only Commit
// mutates state.
type Service struct {
	store      Store
	evaluator  *Evaluator
	ranker     *Ranker
	detector   *Detector
	committer  *Committer
	cache      suggestionCache
	producer   *kafka.Producer
	dlq        *kafka.Producer
	autoCommit bool
}

func NewService(store Store, policy Policy, cache *redis.Client, cacheTTL time.Duration, producer, dlq *kafka.Producer, autoCommit bool) *Service {
	s := &Service{
		store:      store,
		evaluator:  NewEvaluator(policy),
		ranker:     NewRanker(policy),
		detector:   NewDetector(policy),
		committer:  NewCommitter(store),
		producer:   producer,
		dlq:        dlq,
		autoCommit: autoCommit,
	}
	if cache != nil {
		s.cache = &redisSuggestionCache{client: cache, ttl: cacheTTL}
	}
	return s
}

// Evaluate runs the three-stage gate check on one pair. Incompatibility
// is a normal result, never an error.
func (s *Service) Evaluate(ctx context.Context, donorID, recipientID string) (*Evaluation, error) {
	donor, err := s.store.Donor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.store.Recipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	evaluation := s.evaluator.Evaluate(*donor, *recipient)
	return &evaluation, nil
}

// Predict scores one pair with the ranker's percentage heuristic; the
// raw percentage is exposed here and only here.
func (s *Service) Predict(ctx context.Context, donorID, recipientID string) (*RankedPair, error) {
	donor, err := s.store.Donor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.store.Recipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	pair, ok := s.ranker.Predict(*donor, *recipient)
	if !ok {
		// Excluded pairs carry a zero percentage and Low tier.
		pair = RankedPair{
			DonorID:       donor.ID,
			DonorName:     donor.Name,
			RecipientID:   recipient.ID,
			RecipientName: recipient.Name,
			Tier:          TierLow,
		}
	}
	return &pair, nil
}

// Suggest returns the High-tier shortlist, cached for a short TTL so
// repeated dashboard loads do not rescan the populations.
func (s *Service) Suggest(ctx context.Context) ([]Suggestion, error) {
	if s.cache != nil {
		if cached := s.cache.get(ctx); cached != nil {
			return cached, nil
		}
	}

	donors, err := s.store.Donors(ctx)
	if err != nil {
		return nil, err
	}
	recipients, err := s.store.Recipients(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := s.ranker.Suggest(donors, recipients)
	if s.cache != nil {
		s.cache.put(ctx, suggestions)
	}
	return suggestions, nil
}

// Detect runs the perfect-match scan for one subject. The scan itself is
// side-effect free; the found candidate is only committed when the
// service was configured for auto-commit, and a lost commit race
// surfaces as a clean ErrAlreadyMatched.
func (s *Service) Detect(ctx context.Context, subjectType, subjectID string) (*Detection, error) {
	var detection Detection

	switch subjectType {
	case "donor":
		donor, err := s.store.Donor(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		recipients, err := s.store.Recipients(ctx)
		if err != nil {
			return nil, err
		}
		detection = s.detector.DetectForDonor(*donor, recipients)
	case "recipient":
		recipient, err := s.store.Recipient(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		donors, err := s.store.Donors(ctx)
		if err != nil {
			return nil, err
		}
		detection = s.detector.DetectForRecipient(*recipient, donors)
	default:
		return nil, fmt.Errorf("unknown subject type %q", subjectType)
	}

	if detection.Found && s.autoCommit {
		result, err := s.Commit(ctx, detection.DonorID, detection.RecipientID)
		if err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"donor_id":     detection.DonorID,
				"recipient_id": detection.RecipientID,
			}).Warn("perfect-match auto-commit failed")
			return &detection, nil
		}
		detection.Committed = true
		detection.Result = result
	}

	return &detection, nil
}

// CandidateSet lists the opposite-type unmatched records passing the
// manual-offer prefilter for one subject.
type CandidateSet struct {
	Donors     []models.DonorRecord     `json:"donors,omitempty"`
	Recipients []models.RecipientRecord `json:"recipients,omitempty"`
}

// Candidates applies the loose prefilter (blood-group equality, minimum
// HLA composite) used when offering manual matches for a subject.
func (s *Service) Candidates(ctx context.Context, subjectType, subjectID string, minHLA float64) (*CandidateSet, error) {
	switch subjectType {
	case "donor":
		donor, err := s.store.Donor(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		recipients, err := s.store.Recipients(ctx)
		if err != nil {
			return nil, err
		}
		matched := s.detector.CandidateRecipients(donor.BloodGroup, minHLA, recipients)
		return &CandidateSet{Recipients: matched}, nil
	case "recipient":
		recipient, err := s.store.Recipient(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		donors, err := s.store.Donors(ctx)
		if err != nil {
			return nil, err
		}
		matched := s.detector.CandidateDonors(recipient.BloodGroup, minHLA, donors)
		return &CandidateSet{Donors: matched}, nil
	default:
		return nil, fmt.Errorf("unknown subject type %q", subjectType)
	}
}

// Commit finalises a match and publishes the committed event. The
// suggestion cache is invalidated so the matched pair is never
// re-offered.
func (s *Service) Commit(ctx context.Context, donorID, recipientID string) (*models.MatchResult, error) {
	result, err := s.committer.Commit(ctx, donorID, recipientID)
	if err != nil {
		return nil, err
	}

	s.InvalidateSuggestions(ctx)
	s.publishCommitted(ctx, result)
	return result, nil
}

// InvalidateSuggestions drops the cached shortlist. Besides the local
// Commit path, this runs when a match.committed event arrives from the
// registry: a commit posted to the registry directly never passes
// through Commit here, and without the event the matched pair would
// stay on the shortlist until the TTL expires.
func (s *Service) InvalidateSuggestions(ctx context.Context) {
	if s.cache != nil {
		s.cache.drop(ctx)
	}
}

func (s *Service) publishCommitted(ctx context.Context, result *models.MatchResult) {
	if s.producer == nil {
		return
	}
	payload := map[string]interface{}{
		"donor_id":     result.Donor.ID,
		"recipient_id": result.Recipient.ID,
		"matched_at":   result.MatchedAt,
	}
	if err := s.producer.PublishEvent(ctx, "match.committed", "matching-service", payload); err != nil {
		logger.Log.WithError(err).Error("failed to publish match event")
		if s.dlq != nil {
			_ = s.dlq.PublishEvent(ctx, "match.committed", "matching-service", payload)
		}
	}
}

