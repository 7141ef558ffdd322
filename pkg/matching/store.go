package matching

import (
	"context"
	"errors"

	"github.com/ocumatch/platform/pkg/common/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadyMatched   = errors.New("record already matched")
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// Store is the donor/recipient record collaborator the engine runs
// against. Reads may be served from a point-in-time snapshot; a record
// transitioning to Matched mid-scan is rejected at commit time, not
// before. CommitMatch must apply the two-record transition atomically
// and fail with ErrAlreadyMatched if either side is no longer unmatched.
type Store interface {
	Donors(ctx context.Context) ([]models.DonorRecord, error)
	Donor(ctx context.Context, id string) (*models.DonorRecord, error)
	Recipients(ctx context.Context) ([]models.RecipientRecord, error)
	Recipient(ctx context.Context, id string) (*models.RecipientRecord, error)
	CommitMatch(ctx context.Context, donorID, recipientID string) (*models.MatchResult, error)
}
