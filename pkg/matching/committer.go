package matching

import (
	"context"
	"fmt"

	"github.com/ocumatch/platform/pkg/common/models"
)

// Committer finalises a match: it validates the preconditions and
// delegates the atomic two-record transition to the store. The store's
// compare-and-swap on status is the authority; a pair that raced past
// the precondition check still fails there with ErrAlreadyMatched.
type Committer struct {
	store Store
}

func NewCommitter(store Store) *Committer {
	return &Committer{store: store}
}

func (c *Committer) Commit(ctx context.Context, donorID, recipientID string) (*models.MatchResult, error) {
	if donorID == "" || recipientID == "" {
		return nil, fmt.Errorf("donor and recipient ids are required")
	}

	donor, err := c.store.Donor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	recipient, err := c.store.Recipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	if donor.Matched() {
		return nil, fmt.Errorf("donor %s: %w", donorID, ErrAlreadyMatched)
	}
	if recipient.Matched() {
		return nil, fmt.Errorf("recipient %s: %w", recipientID, ErrAlreadyMatched)
	}

	return c.store.CommitMatch(ctx, donorID, recipientID)
}
