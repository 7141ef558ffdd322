package matching

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ocumatch/platform/pkg/common/models"
)

func TestCommitterCommitsBothRecords(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	committer := NewCommitter(store)

	result, err := committer.Commit(context.Background(), "d1", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Donor.Status != models.StatusMatched || result.Recipient.Status != models.StatusMatched {
		t.Fatal("both records must transition to Matched")
	}
	if result.Donor.MatchedWith != "Recipient r1" || result.Recipient.MatchedWith != "Donor d1" {
		t.Fatalf("counterpart names not cross-linked: %q / %q", result.Donor.MatchedWith, result.Recipient.MatchedWith)
	}
	if !strings.HasPrefix(result.Donor.MatchMessage, "Matched with Recipient r1 on ") {
		t.Fatalf("unexpected match message %q", result.Donor.MatchMessage)
	}
	if result.Donor.MatchDate == nil || result.Recipient.MatchDate == nil {
		t.Fatal("match date must be stamped on both records")
	}
}

func TestCommitterRequiresIDs(t *testing.T) {
	committer := NewCommitter(newMemStore(nil, nil))
	if _, err := committer.Commit(context.Background(), "", "r1"); err == nil {
		t.Fatal("expected an error for a missing donor id")
	}
	if _, err := committer.Commit(context.Background(), "d1", ""); err == nil {
		t.Fatal("expected an error for a missing recipient id")
	}
}

func TestCommitterUnknownRecords(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		nil,
	)
	committer := NewCommitter(store)

	if _, err := committer.Commit(context.Background(), "missing", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown donor, got %v", err)
	}
	if _, err := committer.Commit(context.Background(), "d1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown recipient, got %v", err)
	}
}

func TestCommitterRejectsMatchedParty(t *testing.T) {
	d := donor("d1", models.BloodAPositive, 9, 9)
	d.Status = models.StatusMatched
	store := newMemStore(
		[]models.DonorRecord{d},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	committer := NewCommitter(store)

	_, err := committer.Commit(context.Background(), "d1", "r1")
	if !errors.Is(err, ErrAlreadyMatched) {
		t.Fatalf("expected ErrAlreadyMatched, got %v", err)
	}
	// The untouched side must stay exactly as it was.
	r, _ := store.Recipient(context.Background(), "r1")
	if r.Status != models.StatusWaiting || r.MatchedWith != "" {
		t.Fatal("failed commit must not touch the other record")
	}
}

func TestCommitterConcurrentCommitsOneWinner(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{
			recipient("r1", models.BloodAPositive, 5, 9, 5),
			recipient("r2", models.BloodAPositive, 5, 9, 5),
		},
	)
	committer := NewCommitter(store)

	// Two racing commits claim the same donor for different recipients.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, recipientID := range []string{"r1", "r2"} {
		go func(i int, recipientID string) {
			defer wg.Done()
			_, errs[i] = committer.Commit(context.Background(), "d1", recipientID)
		}(i, recipientID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyMatched):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected exactly one winner and one ErrAlreadyMatched, got %d/%d", won, lost)
	}

	// Exactly one recipient ends up matched, consistently with the donor.
	d, _ := store.Donor(context.Background(), "d1")
	if d.Status != models.StatusMatched {
		t.Fatal("donor must be matched after the race")
	}
	recipients, _ := store.Recipients(context.Background())
	var matched int
	for _, r := range recipients {
		if r.Status == models.StatusMatched {
			matched++
			if r.MatchedWith != d.Name || d.MatchedWith != r.Name {
				t.Fatalf("inconsistent cross-links: donor=%q recipient=%q", d.MatchedWith, r.MatchedWith)
			}
		}
	}
	if matched != 1 {
		t.Fatalf("expected exactly one matched recipient, got %d", matched)
	}
}
