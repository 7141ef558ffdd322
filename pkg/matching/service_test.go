package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/ocumatch/platform/pkg/common/models"
)

func newTestService(store Store, autoCommit bool) *Service {
	return NewService(store, DefaultPolicy(), nil, 0, nil, nil, autoCommit)
}

func TestServiceEvaluate(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	svc := newTestService(store, false)

	evaluation, err := svc.Evaluate(context.Background(), "d1", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !evaluation.Compatible {
		t.Fatalf("expected a compatible pair, got verdict %s", evaluation.Verdict)
	}

	if _, err := svc.Evaluate(context.Background(), "missing", "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServicePredictExcludedPair(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{recipient("r1", models.BloodBPositive, 5, 9, 5)},
	)
	svc := newTestService(store, false)

	pair, err := svc.Predict(context.Background(), "d1", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.Percentage != 0 || pair.Tier != TierLow {
		t.Fatalf("excluded pair must come back zeroed, got %.1f %s", pair.Percentage, pair.Tier)
	}
	if pair.DonorID != "d1" || pair.RecipientID != "r1" {
		t.Fatal("excluded pair must still identify both parties")
	}
}

func TestServiceSuggestWithoutCache(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{
			recipient("r1", models.BloodAPositive, 5, 9, 5),
			recipient("r2", models.BloodBPositive, 5, 9, 5),
		},
	)
	svc := newTestService(store, false)

	suggestions, err := svc.Suggest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected one suggestion, got %d", len(suggestions))
	}
	if suggestions[0].RecipientID != "r1" {
		t.Fatalf("expected r1 in the shortlist, got %s", suggestions[0].RecipientID)
	}
}

func TestServiceDetectWithoutAutoCommit(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	svc := newTestService(store, false)

	detection, err := svc.Detect(context.Background(), "donor", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detection.Found || detection.Committed {
		t.Fatalf("expected a found, uncommitted detection, got %+v", detection)
	}

	// Nothing was mutated by the scan.
	d, _ := store.Donor(context.Background(), "d1")
	if d.Status != models.StatusActive {
		t.Fatal("detection must not mutate the store")
	}
}

func TestServiceDetectAutoCommit(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	svc := newTestService(store, true)

	detection, err := svc.Detect(context.Background(), "donor", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detection.Found || !detection.Committed {
		t.Fatalf("expected a committed detection, got %+v", detection)
	}
	if detection.Result == nil || detection.Result.Donor.Status != models.StatusMatched {
		t.Fatal("auto-commit must carry the commit result")
	}
}

func TestServiceDetectAutoCommitLostRace(t *testing.T) {
	// The candidate is already matched by the time the commit runs; the
	// detection is still reported and no error escapes.
	r := recipient("r1", models.BloodAPositive, 5, 9, 5)
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{r},
	)
	svc := newTestService(&racingStore{Store: store}, true)

	detection, err := svc.Detect(context.Background(), "donor", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detection.Found || detection.Committed {
		t.Fatalf("expected a found, uncommitted detection after a lost race, got %+v", detection)
	}
}

// racingStore fails every commit as if another committer won first.
type racingStore struct {
	Store
}

func (s *racingStore) CommitMatch(ctx context.Context, donorID, recipientID string) (*models.MatchResult, error) {
	return nil, ErrAlreadyMatched
}

func TestServiceDetectUnknownSubjectType(t *testing.T) {
	svc := newTestService(newMemStore(nil, nil), false)
	if _, err := svc.Detect(context.Background(), "organ", "x"); err == nil {
		t.Fatal("expected an error for an unknown subject type")
	}
}

func TestServiceCandidates(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{
			donor("d1", models.BloodAPositive, 9, 7),
			donor("d2", models.BloodAPositive, 9, 5), // below default min HLA
			donor("d3", models.BloodOPositive, 9, 9), // wrong blood group
		},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	svc := newTestService(store, false)

	set, err := svc.Candidates(context.Background(), "recipient", "r1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Donors) != 1 || set.Donors[0].ID != "d1" {
		t.Fatalf("expected only d1 as a candidate, got %v", set.Donors)
	}
	if len(set.Recipients) != 0 {
		t.Fatal("recipient subjects must only receive donor candidates")
	}

	set, err = svc.Candidates(context.Background(), "donor", "d1", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Recipients) != 1 || set.Recipients[0].ID != "r1" {
		t.Fatalf("expected r1 as the only candidate, got %v", set.Recipients)
	}
}

// fakeCache is an in-memory suggestionCache for asserting cache traffic.
type fakeCache struct {
	entries []Suggestion
	drops   int
}

func (c *fakeCache) get(ctx context.Context) []Suggestion { return c.entries }

func (c *fakeCache) put(ctx context.Context, s []Suggestion) { c.entries = s }

func (c *fakeCache) drop(ctx context.Context) { c.entries = nil; c.drops++ }

func TestServiceSuggestServesFromCache(t *testing.T) {
	// An empty store with a warm cache: the cached shortlist is served
	// without a rescan.
	svc := newTestService(newMemStore(nil, nil), false)
	cached := []Suggestion{{DonorID: "d1", RecipientID: "r1", Tier: TierHigh}}
	svc.cache = &fakeCache{entries: cached}

	suggestions, err := svc.Suggest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].DonorID != "d1" {
		t.Fatalf("expected the cached shortlist, got %v", suggestions)
	}
}

func TestServiceCommitDropsCachedShortlist(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	svc := newTestService(store, false)
	cache := &fakeCache{}
	svc.cache = cache

	if _, err := svc.Suggest(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.entries) == 0 {
		t.Fatal("expected Suggest to populate the cache")
	}

	if _, err := svc.Commit(context.Background(), "d1", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.drops != 1 || cache.entries != nil {
		t.Fatalf("commit must drop the cached shortlist, drops=%d", cache.drops)
	}
}

func TestServiceInvalidateSuggestions(t *testing.T) {
	svc := newTestService(newMemStore(nil, nil), false)

	// Nil cache is a no-op.
	svc.InvalidateSuggestions(context.Background())

	cache := &fakeCache{entries: []Suggestion{{DonorID: "d1"}}}
	svc.cache = cache
	svc.InvalidateSuggestions(context.Background())
	if cache.drops != 1 || cache.entries != nil {
		t.Fatal("expected the cached shortlist to be dropped")
	}
}

func TestServiceCommitInvalidatesAndReturnsResult(t *testing.T) {
	store := newMemStore(
		[]models.DonorRecord{donor("d1", models.BloodAPositive, 9, 9)},
		[]models.RecipientRecord{recipient("r1", models.BloodAPositive, 5, 9, 5)},
	)
	svc := newTestService(store, false)

	result, err := svc.Commit(context.Background(), "d1", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Donor.Status != models.StatusMatched {
		t.Fatal("commit must return the updated records")
	}

	if _, err := svc.Commit(context.Background(), "d1", "r1"); !errors.Is(err, ErrAlreadyMatched) {
		t.Fatalf("expected ErrAlreadyMatched on repeat commit, got %v", err)
	}
}
