package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ocumatch/platform/pkg/common/httpclient"
	"github.com/ocumatch/platform/pkg/common/models"
)

// StoreClient implements Store against the registry service's HTTP/JSON
// API. Every call carries the client timeout. Only transient failures
// are retried with backoff: transport faults and 5xx responses. A
// definitive registry answer (404, 409, any other 4xx) surfaces after a
// single attempt.
type StoreClient struct {
	baseURL  string
	client   *http.Client
	attempts int
}

func NewStoreClient(baseURL string, timeout time.Duration, attempts int) *StoreClient {
	if attempts <= 0 {
		attempts = 2
	}
	return &StoreClient{
		baseURL:  baseURL,
		client:   httpclient.New(timeout),
		attempts: attempts,
	}
}

func (c *StoreClient) Donors(ctx context.Context) ([]models.DonorRecord, error) {
	var donors []models.DonorRecord
	if err := c.do(ctx, http.MethodGet, "/donor", nil, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

func (c *StoreClient) Donor(ctx context.Context, id string) (*models.DonorRecord, error) {
	var donor models.DonorRecord
	if err := c.do(ctx, http.MethodGet, "/donor/"+id, nil, &donor); err != nil {
		return nil, err
	}
	return &donor, nil
}

func (c *StoreClient) Recipients(ctx context.Context) ([]models.RecipientRecord, error) {
	var recipients []models.RecipientRecord
	if err := c.do(ctx, http.MethodGet, "/recipient", nil, &recipients); err != nil {
		return nil, err
	}
	return recipients, nil
}

func (c *StoreClient) Recipient(ctx context.Context, id string) (*models.RecipientRecord, error) {
	var recipient models.RecipientRecord
	if err := c.do(ctx, http.MethodGet, "/recipient/"+id, nil, &recipient); err != nil {
		return nil, err
	}
	return &recipient, nil
}

func (c *StoreClient) CommitMatch(ctx context.Context, donorID, recipientID string) (*models.MatchResult, error) {
	req := models.MatchRequest{DonorID: donorID, RecipientID: recipientID}
	var result models.MatchResult
	if err := c.do(ctx, http.MethodPost, "/match", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *StoreClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	err := httpclient.Retry(ctx, c.attempts, 200*time.Millisecond, func() error {
		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if httpclient.IsRetriable(err) {
				return err
			}
			return httpclient.Permanent(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return httpclient.Permanent(ErrNotFound)
		case resp.StatusCode == http.StatusConflict:
			return httpclient.Permanent(ErrAlreadyMatched)
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("registry returned status %d: %w", resp.StatusCode, ErrStoreUnavailable)
		case resp.StatusCode >= 400:
			return httpclient.Permanent(fmt.Errorf("registry rejected the request with status %d: %w", resp.StatusCode, ErrStoreUnavailable))
		}

		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyMatched), errors.Is(err, ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("registry request failed: %v: %w", err, ErrStoreUnavailable)
	}
}
