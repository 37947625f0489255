package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
)

// Client reads live course progress from an LMS-style HTTP API. It backs the
// live progress provider for externally hosted activity types; the rollup
// path only consults it when no state row has been recorded yet.
type Client struct {
	log     *logger.Logger
	baseURL string
	http    *http.Client
}

func NewClient(log *logger.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("missing LMS base url")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		log:     log.With("client", "LMSClient"),
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type progressResponse struct {
	Percent int `json:"percent"`
}

// ProgressPercent implements services.LiveProgressProvider.
func (c *Client) ProgressPercent(ctx context.Context, userID uuid.UUID, externalRef string) (int, error) {
	if externalRef == "" {
		return 0, nil
	}

	endpoint := fmt.Sprintf("%s/v1/progress?user_id=%s&ref=%s", c.baseURL, userID, url.QueryEscape(externalRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("lms progress request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("lms progress request: unexpected status %d", resp.StatusCode)
	}

	var body progressResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode lms progress response: %w", err)
	}
	return body.Percent, nil
}
