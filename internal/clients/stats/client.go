package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
)

// Client reports endpoint usage to the remote statistics collaborator.
// Delivery is best-effort; the notifier discards any error it returns.
type Client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
}

type pingBody struct {
	Endpoint string `json:"endpoint"`
}

// New builds a stats client for baseURL. The short client timeout is the
// ceiling on how long a hung collaborator can occupy the notifier worker.
func New(log *logger.Logger, baseURL string) *Client {
	return &Client{
		log:        log.With("client", "StatsClient"),
		httpClient: &http.Client{Timeout: 2 * time.Second},
		baseURL:    baseURL,
	}
}

func (c *Client) Ping(ctx context.Context, endpoint string) error {
	raw, err := json.Marshal(pingBody{Endpoint: endpoint})
	if err != nil {
		return fmt.Errorf("marshal usage ping: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build usage ping: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send usage ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("usage ping rejected: %s", resp.Status)
	}
	return nil
}
