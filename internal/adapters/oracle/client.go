// Package oracle classifies license keys against the remote license-manager
// service.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/slmgo/scriptlm/internal/infrastructure/metrics"
)

// Client queries the license-manager service for key classification.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 5 * time.Second},
	}
}

type keyInfo struct {
	Demo bool `json:"demo"`
}

// IsDemoKey asks the license-manager whether the key belongs to the demo
// tier. Any transport or decoding failure is fatal for the current request.
func (c *Client) IsDemoKey(ctx context.Context, licenseKey string) (bool, error) {
	endpoint := fmt.Sprintf("%s/keys/%s", c.baseURL, url.PathEscape(licenseKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build license-manager request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.OracleLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("license-manager lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.OracleLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("license-manager lookup: unexpected status %d", resp.StatusCode)
	}

	var info keyInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		metrics.OracleLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("decode license-manager response: %w", err)
	}

	metrics.OracleLookups.WithLabelValues("ok").Inc()
	return info.Demo, nil
}
