package openexchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrFetch marks every transport, status and decode failure of a remote call.
var ErrFetch = errors.New("remote fetch failed")

const (
	DefaultBaseURL = "https://openexchangerates.org/api"
	DefaultTimeout = 10 * time.Second
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	logger     *logrus.Logger
}

func NewClient(baseURL, appID string, timeout time.Duration, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: timeout,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		logger:  logger,
	}
}

func (c *Client) FetchCurrencies(ctx context.Context) (map[string]string, error) {
	var currencies map[string]string
	if err := c.get(ctx, "currencies.json", nil, &currencies); err != nil {
		return nil, err
	}
	if currencies == nil {
		return nil, fmt.Errorf("%w: empty currency list", ErrFetch)
	}

	c.logger.Infof("Successfully fetched %d currency names", len(currencies))
	return currencies, nil
}

func (c *Client) FetchLatest(ctx context.Context, base string) (*LatestRates, error) {
	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("base", base)

	var latest LatestRates
	if err := c.get(ctx, "latest.json", params, &latest); err != nil {
		return nil, err
	}
	if latest.Rates == nil {
		return nil, fmt.Errorf("%w: response has no rates", ErrFetch)
	}

	c.logger.WithFields(logrus.Fields{"base": latest.Base, "rates": len(latest.Rates)}).Info("Successfully fetched latest rates")
	return &latest, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + "/" + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	c.logger.WithField("path", path).Info("Fetching from remote")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Errorf("Failed to create request: %v", err)
		return fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Failed to fetch %s: %v", path, err)
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Errorf("Failed to read response body: %v", err)
		return fmt.Errorf("%w: read response body: %w", ErrFetch, err)
	}

	c.logger.Debugf("Response status: %d, body length: %d", resp.StatusCode, len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Errorf("Failed to decode %s: %v", path, err)
		c.logger.Debugf("First 200 chars: %s", string(body)[:min(200, len(body))])
		return fmt.Errorf("%w: decode %s: %w", ErrFetch, path, err)
	}
	return nil
}

func (c *Client) statusError(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		c.logger.WithFields(logrus.Fields{"status": status, "message": apiErr.Message}).Error("Remote returned an error")
		if apiErr.Description != "" {
			return fmt.Errorf("%w: status %d: %s: %s", ErrFetch, status, apiErr.Message, apiErr.Description)
		}
		return fmt.Errorf("%w: status %d: %s", ErrFetch, status, apiErr.Message)
	}
	c.logger.WithField("status", status).Error("Remote returned non-success status")
	return fmt.Errorf("%w: status %d", ErrFetch, status)
}
