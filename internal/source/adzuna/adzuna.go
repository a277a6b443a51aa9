// Package adzuna searches the Adzuna public jobs API.
package adzuna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL         = "https://api.adzuna.com/v1/api/jobs"
	pageSize       = 50
	defaultCountry = "us"
	defaultLimit   = 20
	httpTimeout    = 15 * time.Second
)

// ErrMissingCredentials is returned by New when the app id or key is empty.
var ErrMissingCredentials = errors.New("adzuna app id and app key are required")

type Client struct {
	appID   string
	appKey  string
	country string
	logger  *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

type response struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

func New(appID, appKey, country string, logger *zap.Logger) (*Client, error) {
	if appID == "" || appKey == "" {
		return nil, ErrMissingCredentials
	}
	if country == "" {
		country = defaultCountry
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		appID:      appID,
		appKey:     appKey,
		country:    country,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: httpTimeout},
		APIURL:     apiURL,
	}, nil
}

func (c *Client) Name() string { return "adzuna" }

// Fetch pages through the search results until limit records are collected or
// the API runs out. Records from pages fetched before an error are returned with it.
func (c *Client) Fetch(ctx context.Context, query, location string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var records []map[string]any
	for page := 1; len(records) < limit; page++ {
		size := min(pageSize, limit-len(records))
		batch, total, err := c.fetchPage(ctx, query, location, page, size)
		if err != nil {
			return records, fmt.Errorf("page %d: %w", page, err)
		}

		c.logger.Debug("got response from adzuna", zap.Int("page", page), zap.Int("items", len(batch)), zap.Int("total", total))

		records = append(records, batch...)
		if len(batch) < size || len(records) >= total {
			break
		}
	}

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, query, location string, page, size int) ([]map[string]any, int, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", c.APIURL, c.country, page)

	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("results_per_page", strconv.Itoa(size))
	q.Set("content-type", "application/json")
	if query != "" {
		q.Set("what", query)
	}
	if location != "" {
		q.Set("where", location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("bad status: %s", resp.Status)
	}

	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, 0, fmt.Errorf("json unmarshal: %w", err)
	}

	return decoded.Results, decoded.Count, nil
}
