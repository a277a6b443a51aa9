// Package headhunter searches vacancies on hh.ru.
package headhunter

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "careernodes/1.0 (https://github.com/BihanDasgupta/CareerNodes)"
	// Max value for search per page.
	perPage = 100
)

type Client struct {
	// token is optional; vacancy search works anonymously.
	token  string
	logger *zap.Logger
	params SearchParams

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New copies params; Fetch fills Text and Areas per call without touching them.
func New(logger *zap.Logger, token string, params *SearchParams) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
	if params != nil {
		c.params = *params
	}

	return c
}

func (c *Client) Name() string { return "headhunter" }

// Fetch searches vacancies matching query. A location without configured area
// ids is resolved through the area suggest endpoint; an unknown location leaves
// the search unrestricted.
func (c *Client) Fetch(ctx context.Context, query, location string, limit int) ([]map[string]any, error) {
	params := c.params
	if query != "" {
		params.Text = query
	}

	if location != "" && len(params.Areas) == 0 {
		area, err := c.resolveArea(ctx, location)
		if err != nil {
			return nil, err
		}
		if area != 0 {
			params.Areas = []int{area}
		}
	}

	vacancies, err := c.search(ctx, &params, limit)
	if err != nil {
		return nil, err
	}

	return vacancies.Records(), nil
}
