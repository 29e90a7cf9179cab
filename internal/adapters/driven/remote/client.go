// Package remote implements the dataset feed against a running datahub
// server, so that client surfaces can share one upstream cache.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
	"github.com/publicintelligence/datahub/internal/logger"
)

// Ensure Client implements the interfaces.
var (
	_ driven.DatasetFeed   = (*Client)(nil)
	_ driven.DatasetSource = (*Client)(nil)
	_ driven.DatasetWriter = (*Client)(nil)
)

const (
	// DatasetsPath is the listing and create endpoint.
	DatasetsPath = "/api/datasets"

	// DefaultTimeout bounds a single call, retries included.
	DefaultTimeout = 20 * time.Second

	// DefaultRetries is the retry budget for connection errors and 5xx responses.
	DefaultRetries = 2

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 4 << 10
)

// Options configures a Client.
type Options struct {
	Timeout      time.Duration
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client calls the datahub HTTP API.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server url %q: %w", baseURL, domain.ErrInvalidInput)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}
	retryClient.Logger = nil
	// Hand back the last response so its status can be reported.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = opts.Timeout

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    retryClient,
	}, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Name identifies the client in logs and metrics.
func (c *Client) Name() string {
	return "remote"
}

// Fetch returns the server's live records. A listing the server answered
// from its own fallback set is reported as domain.ErrSourceUnavailable.
func (c *Client) Fetch(ctx context.Context, opts domain.FetchOptions) ([]domain.RawRecord, error) {
	listing, err := c.Listing(ctx, opts.BypassCache)
	if err != nil {
		return nil, err
	}
	if listing.Source != domain.ProvenanceLive {
		return nil, fmt.Errorf("%s is serving %s records: %w", c.baseURL, listing.Source, domain.ErrSourceUnavailable)
	}
	return listing.Datasets, nil
}

// Listing fetches GET /api/datasets. Any failure to obtain a well-formed
// 2xx response is a *domain.TransportError.
func (c *Client) Listing(ctx context.Context, bypassCache bool) (domain.Listing, error) {
	endpoint := c.baseURL + DatasetsPath
	if bypassCache {
		endpoint += "?refresh=1"
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Listing{}, &domain.TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if bypassCache {
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Listing{}, transportError(endpoint, resp, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Listing{}, transportError(endpoint, resp, errors.New(readError(resp.Body)))
	}

	var listing domain.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return domain.Listing{}, &domain.TransportError{URL: endpoint, Err: fmt.Errorf("decode listing: %w", err)}
	}
	if !listing.Source.IsValid() {
		listing.Source = domain.ProvenanceLive
	}

	logger.Debug("remote: %d records from %s (%s)", len(listing.Datasets), endpoint, listing.Source)
	return listing, nil
}

// Create posts one record to the server.
func (c *Client) Create(ctx context.Context, input domain.NewDataset) (domain.RawRecord, error) {
	endpoint := c.baseURL + DatasetsPath

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(endpoint, resp, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%s: %w", readError(resp.Body), domain.ErrInvalidInput)
	case http.StatusNotImplemented:
		return nil, fmt.Errorf("%s: %w", readError(resp.Body), domain.ErrNotConfigured)
	default:
		return nil, transportError(endpoint, resp, errors.New(readError(resp.Body)))
	}

	var raw domain.RawRecord
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &domain.TransportError{URL: endpoint, Err: fmt.Errorf("decode dataset: %w", err)}
	}
	return raw, nil
}

func transportError(endpoint string, resp *http.Response, err error) *domain.TransportError {
	te := &domain.TransportError{URL: endpoint, Err: err}
	if resp != nil {
		te.StatusCode = resp.StatusCode
		_ = resp.Body.Close()
	}
	return te
}

// readError extracts the "error" field of a JSON error body, or the raw text.
func readError(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return "empty response"
}
