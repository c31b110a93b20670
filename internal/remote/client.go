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

	"github.com/five82/potluck/internal/guest"
)

// ErrStatus marks responses with an HTTP error status.
var ErrStatus = errors.New("unexpected status")

// Client talks to a PostgREST-style HTTP API exposing the guest table.
type Client struct {
	baseURL   *url.URL
	table     string
	apiKey    string
	http      *http.Client
	userAgent string
}

const (
	defaultStoreURL  = "127.0.0.1:7488"
	defaultTable     = "guests"
	defaultUserAgent = "potluck/0.1"
	requestTimeout   = 5 * time.Second
)

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithAPIKey sends key in the apikey header on every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

// WithTable selects the collection name; empty keeps the default.
func WithTable(table string) ClientOption {
	return func(c *Client) {
		if t := strings.TrimSpace(table); t != "" {
			c.table = t
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the store at storeURL (host:port or URL).
func NewClient(storeURL string, opts ...ClientOption) (*Client, error) {
	base, err := parseBaseURL(storeURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		table:   defaultTable,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchAll retrieves the full record set ordered by creation time.
func (c *Client) FetchAll(ctx context.Context) ([]guest.Guest, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("select", "*")
	values.Set("order", "created_at.asc")
	var payload []guest.Guest
	if err := c.doURL(ctx, http.MethodGet, c.tableURL(values), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Insert creates a record from draft.
func (c *Client) Insert(ctx context.Context, draft guest.Draft) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if draft.Categories == nil {
		draft.Categories = []guest.Category{}
	}
	return c.doURL(ctx, http.MethodPost, c.tableURL(nil), draft, nil)
}

// Update patches the record with id.
func (c *Client) Update(ctx context.Context, id guest.ID, patch guest.Patch) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if id == "" {
		return fmt.Errorf("id required")
	}
	return c.doURL(ctx, http.MethodPatch, c.tableURL(idFilter(id)), patch, nil)
}

// Delete removes the record with id.
func (c *Client) Delete(ctx context.Context, id guest.ID) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if id == "" {
		return fmt.Errorf("id required")
	}
	return c.doURL(ctx, http.MethodDelete, c.tableURL(idFilter(id)), nil, nil)
}

func idFilter(id guest.ID) url.Values {
	values := url.Values{}
	values.Set("id", "eq."+string(id))
	return values
}

func (c *Client) tableURL(values url.Values) *url.URL {
	rel := &url.URL{Path: "/rest/v1/" + url.PathEscape(c.table)}
	if len(values) > 0 {
		rel.RawQuery = values.Encode()
	}
	return rel
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: api %s %s returned status %d", ErrStatus, method, rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(storeURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(storeURL)
	if trimmed == "" {
		trimmed = defaultStoreURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse store_url %q: %w", storeURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
