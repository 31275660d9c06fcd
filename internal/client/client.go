// Package client is a typed HTTP client for the tracker API. One Client owns
// its search and detail caches; create it once per process and call
// ClearCaches to drop them.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/models/dtos"
	"logitrack/tracker/internal/timeline"
)

const (
	searchCacheSize  = 30
	detailCacheSize  = 200
	detailFreshness  = 60 * time.Second
	prefetchParallel = 4
	maxStreamLine    = 4 << 20
)

// CancelledLine is the progress line reported when a streamed import is
// cancelled by the caller.
const CancelledLine = constants.MsgCancelledByUser

var (
	// ErrCancelled is returned by ImportStream when ctx is cancelled.
	ErrCancelled = errors.New(CancelledLine)

	ErrNotFound = errors.New("not found")
)

// APIError is a non-success response from the API.
type APIError struct {
	Status    int
	Message   string
	Completed []string
}

func (e *APIError) Error() string {
	if len(e.Completed) > 0 {
		return fmt.Sprintf("HTTP %d: %s (completed: %s)", e.Status, e.Message, strings.Join(e.Completed, ", "))
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// ImportOptions mirrors the import query flags.
type ImportOptions struct {
	DryRun   bool
	Strict   bool
	Parallel bool
	Batch    int
}

func DefaultImportOptions() ImportOptions {
	return ImportOptions{Strict: true, Parallel: true}
}

func (o ImportOptions) values() url.Values {
	v := url.Values{}
	v.Set("dryrun", strconv.FormatBool(o.DryRun))
	v.Set("strict", strconv.FormatBool(o.Strict))
	v.Set("parallel", strconv.FormatBool(o.Parallel))
	if o.Batch > 0 {
		v.Set("batch", strconv.Itoa(o.Batch))
	}
	return v
}

type Client struct {
	baseURL    string
	http       *http.Client
	adminToken string

	searches *common.LRU[string, *dtos.SearchResult]
	details  *common.LRU[string, *dtos.ShipmentDetail]

	mu           sync.Mutex
	searchSeq    uint64
	cancelSearch context.CancelFunc
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithAdminToken(token string) Option {
	return func(c *Client) { c.adminToken = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     http.DefaultClient,
		searches: common.NewLRU[string, *dtos.SearchResult](searchCacheSize, 0),
		details:  common.NewLRU[string, *dtos.ShipmentDetail](detailCacheSize, detailFreshness),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClearCaches drops every cached search and detail.
func (c *Client) ClearCaches() {
	c.searches.Clear()
	c.details.Clear()
}

// Search runs a shipment search. A newer Search cancels this one, which then
// returns an error wrapping context.Canceled.
func (c *Client) Search(ctx context.Context, p dtos.SearchParams) (*dtos.SearchResult, error) {
	q := searchValues(p)
	key := q.Encode()
	if res, ok := c.searches.Get(key); ok {
		return res, nil
	}

	ctx, done := c.supersede(ctx)
	defer done()

	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/search?"+key)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	var rows []dtos.SearchRow
	if err := decodeEnvelope(resp, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []dtos.SearchRow{}
	}
	res := &dtos.SearchResult{Rows: rows, Tier: resp.Header.Get(constants.SearchTierHeader)}
	c.searches.Set(key, res)
	return res, nil
}

// supersede cancels the in-flight search, if any, and registers a new one.
func (c *Client) supersede(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	if c.cancelSearch != nil {
		c.cancelSearch()
	}
	c.searchSeq++
	seq := c.searchSeq
	c.cancelSearch = cancel
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		if c.searchSeq == seq {
			c.cancelSearch = nil
		}
		c.mu.Unlock()
		cancel()
	}
}

func searchValues(p dtos.SearchParams) url.Values {
	v := url.Values{}
	v.Set("q", strings.TrimSpace(p.Q))
	for name, val := range map[string]string{
		"pol":               p.POL,
		"pod":               p.POD,
		"place_of_delivery": p.PlaceOfDelivery,
		"mode":              p.Mode,
		"sortBy":            p.SortBy,
		"dir":               p.Dir,
	} {
		if val != "" {
			v.Set(name, val)
		}
	}
	return v
}

// Detail returns one shipment, served from cache while fresh.
func (c *Client) Detail(ctx context.Context, shipmentID string) (*dtos.ShipmentDetail, error) {
	if d, ok := c.details.Get(shipmentID); ok {
		return d, nil
	}

	var d dtos.ShipmentDetail
	if err := c.getJSON(ctx, "/api/v1/detail/"+url.PathEscape(shipmentID), &d); err != nil {
		return nil, err
	}
	c.details.Set(shipmentID, &d)
	return &d, nil
}

// Prefetch loads details that are not cached yet. Failures are logged and
// otherwise ignored.
func (c *Client) Prefetch(ctx context.Context, shipmentIDs ...string) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchParallel)
	for _, id := range shipmentIDs {
		if _, ok := c.details.Get(id); ok {
			continue
		}
		g.Go(func() error {
			if _, err := c.Detail(ctx, id); err != nil {
				logging.Debug("Prefetch failed", "shipment_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Client) Timeline(ctx context.Context, shipmentID string) (*timeline.Timeline, error) {
	var tl timeline.Timeline
	if err := c.getJSON(ctx, "/api/v1/shipments/"+url.PathEscape(shipmentID)+"/timeline", &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

// Import runs an import and waits for its JSON result.
func (c *Client) Import(ctx context.Context, opts ImportOptions) (*dtos.ImportResult, error) {
	resp, err := c.postImport(ctx, opts.values())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}
	var res dtos.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode import result: %w", err)
	}
	c.afterImport(&res)
	return &res, nil
}

// ImportStream runs a streamed import, passing every progress line to onLine.
// Cancelling ctx reports CancelledLine and returns ErrCancelled.
func (c *Client) ImportStream(ctx context.Context, opts ImportOptions, onLine func(string)) (*dtos.ImportResult, error) {
	if onLine == nil {
		onLine = func(string) {}
	}
	q := opts.values()
	q.Set("stream", "1")

	resp, err := c.postImport(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			onLine(CancelledLine)
			return nil, ErrCancelled
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "RESULT "):
			var res dtos.ImportResult
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "RESULT ")), &res); err != nil {
				return nil, fmt.Errorf("failed to decode import result: %w", err)
			}
			c.afterImport(&res)
			return &res, nil
		case strings.HasPrefix(line, "ERROR "):
			return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimPrefix(line, "ERROR ")}
		default:
			onLine(line)
		}
	}
	if ctx.Err() != nil {
		onLine(CancelledLine)
		return nil, ErrCancelled
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("import stream failed: %w", err)
	}
	return nil, errors.New("import stream ended without a result")
}

func (c *Client) afterImport(res *dtos.ImportResult) {
	if !res.DryRun {
		c.ClearCaches()
	}
}

func (c *Client) postImport(ctx context.Context, q url.Values) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/import?"+q.Encode())
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.AdminTokenHeader, c.adminToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("import request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, out)
}

// decodeEnvelope unwraps {ok, data} into out. A 404 maps to ErrNotFound.
func decodeEnvelope(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	env := struct {
		OK   bool            `json:"ok"`
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var e struct {
		Error     string   `json:"error"`
		Completed []string `json:"completed"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(body))
	}
	return &APIError{Status: resp.StatusCode, Message: e.Error, Completed: e.Completed}
}
