package providers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/metrics"
)

const maxErrorBody = 512

// CSVExportProvider downloads a sheet through its CSV export URLs.
type CSVExportProvider struct {
	client     *http.Client
	strategies []URLStrategy
	metrics    *metrics.MetricsRegistry
}

// NewCSVExportProvider uses the default transport so tests can intercept it.
func NewCSVExportProvider(timeout time.Duration, m *metrics.MetricsRegistry) *CSVExportProvider {
	return &CSVExportProvider{
		client:     &http.Client{Timeout: timeout},
		strategies: DefaultURLStrategies,
		metrics:    m,
	}
}

func (p *CSVExportProvider) GetProviderType() string {
	return "csv_export"
}

// FetchSheet tries every candidate URL in order; the first 2xx response wins.
func (p *CSVExportProvider) FetchSheet(ctx context.Context, rawURL string) (*Sheet, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &ProviderError{Code: constants.ErrCodeInvalidURL, Message: "empty sheet URL"}
	}

	var lastErr *ProviderError
	for _, c := range CandidateURLs(rawURL, p.strategies) {
		body, err := p.download(ctx, c.URL)
		if err == nil {
			p.countAttempt(c.Strategy, "ok")
			sheet, perr := ParseCSV(body)
			if perr != nil {
				return nil, &ProviderError{
					Code:    constants.ErrCodeMalformedCSV,
					Message: "failed to parse CSV",
					URL:     c.URL,
					Err:     perr,
				}
			}
			return sheet, nil
		}
		p.countAttempt(c.Strategy, "error")

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errors.As(err, &lastErr)
		logging.Debug("CSV candidate failed", "strategy", c.Strategy, "url", c.URL, "error", err)
	}

	if lastErr == nil {
		lastErr = &ProviderError{Code: constants.ErrCodeInvalidURL, Message: "no candidate URL", URL: rawURL}
	}
	lastErr.Message = "failed to fetch CSV: " + lastErr.Message
	return nil, lastErr
}

func (p *CSVExportProvider) download(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &ProviderError{Code: constants.ErrCodeInvalidURL, Message: "invalid URL", URL: target, Err: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Code: constants.ErrCodeNetworkError, Message: "request failed", URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProviderError{
			Code:       constants.ErrCodeHTTPStatus,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			URL:        target,
			StatusCode: resp.StatusCode,
			Details:    string(snippet),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Code: constants.ErrCodeNetworkError, Message: "failed to read body", URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

func (p *CSVExportProvider) countAttempt(strategy, result string) {
	if p.metrics == nil {
		return
	}
	p.metrics.CSVFetchAttempts.WithLabelValues(strategy, result).Inc()
}

// ParseCSV reads a header row and data rows. It strips a UTF-8 BOM, trims
// cells, skips blank lines and tolerates ragged rows. Empty cells become nil.
func ParseCSV(data []byte) (*Sheet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &Sheet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	sheet := &Sheet{Header: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if blankRecord(rec) {
			continue
		}

		row := make(map[string]*string, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			row[h] = nil
			if i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					row[h] = &v
				}
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
