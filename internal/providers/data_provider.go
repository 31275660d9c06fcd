package providers

import (
	"context"
	"fmt"
)

// SheetProvider reads one published spreadsheet tab.
type SheetProvider interface {
	// FetchSheet returns the header and the data rows of the sheet behind rawURL.
	FetchSheet(ctx context.Context, rawURL string) (*Sheet, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// Sheet is a parsed tab. Rows are keyed by header text; empty cells are nil.
type Sheet struct {
	Header []string
	Rows   []map[string]*string
}

// ProviderError represents a provider-specific fetch error. URL is the last
// attempted URL and StatusCode the last HTTP status (0 when no response).
type ProviderError struct {
	Code       string
	Message    string
	URL        string
	StatusCode int
	Details    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if e.URL != "" {
		msg = fmt.Sprintf("%s (url=%s, status=%d)", msg, e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
