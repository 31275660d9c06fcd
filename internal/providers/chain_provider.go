package providers

import (
	"context"
	"strings"

	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
)

// ChainProvider tries each provider in order and returns the first success.
type ChainProvider struct {
	providers []SheetProvider
}

func NewChainProvider(providers ...SheetProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (c *ChainProvider) GetProviderType() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.GetProviderType())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *ChainProvider) FetchSheet(ctx context.Context, rawURL string) (*Sheet, error) {
	var lastErr error
	for _, p := range c.providers {
		sheet, err := p.FetchSheet(ctx, rawURL)
		if err == nil {
			return sheet, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.Warn("Sheet provider failed, trying next", "provider", p.GetProviderType(), "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &ProviderError{Code: constants.ErrCodeInvalidURL, Message: "no sheet provider configured", URL: rawURL}
	}
	return nil, lastErr
}
