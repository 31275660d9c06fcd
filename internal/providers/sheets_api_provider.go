package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"logitrack/tracker/internal/constants"
)

// SheetsAPIProvider reads private sheets with a service account through the
// Google Sheets API. The link's gid selects the tab.
type SheetsAPIProvider struct {
	service *sheets.Service
}

// NewSheetsAPIProvider authenticates with a service-account JSON key when one
// is given. Extra options are appended last so callers can override the endpoint.
func NewSheetsAPIProvider(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*SheetsAPIProvider, error) {
	var clientOpts []option.ClientOption
	if len(credentialsJSON) > 0 {
		conf, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithTokenSource(conf.TokenSource(ctx)))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsAPIProvider{service: service}, nil
}

func (p *SheetsAPIProvider) GetProviderType() string {
	return "sheets_api"
}

func (p *SheetsAPIProvider) FetchSheet(ctx context.Context, rawURL string) (*Sheet, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &ProviderError{Code: constants.ErrCodeInvalidURL, Message: "invalid sheet URL", URL: rawURL, Err: err}
	}
	id, gid, ok := SpreadsheetRef(u)
	if !ok {
		return nil, &ProviderError{Code: constants.ErrCodeInvalidURL, Message: "not a spreadsheet link", URL: rawURL}
	}

	title, err := p.sheetTitle(ctx, id, gid)
	if err != nil {
		return nil, wrapAPIError(err, rawURL)
	}

	resp, err := p.service.Spreadsheets.Values.Get(id, quoteSheetTitle(title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError(err, rawURL)
	}

	return valuesToSheet(resp.Values), nil
}

func (p *SheetsAPIProvider) sheetTitle(ctx context.Context, id, gid string) (string, error) {
	want, err := strconv.ParseInt(gid, 10, 64)
	if err != nil {
		return "", &ProviderError{Code: constants.ErrCodeInvalidURL, Message: "invalid gid " + gid}
	}

	ss, err := p.service.Spreadsheets.Get(id).
		Fields(googleapi.Field("sheets.properties")).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.SheetId == want {
			return s.Properties.Title, nil
		}
	}
	return "", &ProviderError{Code: constants.ErrCodeSheetNotFound, Message: fmt.Sprintf("no tab with gid %s", gid)}
}

func valuesToSheet(values [][]interface{}) *Sheet {
	if len(values) == 0 {
		return &Sheet{}
	}
	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(v))
	}

	sheet := &Sheet{Header: header}
	for _, rec := range values[1:] {
		row := make(map[string]*string, len(header))
		blank := true
		for i, h := range header {
			if h == "" {
				continue
			}
			row[h] = nil
			if i < len(rec) && rec[i] != nil {
				if v := strings.TrimSpace(fmt.Sprint(rec[i])); v != "" {
					row[h] = &v
					blank = false
				}
			}
		}
		if !blank {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	return sheet
}

func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func wrapAPIError(err error, rawURL string) error {
	var perr *ProviderError
	if errors.As(err, &perr) {
		perr.URL = rawURL
		return perr
	}
	status := 0
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		status = gerr.Code
	}
	return &ProviderError{
		Code:       constants.ErrCodeHTTPStatus,
		Message:    "sheets API request failed",
		URL:        rawURL,
		StatusCode: status,
		Err:        err,
	}
}
