// Package google implements the CellStore port on top of the Google Sheets
// API using service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tagtrack/internal/core"
	"tagtrack/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ sheets.CellStore = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: TAGTRACK_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("TAGTRACK_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing TAGTRACK_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

func (c *Client) GetCell(ctx context.Context, sheet, addr string) (string, error) {
	if c.svc == nil {
		return "", fmt.Errorf("%w: sheets service not initialized", core.ErrStoreUnavailable)
	}
	rng := fmt.Sprintf("%s!%s", sheet, addr)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", core.ErrStoreUnavailable, rng, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return strings.TrimSpace(fmt.Sprint(resp.Values[0][0])), nil
}

func (c *Client) SetCell(ctx context.Context, sheet, addr, value string) error {
	if c.svc == nil {
		return fmt.Errorf("%w: sheets service not initialized", core.ErrStoreUnavailable)
	}
	rng := fmt.Sprintf("%s!%s", sheet, addr)
	vr := &gsheet.ValueRange{Values: [][]any{{value}}}

	// RAW keeps glyph-tagged amounts as text instead of letting the sheet
	// coerce them into locale-dependent numbers.
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", core.ErrStoreUnavailable, rng, err)
	}
	return nil
}

func (c *Client) FindHeader(ctx context.Context, sheet, label string) (int, bool, error) {
	if c.svc == nil {
		return 0, false, fmt.Errorf("%w: sheets service not initialized", core.ErrStoreUnavailable)
	}
	rng := fmt.Sprintf("%s!1:1", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("%w: read %s: %v", core.ErrStoreUnavailable, rng, err)
	}
	if len(resp.Values) == 0 {
		return 0, false, nil
	}
	for i, v := range resp.Values[0] {
		if strings.EqualFold(strings.TrimSpace(fmt.Sprint(v)), strings.TrimSpace(label)) {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

func (c *Client) AppendRow(ctx context.Context, sheet string, values []string) error {
	if c.svc == nil {
		return fmt.Errorf("%w: sheets service not initialized", core.ErrStoreUnavailable)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	rng := fmt.Sprintf("%s!A%d", sheet, sheets.ExpenseRowStart)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append to %s: %v", core.ErrStoreUnavailable, sheet, err)
	}
	return nil
}
