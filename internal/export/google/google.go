// Package google appends ledger audit entries to a Google Sheets
// spreadsheet using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"khata/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.EntryAppender = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Ledger").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// AppendEntry appends one audit row to the configured sheet.
func (c *Client) AppendEntry(ctx context.Context, e export.Entry) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{
		e.RecordedAt.Format("2006-01-02 15:04:05"),
		e.EventID,
		e.Action,
		e.TransactionID,
		e.ContactID,
		e.Kind,
		e.Direction,
		e.CategoryID,
		e.Amount,
		e.Notes,
		e.OccurredAt.Format("2006-01-02 15:04:05"),
	}

	rng := fmt.Sprintf("%s!A:K", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	return nil
}
