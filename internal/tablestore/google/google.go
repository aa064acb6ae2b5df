// Package google implements the tablestore against a Google Sheets
// spreadsheet, one sheet per logical table.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"balcao/internal/tablestore"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// readRange spans every column a canonical table can carry.
const readRange = "A:Z"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ tablestore.Store = (*Client)(nil)

// NewFromEnv creates a Sheets-backed store using environment variables.
// Required: SPREADSHEET_ID plus service account credentials in
// SERVICE_ACCOUNT_JSON, SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// New wraps an existing Sheets service; used by tests and the factory.
func New(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("SERVICE_ACCOUNT_FILE"))
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
		return nil, errors.New("missing service account credentials (set SERVICE_ACCOUNT_JSON, SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Tables(ctx context.Context) ([]string, error) {
	doc, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	names := make([]string, 0, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}
	return names, nil
}

func (c *Client) ReadAll(ctx context.Context, table string) ([][]string, error) {
	rng := fmt.Sprintf("%s!%s", table, readRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, tablestore.ErrTableNotFound
		}
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return toStringRows(resp.Values), nil
}

func (c *Client) AppendRows(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!%s", table, readRange)
	vr := &gsheet.ValueRange{Values: toAnyRows(rows)}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return tablestore.ErrTableNotFound
		}
		return fmt.Errorf("append to %s: %w", table, err)
	}
	return nil
}

func (c *Client) ReplaceAll(ctx context.Context, table string, rows [][]string) error {
	rng := fmt.Sprintf("%s!%s", table, readRange)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return tablestore.ErrTableNotFound
		}
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: toAnyRows(rows)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", table), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", table, err)
	}
	return nil
}

func (c *Client) UpdateHeader(ctx context.Context, table string, header []string) error {
	vr := &gsheet.ValueRange{Values: toAnyRows([][]string{header})}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", table), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return tablestore.ErrTableNotFound
		}
		return fmt.Errorf("patch header of %s: %w", table, err)
	}
	return nil
}

func (c *Client) CreateTable(ctx context.Context, table string, header []string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: table},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		// The sheet may already exist; header patching still applies.
		if !strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return fmt.Errorf("add sheet %s: %w", table, err)
		}
	}
	return c.UpdateHeader(ctx, table, header)
}

// isMissingSheet matches the API error for a range against an absent sheet.
func isMissingSheet(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unable to parse range") ||
		strings.Contains(msg, "not found")
}

func toStringRows(values [][]any) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = strings.TrimSpace(fmt.Sprint(v))
		}
		out[i] = cells
	}
	return out
}

func toAnyRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
