package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gastos/internal/core"
	"gastos/internal/log"
	ports "gastos/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// valuesAPI is the part of the Sheets values API the mirror needs.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]interface{}, error)
	Update(ctx context.Context, rng string, values [][]interface{}) error
	Append(ctx context.Context, rng string, values [][]interface{}) error
	Clear(ctx context.Context, rng string) error
}

// Client mirrors expenses into one sheet of a spreadsheet.
type Client struct {
	values valuesAPI
	sheet  string
	logger *log.Logger
}

var _ ports.Mirror = (*Client)(nil)

// Credentials selects a service account, inline JSON first.
type Credentials struct {
	JSON string
	File string
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		raw, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return raw, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// New creates a mirror client for spreadsheetID using service account
// credentials.
func New(ctx context.Context, spreadsheetID, sheet string, creds Credentials, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheet) == "" {
		return nil, errors.New("missing sheet name")
	}
	raw, err := creds.load()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(raw),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newClient(&serviceValues{svc: svc, spreadsheetID: spreadsheetID}, sheet, logger), nil
}

func newClient(values valuesAPI, sheet string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{values: values, sheet: sheet, logger: logger.WithComponent(log.ComponentSheets)}
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rows, err := c.values.Get(ctx, fmt.Sprintf("%s!A1:%s1", c.sheet, lastColumn))
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheet, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}
	if err := c.values.Update(ctx, rowRange(c.sheet, 1), [][]interface{}{header}); err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheet, err)
	}
	return nil
}

// UpsertExpense rewrites the row holding e.ID in place, or appends one.
func (c *Client) UpsertExpense(ctx context.Context, e core.Expense) error {
	row, err := c.rowOf(ctx, e.ID)
	if err != nil {
		return err
	}
	values := [][]interface{}{expenseRow(e)}
	if row == 0 {
		if err := c.values.Append(ctx, fmt.Sprintf("%s!A:%s", c.sheet, lastColumn), values); err != nil {
			return fmt.Errorf("append expense %s: %w", e.ID, err)
		}
		c.logger.DebugContext(ctx, "Appended expense row", log.FieldExpenseID, e.ID)
		return nil
	}
	if err := c.values.Update(ctx, rowRange(c.sheet, row), values); err != nil {
		return fmt.Errorf("update expense %s at row %d: %w", e.ID, row, err)
	}
	c.logger.DebugContext(ctx, "Updated expense row", log.FieldExpenseID, e.ID, "row", row)
	return nil
}

// DeleteExpense clears the row holding id. A missing row is not an error.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	row, err := c.rowOf(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}
	if err := c.values.Clear(ctx, rowRange(c.sheet, row)); err != nil {
		return fmt.Errorf("clear expense %s at row %d: %w", id, row, err)
	}
	c.logger.DebugContext(ctx, "Cleared expense row", log.FieldExpenseID, id, "row", row)
	return nil
}

func (c *Client) rowOf(ctx context.Context, id string) (int, error) {
	column, err := c.values.Get(ctx, fmt.Sprintf("%s!A:A", c.sheet))
	if err != nil {
		return 0, fmt.Errorf("read ids of %s: %w", c.sheet, err)
	}
	return findRow(column, id), nil
}

// serviceValues adapts the generated Sheets client to valuesAPI.
type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceValues) Get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceValues) Update(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *serviceValues) Append(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (s *serviceValues) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}
