package sheetsclient

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/avoronova/qc-taskbot/internal/config"
)

// ScopeSheets is the OAuth scope required for spreadsheet access
const ScopeSheets = "https://www.googleapis.com/auth/spreadsheets"

// Client wraps the Google Sheets API client
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	cfg           *config.Config
}

// NewClient creates a new Sheets client authorized with the configured
// service-account credentials file
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, ScopeSheets)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	httpClient := jwtConfig.Client(ctx)

	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		cfg:           cfg,
	}, nil
}

// Service returns the underlying sheets service for direct API access
func (c *Client) Service() *sheets.Service {
	return c.service
}

// GetValues reads values from a spreadsheet range
func (c *Client) GetValues(sheetRange string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, sheetRange).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get values: %w", err)
	}

	return resp.Values, nil
}

// AppendRow appends a single row after the table anchored at anchorRange
func (c *Client) AppendRow(sheetName, anchorRange string, values []interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{values},
	}

	_, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, fmt.Sprintf("%s!%s", sheetName, anchorRange), valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	return nil
}

// UpdateCell overwrites a single cell addressed by 1-based row and column
func (c *Client) UpdateCell(sheetName string, row, col int, value interface{}) error {
	cell := fmt.Sprintf("%s!%s%d", sheetName, columnLetter(col), row)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}

	_, err := c.service.Spreadsheets.Values.
		Update(c.spreadsheetID, cell, valueRange).
		ValueInputOption("USER_ENTERED").
		Do()
	if err != nil {
		return fmt.Errorf("failed to update cell %s: %w", cell, err)
	}

	return nil
}

// CellRef addresses a single cell with 1-based coordinates
type CellRef struct {
	Row int
	Col int
}

// FindMatches scans a sheet for cells whose text equals the given value and
// returns their coordinates in reading order. The Sheets API has no search
// endpoint, so this reads the sheet and scans client-side.
func (c *Client) FindMatches(sheetName, text string) ([]CellRef, error) {
	values, err := c.GetValues(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	var matches []CellRef
	for r, row := range values {
		for col, cell := range row {
			if s, ok := cell.(string); ok && s == text {
				matches = append(matches, CellRef{Row: r + 1, Col: col + 1})
			}
		}
	}

	return matches, nil
}

// columnLetter converts a 1-based column index to its A1-notation letters
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
