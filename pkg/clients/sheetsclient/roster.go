package sheetsclient

import "fmt"

// Roster tabs carry a header row. User rows are (login, id, skill); admin
// rows are (login, id).

// FetchUserRows pulls the raw auditor roster rows, header excluded.
func (c *Client) FetchUserRows() ([][]string, error) {
	values, err := c.GetValues(c.cfg.UserSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roster: %w", err)
	}
	return dataRows(values, 3), nil
}

// FetchAdminRows pulls the raw admin roster rows, header excluded.
func (c *Client) FetchAdminRows() ([][]string, error) {
	values, err := c.GetValues(c.cfg.AdminSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin roster: %w", err)
	}
	return dataRows(values, 2), nil
}

func dataRows(values [][]interface{}, width int) [][]string {
	if len(values) <= 1 {
		return nil
	}
	rows := make([][]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		rows = append(rows, stringifyRow(raw, width))
	}
	return rows
}
