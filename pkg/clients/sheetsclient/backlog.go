package sheetsclient

import (
	"fmt"
	"strconv"
	"time"
)

// Number of columns in a backlog row:
// status, date, login, link, comment, skillsup, skill, output,
// appreciated, autochecks, residue.
const backlogColumns = 11

// NotOnLeaveStatus is the sentinel the source table uses for agents who are
// confirmed not to be on leave; the only other accepted status is blank.
const NotOnLeaveStatus = "НЕ ДЕКРЕТ"

// FetchBacklogRows pulls the raw backlog range and applies the source filter:
// a skill tag must be present, the agent must not be on leave, the residue
// must not be zero, and any end date must already have passed. Strict
// per-field validation happens later in ingestion; this is the coarse cut the
// sync trigger makes at the spreadsheet boundary.
func (c *Client) FetchBacklogRows(now time.Time) ([][]string, error) {
	values, err := c.GetValues(fmt.Sprintf("%s!%s", c.cfg.BacklogSheet, c.cfg.BacklogRange))
	if err != nil {
		return nil, fmt.Errorf("failed to get backlog rows: %w", err)
	}

	var rows [][]string
	for _, raw := range values {
		row := stringifyRow(raw, backlogColumns)
		if !sourceFilter(row, now) {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func sourceFilter(row []string, now time.Time) bool {
	status, date, skill, residue := row[0], row[1], row[6], row[10]

	if skill == "" {
		return false
	}
	if status != "" && status != NotOnLeaveStatus {
		return false
	}
	if residue == "" || residue == "0" {
		return false
	}
	if date != "" && date != "-" {
		end, err := time.Parse("02.01.2006", date)
		if err != nil || !end.Before(now) {
			return false
		}
	}
	return true
}

// stringifyRow normalizes a sheet row of interface cells into a fixed-width
// string slice. Short rows are padded with blanks.
func stringifyRow(raw []interface{}, width int) []string {
	row := make([]string, width)
	for i := 0; i < width && i < len(raw); i++ {
		switch v := raw[i].(type) {
		case string:
			row[i] = v
		case float64:
			row[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
			row[i] = ""
		default:
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}
