package sheetsclient

import (
	"errors"
	"fmt"
	"strconv"
)

// Result rows land as
// [support login, date, auditor login, auditor id, viewed, elapsed seconds, comment].
const (
	resultColLogin     = 1
	resultColAuditorID = 4
	resultColViewed    = 5
	resultColumns      = 7
)

// ErrEntryNotFound reports that no result row matched a correction request,
// either because the support login never appears or because the recorded
// auditor id belongs to somebody else.
var ErrEntryNotFound = errors.New("result entry not found")

// AppendResult writes one finalized assessment record to the result sheet.
func (c *Client) AppendResult(supportLogin, date, auditorLogin string, auditorID int64,
	viewed, elapsedSeconds int, comment string) error {
	values := []interface{}{
		supportLogin,
		date,
		auditorLogin,
		strconv.FormatInt(auditorID, 10),
		viewed,
		elapsedSeconds,
		comment,
	}

	if err := c.AppendRow(c.cfg.ResultSheet, c.cfg.ResultAnchor, values); err != nil {
		return fmt.Errorf("failed to append result for %s: %w", supportLogin, err)
	}
	return nil
}

// CorrectViewedCount locates the most recent result row for a support login,
// verifies the recorded auditor id matches the caller, and overwrites the
// viewed-count cell. Returns ErrEntryNotFound without mutating anything when
// no row passes both checks.
func (c *Client) CorrectViewedCount(supportLogin string, auditorID int64, viewed int) error {
	matches, err := c.FindMatches(c.cfg.ResultSheet, supportLogin)
	if err != nil {
		return fmt.Errorf("failed to search result sheet: %w", err)
	}

	// Most recent row wins; scan matches bottom-up, login column only.
	rows, err := c.GetValues(c.cfg.ResultSheet)
	if err != nil {
		return fmt.Errorf("failed to read result sheet: %w", err)
	}
	for i := len(matches) - 1; i >= 0; i-- {
		ref := matches[i]
		if ref.Col != resultColLogin || ref.Row > len(rows) {
			continue
		}
		row := stringifyRow(rows[ref.Row-1], resultColumns)
		if row[resultColAuditorID-1] != strconv.FormatInt(auditorID, 10) {
			continue
		}
		if err := c.UpdateCell(c.cfg.ResultSheet, ref.Row, resultColViewed, viewed); err != nil {
			return fmt.Errorf("failed to update viewed count: %w", err)
		}
		return nil
	}

	return ErrEntryNotFound
}
