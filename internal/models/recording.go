package models

import (
	"strconv"
	"strings"
)

// Headers is the fixed sheet schema. Column order is load-bearing: append
// and update write whole rows in exactly this order.
var Headers = []string{"Timestamp", "Title", "Category", "Filename", "Duration", "Words", "Drive Link", "Sheet Link"}

const (
	// NumColumns is the fixed column count every in-memory row is padded to.
	NumColumns = 8
	// FirstDataRow is the sheet position of the first data row (row 1 is the header).
	FirstDataRow = 2
)

// Recording is one transcribed entry in the backing sheet. RowNumber is the
// 1-based sheet position and goes stale after any mutation; callers re-read
// rather than patching locally.
type Recording struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Filename  string `json:"filename"`
	Duration  string `json:"duration"`
	Words     string `json:"words"`
	DriveLink string `json:"drive_link"`
	SheetLink string `json:"sheet_link"`
	// Extra carries cells beyond the fixed schema; long rows are never truncated.
	Extra     []string `json:"extra,omitempty"`
	RowNumber int      `json:"row_number"`
}

// Values returns the row in sheet column order, including any extra cells.
func (r Recording) Values() []string {
	v := []string{r.Timestamp, r.Title, r.Category, r.Filename, r.Duration, r.Words, r.DriveLink, r.SheetLink}
	return append(v, r.Extra...)
}

// FromValues builds a Recording from raw sheet cells, padding short rows
// with empty strings and keeping any cells beyond the fixed schema.
func FromValues(cells []string, rowNumber int) Recording {
	padded := make([]string, NumColumns)
	copy(padded, cells)
	r := Recording{
		Timestamp: padded[0],
		Title:     padded[1],
		Category:  padded[2],
		Filename:  padded[3],
		Duration:  padded[4],
		Words:     padded[5],
		DriveLink: padded[6],
		SheetLink: padded[7],
		RowNumber: rowNumber,
	}
	if len(cells) > NumColumns {
		r.Extra = append([]string(nil), cells[NumColumns:]...)
	}
	return r
}

// ParseWordCount parses a word count cell. Thousands separators are
// stripped; empty or non-numeric content counts as zero. Every aggregate in
// the app goes through this one contract.
func ParseWordCount(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// WordCount returns the parsed word count for the row.
func (r Recording) WordCount() int {
	return ParseWordCount(r.Words)
}
