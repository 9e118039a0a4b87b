package recordings

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/audiohub/backend/internal/models"
	"github.com/audiohub/backend/pkg/google"
)

// ErrNoClient is returned by ReadAll when no spreadsheet client could be
// resolved; mutations report it as a plain false.
var ErrNoClient = errors.New("google sheets not connected")

// TabularSource resolves the spreadsheet client, or nil when unavailable.
type TabularSource interface {
	Tabular(ctx context.Context) google.TabularClient
}

// Repository mediates all reads and writes against the backing sheet. The
// sheet itself is the source of truth: nothing is cached here, and every
// mutation leaves previously read row numbers stale until the next ReadAll.
type Repository struct {
	clients       TabularSource
	spreadsheetID string
	sheetName     string
	logger        *zap.Logger
}

// NewRepository creates a repository over the configured spreadsheet tab.
func NewRepository(clients TabularSource, spreadsheetID, sheetName string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{clients: clients, spreadsheetID: spreadsheetID, sheetName: sheetName, logger: logger}
}

func (r *Repository) dataRange() string {
	return fmt.Sprintf("%s!A%d:H", r.sheetName, models.FirstDataRow)
}

func (r *Repository) rowRange(rowNumber int) string {
	return fmt.Sprintf("%s!A%d:H%d", r.sheetName, rowNumber, rowNumber)
}

func (r *Repository) appendRange() string {
	return fmt.Sprintf("%s!A:H", r.sheetName)
}

// ReadAll fetches every data row (the header is excluded by the range),
// pads short rows to the fixed column count, and derives row numbers
// starting at the first data row. An empty sheet yields an empty slice.
func (r *Repository) ReadAll(ctx context.Context) ([]models.Recording, error) {
	client := r.clients.Tabular(ctx)
	if client == nil {
		return nil, ErrNoClient
	}
	values, err := client.GetRange(ctx, r.spreadsheetID, r.dataRange())
	if err != nil {
		r.logger.Error("read sheet failed", zap.Error(err))
		return nil, err
	}
	rows := make([]models.Recording, 0, len(values))
	for i, cells := range values {
		rows = append(rows, models.FromValues(cells, models.FirstDataRow+i))
	}
	return rows, nil
}

// Append writes one new row at the end of the sheet. The assigned row number
// is not reported; callers re-read to learn it.
func (r *Repository) Append(ctx context.Context, rec models.Recording) bool {
	client := r.clients.Tabular(ctx)
	if client == nil {
		return false
	}
	if err := client.AppendRange(ctx, r.spreadsheetID, r.appendRange(), [][]string{rec.Values()}); err != nil {
		r.logger.Error("append row failed", zap.Error(err))
		return false
	}
	return true
}

// Update overwrites the full row at rowNumber. All eight columns are
// written; partial updates are not supported.
func (r *Repository) Update(ctx context.Context, rowNumber int, rec models.Recording) bool {
	client := r.clients.Tabular(ctx)
	if client == nil {
		return false
	}
	if err := client.UpdateRange(ctx, r.spreadsheetID, r.rowRange(rowNumber), [][]string{rec.Values()}); err != nil {
		r.logger.Error("update row failed", zap.Int("row", rowNumber), zap.Error(err))
		return false
	}
	return true
}

// Delete removes the row at rowNumber. Every subsequent row shifts up by
// one in the backing store; callers holding row numbers must re-read.
func (r *Repository) Delete(ctx context.Context, rowNumber int) bool {
	client := r.clients.Tabular(ctx)
	if client == nil {
		return false
	}
	if err := client.DeleteRow(ctx, r.spreadsheetID, int64(rowNumber)); err != nil {
		r.logger.Error("delete row failed", zap.Int("row", rowNumber), zap.Error(err))
		return false
	}
	return true
}
