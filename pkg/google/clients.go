package google

import (
	"context"
	"fmt"
	"io"

	drive "google.golang.org/api/drive/v3"
	sheets "google.golang.org/api/sheets/v4"
)

// TabularClient reads and mutates rows in the backing spreadsheet. Ranges use
// A1 notation (e.g. "Recordings!A2:H"). Row numbers are 1-based sheet
// positions, so the first data row below the header is row 2.
type TabularClient interface {
	GetRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
	UpdateRange(ctx context.Context, spreadsheetID, writeRange string, values [][]string) error
	AppendRange(ctx context.Context, spreadsheetID, appendRange string, values [][]string) error
	// DeleteRow removes one row; every following row shifts up by one.
	DeleteRow(ctx context.Context, spreadsheetID string, rowNumber int64) error
}

// ObjectClient downloads stored audio binaries by file ID.
type ObjectClient interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

type sheetsClient struct {
	svc *sheets.Service
}

func (c *sheetsClient) GetRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get %s: %w", readRange, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, fmt.Sprint(v))
		}
		out = append(out, cells)
	}
	return out, nil
}

func (c *sheetsClient) UpdateRange(ctx context.Context, spreadsheetID, writeRange string, values [][]string) error {
	body := &sheets.ValueRange{Values: toCellValues(values)}
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, body).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets update %s: %w", writeRange, err)
	}
	return nil
}

func (c *sheetsClient) AppendRange(ctx context.Context, spreadsheetID, appendRange string, values [][]string) error {
	body := &sheets.ValueRange{Values: toCellValues(values)}
	_, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, appendRange, body).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets append %s: %w", appendRange, err)
	}
	return nil
}

func (c *sheetsClient) DeleteRow(ctx context.Context, spreadsheetID string, rowNumber int64) error {
	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.sheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets metadata: %w", err)
	}
	if len(meta.Sheets) == 0 {
		return fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}
	sheetID := meta.Sheets[0].Properties.SheetId
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: rowNumber - 1,
					EndIndex:   rowNumber,
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets delete row %d: %w", rowNumber, err)
	}
	return nil
}

func toCellValues(values [][]string) [][]interface{} {
	out := make([][]interface{}, len(values))
	for i, row := range values {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

type driveClient struct {
	svc *drive.Service
}

func (c *driveClient) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drive read %s: %w", fileID, err)
	}
	return data, nil
}
