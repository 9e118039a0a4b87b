package recordings

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/audiohub/backend/internal/models"
	"github.com/audiohub/backend/pkg/google"
)

// fakeSheet is an in-memory stand-in for the spreadsheet data region
// (everything below the header row). Deleting a row shifts the rest up,
// matching the backing store's semantics.
type fakeSheet struct {
	rows [][]string
	fail bool
}

var rangeRow = regexp.MustCompile(`!A(\d+)`)

func (f *fakeSheet) rowIndex(rng string) (int, error) {
	m := rangeRow.FindStringSubmatch(rng)
	if m == nil {
		return 0, fmt.Errorf("unexpected range %q", rng)
	}
	var n int
	fmt.Sscanf(m[1], "%d", &n)
	return n - models.FirstDataRow, nil
}

func (f *fakeSheet) GetRange(ctx context.Context, id, rng string) ([][]string, error) {
	if f.fail {
		return nil, fmt.Errorf("remote rejection")
	}
	out := make([][]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (f *fakeSheet) UpdateRange(ctx context.Context, id, rng string, values [][]string) error {
	if f.fail {
		return fmt.Errorf("remote rejection")
	}
	idx, err := f.rowIndex(rng)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(f.rows) {
		return fmt.Errorf("row %d out of range", idx)
	}
	f.rows[idx] = append([]string(nil), values[0]...)
	return nil
}

func (f *fakeSheet) AppendRange(ctx context.Context, id, rng string, values [][]string) error {
	if f.fail {
		return fmt.Errorf("remote rejection")
	}
	for _, v := range values {
		f.rows = append(f.rows, append([]string(nil), v...))
	}
	return nil
}

func (f *fakeSheet) DeleteRow(ctx context.Context, id string, rowNumber int64) error {
	if f.fail {
		return fmt.Errorf("remote rejection")
	}
	idx := int(rowNumber) - models.FirstDataRow
	if idx < 0 || idx >= len(f.rows) {
		return fmt.Errorf("row %d out of range", rowNumber)
	}
	f.rows = append(f.rows[:idx], f.rows[idx+1:]...)
	return nil
}

type fakeSource struct {
	client google.TabularClient
}

func (s *fakeSource) Tabular(ctx context.Context) google.TabularClient { return s.client }

func newTestRepo(t *testing.T, sheet *fakeSheet) *Repository {
	t.Helper()
	var src fakeSource
	if sheet != nil {
		src.client = sheet
	}
	return NewRepository(&src, "sheet-id", "Recordings", nil)
}

func rec(ts, title, category, words string) []string {
	return []string{ts, title, category, "f.wav", "1:00", words, "", ""}
}

func TestReadAllPadsAndNumbers(t *testing.T) {
	sheet := &fakeSheet{rows: [][]string{
		rec("2025-01-01 09:00:00", "First", "Notes", "10"),
		{"2025-01-02 09:00:00", "Short row"},
		rec("2025-01-03 09:00:00", "Third", "Podcast", "1,234"),
	}}
	repo := newTestRepo(t, sheet)

	rows, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, r := range rows {
		if want := models.FirstDataRow + i; r.RowNumber != want {
			t.Errorf("row %d number = %d, want %d", i, r.RowNumber, want)
		}
		if got := len(r.Values()); got != models.NumColumns {
			t.Errorf("row %d has %d columns after padding, want %d", i, got, models.NumColumns)
		}
	}
	if rows[1].Category != "" || rows[1].Title != "Short row" {
		t.Errorf("short row not padded correctly: %+v", rows[1])
	}
}

func TestReadAllEmptySheet(t *testing.T) {
	repo := newTestRepo(t, &fakeSheet{})
	rows, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll on empty sheet: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}

func TestReadAllNoClient(t *testing.T) {
	repo := newTestRepo(t, nil)
	if _, err := repo.ReadAll(context.Background()); err != ErrNoClient {
		t.Fatalf("err = %v, want ErrNoClient", err)
	}
}

func TestDeleteShiftsRowNumbers(t *testing.T) {
	sheet := &fakeSheet{rows: [][]string{
		rec("2025-01-01 09:00:00", "A", "Notes", "1"),
		rec("2025-01-02 09:00:00", "B", "Notes", "2"),
		rec("2025-01-03 09:00:00", "C", "Notes", "3"),
		rec("2025-01-04 09:00:00", "D", "Notes", "4"),
	}}
	repo := newTestRepo(t, sheet)

	if !repo.Delete(context.Background(), 3) {
		t.Fatal("Delete returned false")
	}
	rows, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows after delete, want 3", len(rows))
	}
	wantTitles := []string{"A", "C", "D"}
	seen := map[int]bool{}
	for i, r := range rows {
		if r.Title != wantTitles[i] {
			t.Errorf("row %d title = %q, want %q", i, r.Title, wantTitles[i])
		}
		if want := models.FirstDataRow + i; r.RowNumber != want {
			t.Errorf("row %d number = %d, want %d (no skips or duplicates)", i, r.RowNumber, want)
		}
		if seen[r.RowNumber] {
			t.Errorf("duplicate row number %d", r.RowNumber)
		}
		seen[r.RowNumber] = true
	}
}

func TestAppendThenReadAssignsNextRow(t *testing.T) {
	sheet := &fakeSheet{rows: [][]string{rec("2025-01-01 09:00:00", "A", "Notes", "1")}}
	repo := newTestRepo(t, sheet)

	ok := repo.Append(context.Background(), models.Recording{
		Timestamp: "2025-01-02 09:00:00", Title: "B", Category: "Notes",
	})
	if !ok {
		t.Fatal("Append returned false")
	}
	rows, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 || rows[1].Title != "B" || rows[1].RowNumber != 3 {
		t.Fatalf("append not visible on re-read: %+v", rows)
	}
}

func TestUpdateOverwritesFullRow(t *testing.T) {
	sheet := &fakeSheet{rows: [][]string{
		rec("2025-01-01 09:00:00", "A", "Notes", "1"),
		rec("2025-01-02 09:00:00", "B", "Notes", "2"),
	}}
	repo := newTestRepo(t, sheet)

	ok := repo.Update(context.Background(), 3, models.Recording{
		Timestamp: "2025-01-02 09:00:00", Title: "B2", Category: "Podcast", Words: "99",
	})
	if !ok {
		t.Fatal("Update returned false")
	}
	rows, _ := repo.ReadAll(context.Background())
	if rows[1].Title != "B2" || rows[1].Category != "Podcast" || rows[1].Words != "99" {
		t.Fatalf("row not overwritten: %+v", rows[1])
	}
	if rows[1].Filename != "" {
		t.Fatalf("update must rewrite all columns, got filename %q", rows[1].Filename)
	}
}

func TestMutationsDegradeWithoutClient(t *testing.T) {
	repo := newTestRepo(t, nil)
	ctx := context.Background()
	if repo.Append(ctx, models.Recording{Title: "x"}) {
		t.Error("Append should report false without a client")
	}
	if repo.Update(ctx, 2, models.Recording{Title: "x"}) {
		t.Error("Update should report false without a client")
	}
	if repo.Delete(ctx, 2) {
		t.Error("Delete should report false without a client")
	}
}

func TestMutationsDegradeOnRemoteFailure(t *testing.T) {
	sheet := &fakeSheet{rows: [][]string{rec("2025-01-01 09:00:00", "A", "Notes", "1")}, fail: true}
	repo := newTestRepo(t, sheet)
	ctx := context.Background()
	if repo.Append(ctx, models.Recording{Title: "x"}) || repo.Update(ctx, 2, models.Recording{Title: "x"}) || repo.Delete(ctx, 2) {
		t.Error("mutations should report false on remote failure")
	}
	if _, err := repo.ReadAll(ctx); err == nil {
		t.Error("ReadAll should surface remote failure as error")
	}
}
