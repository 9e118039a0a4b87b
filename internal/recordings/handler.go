package recordings

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/audiohub/backend/internal/models"
	"github.com/audiohub/backend/internal/playback"
	"github.com/audiohub/backend/pkg/response"
)

const topRecordingsN = 10

// Handler exposes the recording library over HTTP.
type Handler struct {
	repo          *Repository
	objects       playback.ObjectSource
	categories    []string
	searchEnabled bool
	filterEnabled bool
	logger        *zap.Logger
}

// NewHandler creates a recordings handler.
func NewHandler(repo *Repository, objects playback.ObjectSource, categories []string, searchEnabled, filterEnabled bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:          repo,
		objects:       objects,
		categories:    categories,
		searchEnabled: searchEnabled,
		filterEnabled: filterEnabled,
		logger:        logger,
	}
}

func (h *Handler) viewQuery(c *gin.Context) ViewQuery {
	q := ViewQuery{Sort: ParseSortOrder(c.Query("sort"))}
	if h.filterEnabled {
		q.Categories = c.QueryArray("category")
	}
	if h.searchEnabled {
		q.Search = c.Query("search")
	}
	return q
}

func (h *Handler) readAll(c *gin.Context) ([]models.Recording, bool) {
	rows, err := h.repo.ReadAll(c.Request.Context())
	if err == ErrNoClient {
		response.ServiceUnavailable(c, "google sheets not connected; upload a service account in settings")
		return nil, false
	}
	if err != nil {
		response.BadGateway(c, "failed to read recordings from google sheets")
		return nil, false
	}
	return rows, true
}

// List handles GET /recordings with optional category, search, and sort
// query parameters. The response reports filtered vs total counts.
func (h *Handler) List(c *gin.Context) {
	rows, ok := h.readAll(c)
	if !ok {
		return
	}
	visible := View(rows, h.viewQuery(c))
	response.OK(c, gin.H{
		"recordings": visible,
		"total":      len(rows),
		"showing":    len(visible),
	})
}

// Stats handles GET /recordings/stats, the dashboard metric cards.
func (h *Handler) Stats(c *gin.Context) {
	rows, ok := h.readAll(c)
	if !ok {
		return
	}
	response.OK(c, ComputeStats(rows, time.Now()))
}

// Analytics handles GET /recordings/analytics: top recordings, category
// insights, and daily counts.
func (h *Handler) Analytics(c *gin.Context) {
	rows, ok := h.readAll(c)
	if !ok {
		return
	}
	response.OK(c, ComputeAnalytics(rows, h.categories, topRecordingsN))
}

// ExportCSV handles GET /recordings/export. It serializes the currently
// visible rows (same filters as List) without the row number column.
func (h *Handler) ExportCSV(c *gin.Context) {
	rows, ok := h.readAll(c)
	if !ok {
		return
	}
	visible := View(rows, h.viewQuery(c))

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="recordings.csv"`)
	c.Status(http.StatusOK)
	w := csv.NewWriter(c.Writer)
	_ = w.Write(models.Headers)
	for _, r := range visible {
		_ = w.Write(r.Values()[:models.NumColumns])
	}
	w.Flush()
}

type updateRequest struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title" binding:"required"`
	Category  string `json:"category"`
	Filename  string `json:"filename"`
	Duration  string `json:"duration"`
	Words     string `json:"words"`
	DriveLink string `json:"drive_link"`
	SheetLink string `json:"sheet_link"`
	// Optional stale-row guard: when set, the row at the target number must
	// still carry this title/timestamp or the update is refused.
	ExpectTitle     string `json:"expect_title"`
	ExpectTimestamp string `json:"expect_timestamp"`
}

func (h *Handler) rowParam(c *gin.Context) (int, bool) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil || row < models.FirstDataRow {
		response.BadRequest(c, fmt.Sprintf("invalid row number (must be >= %d)", models.FirstDataRow))
		return 0, false
	}
	return row, true
}

// findRow returns the current row at the given number, re-reading the sheet.
func findRow(rows []models.Recording, rowNumber int) *models.Recording {
	for i := range rows {
		if rows[i].RowNumber == rowNumber {
			return &rows[i]
		}
	}
	return nil
}

// Update handles PUT /recordings/:row. The full eight-column row is
// rewritten; partial updates are not supported.
func (h *Handler) Update(c *gin.Context) {
	row, ok := h.rowParam(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid body: "+err.Error())
		return
	}

	rows, ok := h.readAll(c)
	if !ok {
		return
	}
	current := findRow(rows, row)
	if current == nil {
		response.NotFound(c, "row not found")
		return
	}
	if req.ExpectTitle != "" && current.Title != req.ExpectTitle {
		response.Conflict(c, "row has changed since it was read; refresh and retry")
		return
	}
	if req.ExpectTimestamp != "" && current.Timestamp != req.ExpectTimestamp {
		response.Conflict(c, "row has changed since it was read; refresh and retry")
		return
	}

	rec := models.Recording{
		Timestamp: req.Timestamp,
		Title:     req.Title,
		Category:  req.Category,
		Filename:  req.Filename,
		Duration:  req.Duration,
		Words:     req.Words,
		DriveLink: req.DriveLink,
		SheetLink: req.SheetLink,
	}
	if rec.Timestamp == "" {
		rec.Timestamp = current.Timestamp
	}
	if !h.repo.Update(c.Request.Context(), row, rec) {
		response.BadGateway(c, "failed to update row in google sheets")
		return
	}
	h.logger.Info("row updated", zap.Int("row", row))
	response.OK(c, gin.H{"updated": true, "row_number": row})
}

// Delete handles DELETE /recordings/:row. Rows after the deleted position
// shift up by one, so clients must re-sync afterwards. Optional
// expect_title/expect_timestamp query parameters guard against acting on a
// stale row number.
func (h *Handler) Delete(c *gin.Context) {
	row, ok := h.rowParam(c)
	if !ok {
		return
	}
	rows, ok := h.readAll(c)
	if !ok {
		return
	}
	current := findRow(rows, row)
	if current == nil {
		response.NotFound(c, "row not found")
		return
	}
	if v := c.Query("expect_title"); v != "" && current.Title != v {
		response.Conflict(c, "row has changed since it was read; refresh and retry")
		return
	}
	if v := c.Query("expect_timestamp"); v != "" && current.Timestamp != v {
		response.Conflict(c, "row has changed since it was read; refresh and retry")
		return
	}
	if !h.repo.Delete(c.Request.Context(), row) {
		response.BadGateway(c, "failed to delete row in google sheets")
		return
	}
	h.logger.Info("row deleted", zap.Int("row", row))
	response.OK(c, gin.H{"deleted": true, "row_number": row})
}

// Append handles POST /recordings: manual entry of a row. The assigned row
// number is not returned; clients re-read the list to learn it.
func (h *Handler) Append(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid body: "+err.Error())
		return
	}
	rec := models.Recording{
		Timestamp: req.Timestamp,
		Title:     req.Title,
		Category:  req.Category,
		Filename:  req.Filename,
		Duration:  req.Duration,
		Words:     req.Words,
		DriveLink: req.DriveLink,
		SheetLink: req.SheetLink,
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().Format("2006-01-02 15:04:05")
	}
	if h.repo.clients.Tabular(c.Request.Context()) == nil {
		response.ServiceUnavailable(c, "google sheets not connected; upload a service account in settings")
		return
	}
	if !h.repo.Append(c.Request.Context(), rec) {
		response.BadGateway(c, "failed to append row to google sheets")
		return
	}
	response.Created(c, gin.H{"appended": true})
}

// Audio handles GET /recordings/:row/audio, streaming the row's Drive audio
// for inline playback.
func (h *Handler) Audio(c *gin.Context) {
	row, ok := h.rowParam(c)
	if !ok {
		return
	}
	rows, ok := h.readAll(c)
	if !ok {
		return
	}
	current := findRow(rows, row)
	if current == nil {
		response.NotFound(c, "row not found")
		return
	}
	if current.DriveLink == "" {
		response.NotFound(c, "no audio link available for this recording")
		return
	}
	fileID := playback.ExtractFileID(current.DriveLink)
	if fileID == "" {
		response.UnprocessableEntity(c, "could not extract a file ID from the drive link")
		return
	}
	data, err := playback.Fetch(c.Request.Context(), h.objects, fileID)
	if err != nil {
		h.logger.Warn("audio fetch failed", zap.Int("row", row), zap.String("file_id", fileID), zap.Error(err))
		response.BadGateway(c, "failed to load audio from drive; verify the file is shared with the service account")
		return
	}
	c.Header("X-Audio-Size-MB", fmt.Sprintf("%.2f", playback.SizeMB(data)))
	c.Data(http.StatusOK, playback.AudioContentType, data)
}
