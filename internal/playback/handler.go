package playback

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/audiohub/backend/pkg/response"
)

// AudioContentType is the fixed encoding label used for byte-stream handoff
// to the browser player.
const AudioContentType = "audio/wav"

// Handler serves audio bytes for an arbitrary Drive link.
type Handler struct {
	clients ObjectSource
	logger  *zap.Logger
}

// NewHandler creates a playback handler.
func NewHandler(clients ObjectSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{clients: clients, logger: logger}
}

// GetAudio handles GET /audio?link=. It streams the referenced Drive file
// for inline playback and reports the size in MB via header.
func (h *Handler) GetAudio(c *gin.Context) {
	link := c.Query("link")
	if link == "" {
		response.BadRequest(c, "link query parameter required")
		return
	}
	fileID := ExtractFileID(link)
	if fileID == "" {
		response.BadRequest(c, "could not extract a file ID from the drive link")
		return
	}
	data, err := Fetch(c.Request.Context(), h.clients, fileID)
	if err != nil {
		h.logger.Warn("audio fetch failed", zap.String("file_id", fileID), zap.Error(err))
		response.BadGateway(c, "failed to load audio from drive; verify the file is shared with the service account")
		return
	}
	c.Header("X-Audio-Size-MB", fmt.Sprintf("%.2f", SizeMB(data)))
	c.Data(200, AudioContentType, data)
}
