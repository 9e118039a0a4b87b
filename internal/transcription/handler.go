package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/audiohub/backend/pkg/response"
)

// SessionHeader carries the caller's session ID; a fresh one is issued when
// absent and echoed back on every reply.
const SessionHeader = "X-Session-ID"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// Handler exposes the session draft and transcription pipeline over HTTP.
type Handler struct {
	sessions         *Manager
	pipeline         *Client
	supportedFormats []string
	sizeWarningMB    int
	logger           *zap.Logger
}

// NewHandler creates a transcription handler.
func NewHandler(sessions *Manager, pipeline *Client, supportedFormats []string, sizeWarningMB int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions:         sessions,
		pipeline:         pipeline,
		supportedFormats: supportedFormats,
		sizeWarningMB:    sizeWarningMB,
		logger:           logger,
	}
}

func (h *Handler) sessionID(c *gin.Context) string {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id = uuid.New().String()
	}
	c.Header(SessionHeader, id)
	return id
}

func (h *Handler) draftView(d Draft) gin.H {
	sizeMB := float64(len(d.Audio)) / (1024 * 1024)
	view := gin.H{
		"session_id":    d.ID,
		"title":         d.Title,
		"category":      d.Category,
		"filename":      d.Filename,
		"stage":         d.Stage,
		"has_audio":     len(d.Audio) > 0,
		"audio_size_mb": sizeMB,
		"size_warning":  sizeMB > float64(h.sizeWarningMB),
		"can_submit":    len(d.Audio) > 0 && d.Title != "" && d.Stage != StageProcessing,
	}
	if d.Transcription != nil {
		text := *d.Transcription
		view["transcription"] = text
		view["words"] = len(strings.Fields(text))
		view["chars"] = len(text)
	}
	if d.ResponseMeta != nil {
		view["response_meta"] = d.ResponseMeta
	}
	return view
}

// GetSession handles GET /session, returning the current draft state.
func (h *Handler) GetSession(c *gin.Context) {
	id := h.sessionID(c)
	response.OK(c, h.draftView(h.sessions.Acquire(id)))
}

type detailsRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// UpdateSession handles PATCH /session, setting title and category.
func (h *Handler) UpdateSession(c *gin.Context) {
	id := h.sessionID(c)
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid body: "+err.Error())
		return
	}
	response.OK(c, h.draftView(h.sessions.SetDetails(id, req.Title, req.Category)))
}

// ResetSession handles POST /session/reset, restoring the draft defaults.
func (h *Handler) ResetSession(c *gin.Context) {
	id := h.sessionID(c)
	response.OK(c, h.draftView(h.sessions.Reset(id)))
}

// UploadAudio handles POST /session/audio: a multipart file upload into the
// draft, with optional title/category form fields.
func (h *Handler) UploadAudio(c *gin.Context) {
	id := h.sessionID(c)
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "audio file required")
		return
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(file.Filename)), ".")
	if !h.formatSupported(ext) {
		response.BadRequest(c, fmt.Sprintf("unsupported audio format %q (accepted: %s)", ext, strings.Join(h.supportedFormats, ", ")))
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}

	h.sessions.SetDetails(id, c.PostForm("title"), c.PostForm("category"))
	d := h.sessions.SetAudio(id, data, file.Filename)
	h.logger.Info("audio uploaded",
		zap.String("session", id),
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size))
	response.OK(c, h.draftView(d))
}

func (h *Handler) formatSupported(ext string) bool {
	for _, f := range h.supportedFormats {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// Transcribe handles POST /session/transcribe. Preconditions (non-empty
// audio and title) are enforced before any network activity; each failure
// class maps to a distinct status.
func (h *Handler) Transcribe(c *gin.Context) {
	id := h.sessionID(c)
	var req detailsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid body: "+err.Error())
			return
		}
		h.sessions.SetDetails(id, req.Title, req.Category)
	}

	draft, err := h.sessions.BeginProcessing(id)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Deliberately not tied to the request context: once submitted there is
	// no client-side cancel, only success, failure, or configured timeout.
	res, err := h.pipeline.Transcribe(context.Background(), draft.Title, draft.Category, draft.Filename, draft.Audio)
	if err != nil {
		h.sessions.FailProcessing(id)
		h.logger.Warn("transcription failed", zap.String("session", id), zap.Error(err))
		var remote *RemoteError
		switch {
		case errors.Is(err, ErrNotConfigured):
			response.ServiceUnavailable(c, err.Error())
		case errors.Is(err, ErrTimeout):
			response.GatewayTimeout(c, "transcription timed out; try a smaller file or raise the configured timeout")
		case errors.Is(err, ErrConnection):
			response.BadGateway(c, "connection error; check the network and the webhook URL")
		case errors.As(err, &remote):
			response.BadGateway(c, err.Error())
		default:
			response.Internal(c, "unexpected transcription error: "+err.Error())
		}
		return
	}

	d := h.sessions.CompleteProcessing(id, res.Transcription, res.Raw)
	response.OK(c, h.draftView(d))
}

// Record handles GET /ws/record, the live microphone capture stream. Binary
// frames are appended to the session draft; a "stop" text frame (or a clean
// close) finalizes the capture with a timestamped filename.
func (h *Handler) Record(c *gin.Context) {
	id := c.Query("session")
	if id == "" {
		id = uuid.New().String()
	}
	h.sessions.Acquire(id)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	_ = conn.WriteJSON(gin.H{"event": "ready", "session_id": id})
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		switch msgType {
		case websocket.BinaryMessage:
			total := h.sessions.AppendAudio(id, data)
			_ = conn.WriteJSON(gin.H{
				"event":         "chunk",
				"total_bytes":   total,
				"audio_size_mb": float64(total) / (1024 * 1024),
			})
		case websocket.TextMessage:
			if strings.TrimSpace(string(data)) == "stop" {
				filename := captureFilename(time.Now())
				h.sessions.SetFilename(id, filename)
				_ = conn.WriteJSON(gin.H{"event": "stopped", "session_id": id, "filename": filename})
				return
			}
		}
	}
	// connection dropped mid-capture; keep what arrived
	h.sessions.SetFilename(id, captureFilename(time.Now()))
}

func captureFilename(now time.Time) string {
	return "recording_" + now.Format("20060102_150405") + ".wav"
}
