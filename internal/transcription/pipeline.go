package transcription

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Distinct, user-visible failure classes. No automatic retry is performed
// for any of them; the user resubmits.
var (
	ErrNotConfigured = errors.New("transcription webhook URL not configured")
	ErrTimeout       = errors.New("transcription request timed out")
	ErrConnection    = errors.New("cannot reach transcription service")
)

// RemoteError is a non-2xx reply from the transcription service; the raw
// status and body are kept for diagnosis.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("transcription service returned status %d: %s", e.Status, e.Body)
}

// Result is a successful transcription reply. Transcription may be empty;
// a missing field degrades to "" rather than failing. Raw carries the whole
// response for metadata the UI may want later.
type Result struct {
	Transcription string                 `json:"transcription"`
	Duration      string                 `json:"duration,omitempty"`
	DriveLink     string                 `json:"drive_link,omitempty"`
	DocLink       string                 `json:"doc_link,omitempty"`
	Raw           map[string]interface{} `json:"-"`
}

// Client posts audio to the remote transcription webhook. The remote side
// also persists the resulting row and uploads the file; this client only
// interprets the reply.
type Client struct {
	webhookURL string
	language   string
	http       *http.Client
	logger     *zap.Logger
}

// NewClient creates a pipeline client. A zero timeout means no client-side
// limit; large recordings may legitimately run for many minutes.
func NewClient(webhookURL, language string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		webhookURL: webhookURL,
		language:   language,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type webhookRequest struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Filename  string `json:"filename"`
	AudioData string `json:"audioData"`
	Language  string `json:"language"`
}

// Transcribe base64-encodes the audio, posts the JSON payload, and
// interprets the reply. Callers must have validated title and audio first.
func (c *Client) Transcribe(ctx context.Context, title, category, filename string, audio []byte) (*Result, error) {
	if c.webhookURL == "" {
		return nil, ErrNotConfigured
	}
	payload := webhookRequest{
		Title:     title,
		Category:  category,
		Filename:  filename,
		AudioData: base64.StdEncoding.EncodeToString(audio),
		Language:  c.language,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("submitting transcription",
		zap.String("title", title),
		zap.String("category", category),
		zap.Int("audio_bytes", len(audio)))
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Status: resp.StatusCode, Body: string(raw)}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	res := &Result{
		Transcription: stringField(data, "transcription"),
		Duration:      stringField(data, "duration"),
		DriveLink:     stringField(data, "drive_link"),
		DocLink:       stringField(data, "doc_link"),
		Raw:           data,
	}
	c.logger.Info("transcription completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(res.Transcription)))
	return res, nil
}

// stringField reads an optional string field; anything missing or
// non-string degrades to "".
func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
