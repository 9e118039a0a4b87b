package transcription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranscribeSuccess(t *testing.T) {
	var got webhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transcription": "hello world",
			"duration":      "0:42",
			"drive_link":    "https://drive.google.com/file/d/ABC/view",
			"doc_link":      "https://docs.google.com/document/d/DEF",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "en", 0, nil)
	audio := []byte{0x52, 0x49, 0x46, 0x46}
	res, err := c.Transcribe(context.Background(), "Standup", "Notes", "a.wav", audio)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Transcription != "hello world" || res.Duration != "0:42" {
		t.Fatalf("result = %+v", res)
	}
	if res.DriveLink == "" || res.DocLink == "" {
		t.Fatalf("metadata missing: %+v", res)
	}
	if got.Title != "Standup" || got.Category != "Notes" || got.Filename != "a.wav" || got.Language != "en" {
		t.Fatalf("request = %+v", got)
	}
	decoded, err := base64.StdEncoding.DecodeString(got.AudioData)
	if err != nil || string(decoded) != string(audio) {
		t.Fatalf("audioData not base64 of payload: %v", err)
	}
}

func TestTranscribeMissingFieldDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"something_else": 1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "en", 0, nil)
	res, err := c.Transcribe(context.Background(), "t", "Notes", "a.wav", []byte{1})
	if err != nil {
		t.Fatalf("missing transcription field should not fail: %v", err)
	}
	if res.Transcription != "" {
		t.Fatalf("transcription = %q, want empty", res.Transcription)
	}
}

func TestTranscribeNon200SurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("workflow crashed"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "en", 0, nil)
	_, err := c.Transcribe(context.Background(), "t", "Notes", "a.wav", []byte{1})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if remote.Status != http.StatusInternalServerError || remote.Body != "workflow crashed" {
		t.Fatalf("remote = %+v", remote)
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnection) {
		t.Fatal("remote rejection must be distinct from timeout and connection errors")
	}
}

func TestTranscribeConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, "en", 0, nil)
	_, err := c.Transcribe(context.Background(), "t", "Notes", "a.wav", []byte{1})
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("err = %v, want ErrConnection", err)
	}
}

func TestTranscribeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() { close(release); srv.Close() }()

	c := NewClient(srv.URL, "en", 50*time.Millisecond, nil)
	_, err := c.Transcribe(context.Background(), "t", "Notes", "a.wav", []byte{1})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestTranscribeUnconfigured(t *testing.T) {
	c := NewClient("", "en", 0, nil)
	if _, err := c.Transcribe(context.Background(), "t", "Notes", "a.wav", []byte{1}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
