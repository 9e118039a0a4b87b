// Package playback resolves Drive share links to file IDs and fetches audio
// bytes for inline players.
package playback

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/audiohub/backend/pkg/google"
)

// ObjectSource resolves the Drive client, or nil when unavailable.
type ObjectSource interface {
	Object(ctx context.Context) google.ObjectClient
}

// Accepted link shapes, tried in order; first match wins.
var (
	filePathID = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	queryID    = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	openID     = regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`)
	bareID     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ExtractFileID pulls a Drive file ID out of a share link. It recognizes
// /file/d/<id> paths, id= query parameters, /open?id= links, and bare IDs.
// Returns "" when nothing matches; callers must treat that as "cannot parse
// link", not attempt a fetch.
func ExtractFileID(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if m := filePathID.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := queryID.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := openID.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if bareID.MatchString(link) {
		return link
	}
	return ""
}

// Fetch downloads the full audio object from Drive.
func Fetch(ctx context.Context, clients ObjectSource, fileID string) ([]byte, error) {
	client := clients.Object(ctx)
	if client == nil {
		return nil, fmt.Errorf("google drive not connected")
	}
	return client.Download(ctx, fileID)
}

// SizeMB reports the payload size in megabytes, for user-facing transparency.
func SizeMB(data []byte) float64 {
	return float64(len(data)) / (1024 * 1024)
}
