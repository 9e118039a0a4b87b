// Package google builds and caches Google Sheets/Drive clients from a
// service account credential, either uploaded by the user or read from a
// local file. Resolution never fails loudly: when no usable credential is
// available the resolver hands back nil clients and dependent features
// present themselves as disabled.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Credential sources, reported by Source.
const (
	SourceUploaded = "uploaded"
	SourceFile     = "file"
)

var requiredBundleKeys = []string{"type", "project_id", "private_key_id", "private_key", "client_email"}

// ValidateBundle checks an uploaded service account JSON for the required
// keys. It does not verify the key material itself; that surfaces later as a
// failed resolution.
func ValidateBundle(raw []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	for _, k := range requiredBundleKeys {
		v, ok := m[k].(string)
		if !ok || v == "" {
			return fmt.Errorf("missing required field %q", k)
		}
	}
	return nil
}

type cacheEntry struct {
	tabular   TabularClient
	object    ObjectClient
	createdAt time.Time
	ttl       time.Duration
}

func (e *cacheEntry) valid(now time.Time) bool {
	return e != nil && now.Sub(e.createdAt) < e.ttl
}

// Resolver produces TabularClient/ObjectClient pairs. An uploaded bundle
// takes priority over the local credential file. Built clients are cached
// for the configured TTL and dropped on upload, disconnect, or expiry.
type Resolver struct {
	file   string
	ttl    time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	bundle []byte
	cached *cacheEntry
	now    func() time.Time
}

// NewResolver creates a resolver reading the credential file at path when no
// bundle has been uploaded.
func NewResolver(file string, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{file: file, ttl: ttl, logger: logger, now: time.Now}
}

// SetBundle validates and stores an uploaded credential bundle, invalidating
// any cached clients. A rejected bundle leaves prior state untouched.
func (r *Resolver) SetBundle(raw []byte) error {
	if err := ValidateBundle(raw); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundle = append([]byte(nil), raw...)
	r.cached = nil
	r.logger.Info("credential bundle uploaded")
	return nil
}

// ClearBundle drops the uploaded bundle and cached clients. Resolution falls
// back to the credential file, if any.
func (r *Resolver) ClearBundle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundle = nil
	r.cached = nil
	r.logger.Info("credential bundle cleared")
}

// Invalidate drops cached clients so the next Resolve rebuilds them.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

// Source reports where the current credential would come from: "uploaded",
// "file", or "" when neither is available.
func (r *Resolver) Source() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bundle) > 0 {
		return SourceUploaded
	}
	if r.file != "" {
		if _, err := os.Stat(r.file); err == nil {
			return SourceFile
		}
	}
	return ""
}

// Resolve returns cached or freshly built clients. Both are nil when no
// credential is available or construction fails; errors are logged, never
// returned.
func (r *Resolver) Resolve(ctx context.Context) (TabularClient, ObjectClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached.valid(r.now()) {
		return r.cached.tabular, r.cached.object
	}
	r.cached = nil

	raw := r.bundle
	if len(raw) == 0 {
		if r.file == "" {
			return nil, nil
		}
		data, err := os.ReadFile(r.file)
		if err != nil {
			r.logger.Warn("credential file unreadable", zap.String("path", r.file), zap.Error(err))
			return nil, nil
		}
		raw = data
	}
	if err := ValidateBundle(raw); err != nil {
		r.logger.Warn("credential rejected", zap.Error(err))
		return nil, nil
	}

	opts := []option.ClientOption{
		option.WithCredentialsJSON(raw),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveReadonlyScope),
	}
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		r.logger.Warn("sheets client unavailable", zap.Error(err))
		return nil, nil
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		r.logger.Warn("drive client unavailable", zap.Error(err))
		return nil, nil
	}

	r.cached = &cacheEntry{
		tabular:   &sheetsClient{svc: sheetsSvc},
		object:    &driveClient{svc: driveSvc},
		createdAt: r.now(),
		ttl:       r.ttl,
	}
	return r.cached.tabular, r.cached.object
}

// Tabular resolves only the spreadsheet client.
func (r *Resolver) Tabular(ctx context.Context) TabularClient {
	t, _ := r.Resolve(ctx)
	return t
}

// Object resolves only the Drive client.
func (r *Resolver) Object(ctx context.Context) ObjectClient {
	_, o := r.Resolve(ctx)
	return o
}
