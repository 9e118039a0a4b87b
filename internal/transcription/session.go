package transcription

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stage is the draft lifecycle: idle until submitted, processing while the
// remote call is in flight, complete after a successful transcription.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageProcessing Stage = "processing"
	StageComplete   Stage = "complete"
)

// Draft is the in-progress recording being authored in one session. It is
// never persisted by this app; persistence happens as a side effect of the
// remote transcription call.
type Draft struct {
	ID            string
	Title         string
	Category      string
	Filename      string
	Audio         []byte
	Stage         Stage
	Transcription *string
	ResponseMeta  map[string]interface{}
	UpdatedAt     time.Time
}

// Submission preconditions; enforced before any network call.
var (
	ErrNoAudio    = errors.New("no audio captured or uploaded")
	ErrNoTitle    = errors.New("title is required")
	ErrProcessing = errors.New("a transcription is already in progress")
)

// Manager owns session drafts keyed by session ID. All mutation goes
// through its methods; callers only ever see snapshots.
type Manager struct {
	defaultCategory string

	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewManager creates a session manager.
func NewManager(defaultCategory string) *Manager {
	return &Manager{defaultCategory: defaultCategory, drafts: make(map[string]*Draft)}
}

func (m *Manager) newDraft(id string) *Draft {
	return &Draft{
		ID:        id,
		Category:  m.defaultCategory,
		Stage:     StageIdle,
		UpdatedAt: time.Now(),
	}
}

// locked; creates the draft on first contact
func (m *Manager) draft(id string) *Draft {
	d, ok := m.drafts[id]
	if !ok {
		d = m.newDraft(id)
		m.drafts[id] = d
	}
	return d
}

func snapshot(d *Draft) Draft {
	out := *d
	out.Audio = append([]byte(nil), d.Audio...)
	if d.Transcription != nil {
		t := *d.Transcription
		out.Transcription = &t
	}
	return out
}

// Acquire returns the draft for id, creating it (and a fresh ID when id is
// empty) on first contact.
func (m *Manager) Acquire(id string) Draft {
	if id == "" {
		id = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.draft(id))
}

// SetDetails updates title and category. Empty values leave the current
// ones in place.
func (m *Manager) SetDetails(id, title, category string) Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.draft(id)
	if title != "" {
		d.Title = title
	}
	if category != "" {
		d.Category = category
	}
	d.UpdatedAt = time.Now()
	return snapshot(d)
}

// SetAudio replaces the draft audio, e.g. from a file upload. Starting new
// audio clears any previous transcription result.
func (m *Manager) SetAudio(id string, audio []byte, filename string) Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.draft(id)
	d.Audio = append([]byte(nil), audio...)
	d.Filename = filename
	d.Stage = StageIdle
	d.Transcription = nil
	d.ResponseMeta = nil
	d.UpdatedAt = time.Now()
	return snapshot(d)
}

// AppendAudio adds a live capture chunk to the draft.
func (m *Manager) AppendAudio(id string, chunk []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.draft(id)
	if d.Stage != StageProcessing {
		d.Audio = append(d.Audio, chunk...)
		d.UpdatedAt = time.Now()
	}
	return len(d.Audio)
}

// SetFilename assigns the capture filename, e.g. when a live recording ends.
func (m *Manager) SetFilename(id, filename string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft(id).Filename = filename
}

// BeginProcessing validates the submission preconditions and moves the
// draft to processing, returning a snapshot for the pipeline. No network
// call may happen unless this succeeds.
func (m *Manager) BeginProcessing(id string) (Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.draft(id)
	if d.Stage == StageProcessing {
		return Draft{}, ErrProcessing
	}
	if len(d.Audio) == 0 {
		return Draft{}, ErrNoAudio
	}
	if d.Title == "" {
		return Draft{}, ErrNoTitle
	}
	d.Stage = StageProcessing
	d.UpdatedAt = time.Now()
	return snapshot(d), nil
}

// CompleteProcessing records a successful transcription, replacing any
// prior result.
func (m *Manager) CompleteProcessing(id, text string, meta map[string]interface{}) Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.draft(id)
	d.Transcription = &text
	d.ResponseMeta = meta
	d.Stage = StageComplete
	d.UpdatedAt = time.Now()
	return snapshot(d)
}

// FailProcessing returns the draft to idle. The previous transcription, if
// any, is left untouched.
func (m *Manager) FailProcessing(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.draft(id)
	d.Stage = StageIdle
	d.UpdatedAt = time.Now()
}

// Reset restores the draft to its named defaults for a new recording.
func (m *Manager) Reset(id string) Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.newDraft(id)
	m.drafts[id] = d
	return snapshot(d)
}
