package player

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ihub/models"
)

// Status represents the current state of a playback session.
type Status string

const (
	StatusLoadingPrimary  Status = "loading_primary"
	StatusLoadingFallback Status = "loading_fallback"
	StatusLoaded          Status = "loaded"
	StatusFailed          Status = "failed"
)

const (
	// DefaultLoadTimeout bounds how long a provider gets to produce a
	// playable frame before the sequencer moves on.
	DefaultLoadTimeout = 10 * time.Second

	maxAttempts = 2
)

var (
	ErrSessionNotFound = errors.New("playback session not found")
	ErrSessionTerminal = errors.New("playback session already settled")
)

// Session is the externally visible state of one playback attempt chain.
type Session struct {
	ID       string   `json:"id"`
	Media    MediaRef `json:"media"`
	Status   Status   `json:"status"`
	Provider Provider `json:"provider"`
	EmbedURL string   `json:"embedUrl"`
	Attempt  int      `json:"attempt"`
	Error    string   `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type sessionEntry struct {
	session Session
	timer   *time.Timer
}

// Service sequences embed providers for playback. Each session starts on the
// primary provider; a load timeout or an explicit error advances it to the
// fallback, and a second failure is terminal. Starting playback for new
// media tears the old session down, so at most one session per title chain
// is ever live.
type Service struct {
	mu          sync.RWMutex
	entries     map[string]*sessionEntry
	byMedia     map[string]string
	loadTimeout time.Duration
}

// NewService creates a playback sequencer. A non-positive timeout falls back
// to DefaultLoadTimeout.
func NewService(loadTimeout time.Duration) *Service {
	if loadTimeout <= 0 {
		loadTimeout = DefaultLoadTimeout
	}
	return &Service{
		entries:     make(map[string]*sessionEntry),
		byMedia:     make(map[string]string),
		loadTimeout: loadTimeout,
	}
}

// Start opens a playback session on the primary provider. Any existing
// session for the same media is cancelled and replaced.
func (s *Service) Start(media MediaRef) (Session, error) {
	if media.ID == "" || (media.MediaType != models.KindMovie && media.MediaType != models.KindSeries) {
		return Session{}, errors.New("media id and a playable type are required")
	}
	if media.MediaType == models.KindSeries {
		if media.Season < 1 {
			media.Season = 1
		}
		if media.Episode < 1 {
			media.Episode = 1
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := media.key()
	if existingID, ok := s.byMedia[key]; ok {
		s.teardownLocked(existingID)
		log.Printf("[player] replaced session %s for media %s", existingID, key)
	}

	embedURL := EmbedURL(ProviderPrimary, media)
	if media.URL != "" {
		embedURL = media.URL
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	entry := &sessionEntry{
		session: Session{
			ID:        id,
			Media:     media,
			Status:    StatusLoadingPrimary,
			Provider:  ProviderPrimary,
			EmbedURL:  embedURL,
			Attempt:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	entry.timer = s.scheduleTimeout(id)

	s.entries[id] = entry
	s.byMedia[key] = id

	log.Printf("[player] session %s started media=%s provider=%s", id, key, ProviderPrimary)
	return entry.session, nil
}

// Get returns a snapshot of the session state.
func (s *Service) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// HandleLoaded records that the current provider produced a playable frame.
// Loaded is terminal: later timeouts or errors no longer move the session,
// and further events get ErrSessionTerminal.
func (s *Service) HandleLoaded(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if entry.session.Status != StatusLoadingPrimary && entry.session.Status != StatusLoadingFallback {
		return entry.session, ErrSessionTerminal
	}

	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}
	entry.session.Status = StatusLoaded
	entry.session.UpdatedAt = time.Now().UTC()
	log.Printf("[player] session %s loaded on %s", id, entry.session.Provider)
	return entry.session, nil
}

// HandleError records a provider failure and advances the sequence.
func (s *Service) HandleError(id, reason string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if entry.session.Status != StatusLoadingPrimary && entry.session.Status != StatusLoadingFallback {
		return entry.session, ErrSessionTerminal
	}

	s.advanceLocked(entry, reason)
	return entry.session, nil
}

// Stop tears a session down, stopping its pending timer.
func (s *Service) Stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.byMedia, entry.session.Media.key())
	s.teardownLocked(id)
}

// scheduleTimeout arms the per-attempt load timer. The callback re-checks
// the session under lock, so a timer that fires after HandleLoaded or a
// teardown is a no-op.
func (s *Service) scheduleTimeout(id string) *time.Timer {
	return time.AfterFunc(s.loadTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		entry, ok := s.entries[id]
		if !ok {
			return
		}
		s.advanceLocked(entry, "load timeout")
	})
}

func (s *Service) advanceLocked(entry *sessionEntry, reason string) {
	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}

	switch entry.session.Status {
	case StatusLoadingPrimary:
		entry.session.Status = StatusLoadingFallback
		entry.session.Provider = ProviderFallback
		entry.session.EmbedURL = EmbedURL(ProviderFallback, entry.session.Media)
		entry.session.Attempt++
		entry.session.UpdatedAt = time.Now().UTC()
		entry.timer = s.scheduleTimeout(entry.session.ID)
		log.Printf("[player] session %s primary failed (%s), trying fallback", entry.session.ID, reason)
	case StatusLoadingFallback:
		entry.session.Status = StatusFailed
		entry.session.Error = reason
		entry.session.UpdatedAt = time.Now().UTC()
		log.Printf("[player] session %s failed after %d attempts: %s", entry.session.ID, maxAttempts, reason)
	default:
		// Loaded and failed are terminal.
	}
}

func (s *Service) teardownLocked(id string) {
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}
	delete(s.entries, id)
}
