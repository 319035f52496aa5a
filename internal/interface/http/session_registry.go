package http

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
	"github.com/evelynko/skinsight/internal/domain/vision"
)

const sessionIdleTTL = 2 * time.Minute

var (
	errSessionNotFound = errors.New("scan session not found")
	errNoUsableFrames  = errors.New("no admissible frames captured")
)

type captureSession struct {
	userID    int64
	state     vision.Session
	lastFrame []byte
	touchedAt time.Time
}

// sessionRegistry holds in-flight continuous-capture scans. Sessions are
// cheap value state around vision.Tick, so dropping one cancels the scan
// without any cleanup beyond the map delete.
type sessionRegistry struct {
	mu       sync.Mutex
	decoder  scan.FrameDecoder
	sessions map[uuid.UUID]*captureSession
}

func newSessionRegistry(decoder scan.FrameDecoder) *sessionRegistry {
	return &sessionRegistry{
		decoder:  decoder,
		sessions: make(map[uuid.UUID]*captureSession),
	}
}

func (r *sessionRegistry) create(userID int64) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.sessions[id] = &captureSession{userID: userID, touchedAt: time.Now()}
	r.evictIdleLocked(time.Now())
	r.mu.Unlock()
	return id
}

func (r *sessionRegistry) tick(userID int64, id uuid.UUID, image []byte, now time.Time) (vision.Display, error) {
	frame, err := r.decoder.Decode(image)
	if err != nil {
		return vision.Display{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok || sess.userID != userID {
		return vision.Display{}, errSessionNotFound
	}
	state, display := vision.Tick(sess.state, frame, now)
	sess.state = state
	sess.lastFrame = image
	sess.touchedAt = now
	return display, nil
}

// complete removes the session and reduces it to the local estimate plus
// the last captured frame for archiving.
func (r *sessionRegistry) complete(userID int64, id uuid.UUID) (skin.Metrics, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok || sess.userID != userID {
		return skin.Metrics{}, nil, errSessionNotFound
	}
	delete(r.sessions, id)
	local, ok := vision.Finalize(sess.state)
	if !ok {
		return skin.Metrics{}, nil, errNoUsableFrames
	}
	return local, sess.lastFrame, nil
}

func (r *sessionRegistry) cancel(userID int64, id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok || sess.userID != userID {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *sessionRegistry) evictIdleLocked(now time.Time) {
	for id, sess := range r.sessions {
		if now.Sub(sess.touchedAt) > sessionIdleTTL {
			delete(r.sessions, id)
		}
	}
}
