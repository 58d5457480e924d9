// Package repository owns the chat session collection and the
// current-session pointer, persisting both through the key-value store.
package repository

import (
	"sync"

	"xenarc-chat-demo/backend/internal/models"
	"xenarc-chat-demo/backend/internal/store"
	"xenarc-chat-demo/backend/pkg/logger"
)

// Persistence keys. The current session is stored by id only; storing
// the whole session would duplicate state held in the array.
const (
	sessionsKey  = "chat_sessions"
	currentIDKey = "current_session_id"
)

// SessionRepository manages the ordered session collection
// (newest-created first) and which session is active. Every mutation is
// re-persisted through the store.
type SessionRepository struct {
	mu        sync.RWMutex
	store     store.Store
	logger    *logger.Logger
	sessions  []*models.ChatSession
	currentID string
}

// NewSessionRepository creates a repository and loads any persisted
// state. Missing or corrupt persisted data degrades to an empty
// collection.
func NewSessionRepository(st store.Store, log *logger.Logger) (*SessionRepository, error) {
	r := &SessionRepository{
		store:  st,
		logger: log,
	}

	var persisted []*models.ChatSession
	found, err := st.Load(sessionsKey, &persisted)
	if err != nil {
		return nil, err
	}
	if found {
		r.sessions = persisted
	}

	var currentID string
	found, err = st.Load(currentIDKey, &currentID)
	if err != nil {
		return nil, err
	}
	if found && r.byIDLocked(currentID) != nil {
		r.currentID = currentID
	}

	return r, nil
}

// CreateSession builds a new session seeded with the assistant
// greeting, prepends it to the collection, persists, and makes it
// current.
func (r *SessionRepository) CreateSession() (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := models.NewChatSession()
	r.sessions = append([]*models.ChatSession{session}, r.sessions...)
	r.currentID = session.ID

	if err := r.persistLocked(); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// Sessions returns a snapshot of the collection, newest-created first.
func (r *SessionRepository) Sessions() []*models.ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.ChatSession, len(r.sessions))
	for i, s := range r.sessions {
		out[i] = s.Clone()
	}
	return out
}

// CurrentSession returns the active session, or nil when none is
// selected.
func (r *SessionRepository) CurrentSession() *models.ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s := r.byIDLocked(r.currentID); s != nil {
		return s.Clone()
	}
	return nil
}

// GetSession returns the session with the given id, or nil.
func (r *SessionRepository) GetSession(id string) *models.ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s := r.byIDLocked(id); s != nil {
		return s.Clone()
	}
	return nil
}

// UpdateSession replaces the matching-id entry and persists. Unknown
// ids are a no-op. The current pointer already tracks by id, so an
// updated current session stays current.
func (r *SessionRepository) UpdateSession(session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := false
	for i, s := range r.sessions {
		if s.ID == session.ID {
			r.sessions[i] = session.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		return nil
	}

	return r.persistLocked()
}

// SetCurrentSession updates the active-session pointer and persists it.
// A nil session clears the pointer.
func (r *SessionRepository) SetCurrentSession(session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session == nil {
		r.currentID = ""
	} else {
		r.currentID = session.ID
	}
	return r.persistCurrentLocked()
}

// DeleteSession removes the matching entry. When the deleted session
// was current, the first remaining session becomes current, or none if
// the collection is now empty.
func (r *SessionRepository) DeleteSession(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := make([]*models.ChatSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}
	r.sessions = remaining

	if r.currentID == id {
		if len(remaining) > 0 {
			r.currentID = remaining[0].ID
		} else {
			r.currentID = ""
		}
	}

	return r.persistLocked()
}

// ClearSessions empties the collection and removes the persisted keys
// outright, so a later load cannot resurrect stale data.
func (r *SessionRepository) ClearSessions() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = nil
	r.currentID = ""

	if err := r.store.Delete(sessionsKey); err != nil {
		return err
	}
	return r.store.Delete(currentIDKey)
}

func (r *SessionRepository) byIDLocked(id string) *models.ChatSession {
	if id == "" {
		return nil
	}
	for _, s := range r.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *SessionRepository) persistLocked() error {
	if err := r.store.Save(sessionsKey, r.sessions); err != nil {
		return err
	}
	return r.persistCurrentLocked()
}

func (r *SessionRepository) persistCurrentLocked() error {
	if r.currentID == "" {
		return r.store.Delete(currentIDKey)
	}
	return r.store.Save(currentIDKey, r.currentID)
}
