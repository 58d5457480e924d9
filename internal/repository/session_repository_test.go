package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xenarc-chat-demo/backend/internal/models"
	"xenarc-chat-demo/backend/internal/store"
	"xenarc-chat-demo/backend/pkg/logger"
)

func newTestRepo(t *testing.T) (*SessionRepository, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(logger.NewNop())
	repo, err := NewSessionRepository(st, logger.NewNop())
	require.NoError(t, err)
	return repo, st
}

func TestCreateSessionOrderingAndUniqueness(t *testing.T) {
	repo, _ := newTestRepo(t)

	var created []*models.ChatSession
	for i := 0; i < 5; i++ {
		s, err := repo.CreateSession()
		require.NoError(t, err)
		created = append(created, s)
	}

	sessions := repo.Sessions()
	require.Len(t, sessions, 5)

	// Newest-created first
	for i, s := range sessions {
		assert.Equal(t, created[len(created)-1-i].ID, s.ID)
	}

	seen := make(map[string]bool)
	for _, s := range sessions {
		assert.False(t, seen[s.ID], "duplicate session id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestCreateSessionSeedsGreetingAndBecomesCurrent(t *testing.T) {
	repo, _ := newTestRepo(t)

	s, err := repo.CreateSession()
	require.NoError(t, err)

	require.Len(t, s.Messages, 1)
	assert.Equal(t, models.RoleAssistant, s.Messages[0].Role)
	assert.Equal(t, models.InitialGreeting, s.Messages[0].Content)
	assert.Equal(t, models.DefaultSessionTitle, s.Title)

	current := repo.CurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, s.ID, current.ID)
}

func TestUpdateSessionReplacesMatchingEntry(t *testing.T) {
	repo, _ := newTestRepo(t)

	s, err := repo.CreateSession()
	require.NoError(t, err)

	s.Title = "Renamed"
	s.Append(models.NewMessage(models.RoleUser, "hello"))
	require.NoError(t, repo.UpdateSession(s))

	got := repo.GetSession(s.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Title)
	assert.Len(t, got.Messages, 2)

	// The current pointer tracks the update
	current := repo.CurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, "Renamed", current.Title)
}

func TestUpdateSessionUnknownIDIsNoOp(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.CreateSession()
	require.NoError(t, err)

	ghost := models.NewChatSession()
	ghost.Title = "Ghost"
	require.NoError(t, repo.UpdateSession(ghost))

	assert.Len(t, repo.Sessions(), 1)
	assert.Nil(t, repo.GetSession(ghost.ID))
}

func TestDeleteCurrentSessionFallsToNextRemaining(t *testing.T) {
	repo, _ := newTestRepo(t)

	first, err := repo.CreateSession()
	require.NoError(t, err)
	second, err := repo.CreateSession()
	require.NoError(t, err)

	// second is newest, hence current and first in the collection
	require.Equal(t, second.ID, repo.CurrentSession().ID)

	require.NoError(t, repo.DeleteSession(second.ID))

	current := repo.CurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, first.ID, current.ID)
}

func TestDeleteNonCurrentSessionKeepsPointer(t *testing.T) {
	repo, _ := newTestRepo(t)

	first, err := repo.CreateSession()
	require.NoError(t, err)
	second, err := repo.CreateSession()
	require.NoError(t, err)

	require.NoError(t, repo.DeleteSession(first.ID))

	current := repo.CurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, second.ID, current.ID)
}

func TestDeleteLastSessionClearsPointer(t *testing.T) {
	repo, _ := newTestRepo(t)

	s, err := repo.CreateSession()
	require.NoError(t, err)
	require.NoError(t, repo.DeleteSession(s.ID))

	assert.Nil(t, repo.CurrentSession())
	assert.Empty(t, repo.Sessions())
}

func TestClearSessionsNoResurrectionAfterReload(t *testing.T) {
	repo, st := newTestRepo(t)

	_, err := repo.CreateSession()
	require.NoError(t, err)
	_, err = repo.CreateSession()
	require.NoError(t, err)

	require.NoError(t, repo.ClearSessions())

	// A fresh repository over the same store sees nothing
	reloaded, err := NewSessionRepository(st, logger.NewNop())
	require.NoError(t, err)
	assert.Empty(t, reloaded.Sessions())
	assert.Nil(t, reloaded.CurrentSession())
}

func TestPersistedRoundTripPreservesAllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	st, err := store.NewFileStore(path, logger.NewNop())
	require.NoError(t, err)

	repo, err := NewSessionRepository(st, logger.NewNop())
	require.NoError(t, err)

	var want []*models.ChatSession
	for i := 0; i < 3; i++ {
		s, err := repo.CreateSession()
		require.NoError(t, err)
		s.Append(models.NewMessage(models.RoleUser, "question"))
		s.Append(models.NewErrorMessage("backend unavailable"))
		require.NoError(t, repo.UpdateSession(s))
		want = append(want, repo.GetSession(s.ID))
	}

	// Reload from disk through a fresh store and repository
	st2, err := store.NewFileStore(path, logger.NewNop())
	require.NoError(t, err)
	reloaded, err := NewSessionRepository(st2, logger.NewNop())
	require.NoError(t, err)

	for _, w := range want {
		got := reloaded.GetSession(w.ID)
		require.NotNil(t, got)
		assert.Equal(t, w, got)
	}

	current := reloaded.CurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, want[len(want)-1].ID, current.ID)
}

func TestCorruptPersistedStateDegradesToEmpty(t *testing.T) {
	st := store.NewMemoryStore(logger.NewNop())
	require.NoError(t, st.Save("chat_sessions", "not an array"))

	repo, err := NewSessionRepository(st, logger.NewNop())
	require.NoError(t, err)
	assert.Empty(t, repo.Sessions())
	assert.Nil(t, repo.CurrentSession())
}
