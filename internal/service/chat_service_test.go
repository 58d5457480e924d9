package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xenarc-chat-demo/backend/internal/llm"
	"xenarc-chat-demo/backend/internal/models"
	"xenarc-chat-demo/backend/internal/repository"
	"xenarc-chat-demo/backend/internal/store"
	"xenarc-chat-demo/backend/pkg/logger"
	"xenarc-chat-demo/backend/pkg/metrics"
)

// fakeClient records calls and returns a scripted outcome.
type fakeClient struct {
	calls       int
	lastMessage string
	lastHistory []models.Turn
	lastOpts    *llm.Options
	response    string
	err         error
	panics      bool
	onCall      func()
}

func (f *fakeClient) GenerateResponse(message string, history []models.Turn, opts *llm.Options) (*llm.Response, error) {
	f.calls++
	f.lastMessage = message
	f.lastHistory = history
	f.lastOpts = opts
	if f.onCall != nil {
		f.onCall()
	}
	if f.panics {
		panic("scripted panic")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.response}, nil
}

func newTestChatService(t *testing.T, client llm.Client) (*ChatService, *repository.SessionRepository) {
	t.Helper()
	st := store.NewMemoryStore(logger.NewNop())
	repo, err := repository.NewSessionRepository(st, logger.NewNop())
	require.NoError(t, err)
	return NewChatService(repo, client, llm.Options{}, logger.NewNop(), metrics.New()), repo
}

func TestSendMessageEmptyContentIsNoOp(t *testing.T) {
	client := &fakeClient{response: "unused"}
	svc, repo := newTestChatService(t, client)

	for _, content := range []string{"", "   ", "\n\t "} {
		session, err := svc.SendMessage(content, SendOptions{})
		assert.Nil(t, session)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	assert.Zero(t, client.calls)
	assert.Empty(t, repo.Sessions())
	assert.False(t, svc.IsProcessing())
}

func TestSendMessageCreatesSessionWhenNoneCurrent(t *testing.T) {
	client := &fakeClient{response: "generated reply"}
	svc, repo := newTestChatService(t, client)

	session, err := svc.SendMessage("Hello", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, session)

	// greeting, user turn, assistant turn
	require.Len(t, session.Messages, 3)
	assert.Equal(t, models.RoleAssistant, session.Messages[0].Role)
	assert.Equal(t, models.InitialGreeting, session.Messages[0].Content)
	assert.Equal(t, models.RoleUser, session.Messages[1].Role)
	assert.Equal(t, "Hello", session.Messages[1].Content)
	assert.Equal(t, models.RoleAssistant, session.Messages[2].Role)
	assert.Equal(t, "generated reply", session.Messages[2].Content)
	assert.False(t, session.Messages[2].Error)

	assert.Equal(t, "Hello", session.Title)

	// The committed state matches what was returned
	stored := repo.GetSession(session.ID)
	require.NotNil(t, stored)
	assert.Equal(t, session, stored)
}

func TestSendMessageTitleDerivedOnceAndTruncated(t *testing.T) {
	client := &fakeClient{response: "reply"}
	svc, _ := newTestChatService(t, client)

	long := strings.Repeat("abcde", 10) // 50 chars
	session, err := svc.SendMessage(long, SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, long[:30], session.Title)

	session, err = svc.SendMessage("a different message", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, long[:30], session.Title, "title must not change after the first real turn")
}

func TestSendMessageHistoryIsPreAppendUserAssistantOnly(t *testing.T) {
	client := &fakeClient{response: "first answer"}
	svc, _ := newTestChatService(t, client)

	_, err := svc.SendMessage("first question", SendOptions{})
	require.NoError(t, err)

	// First send sees only the greeting
	require.Len(t, client.lastHistory, 1)
	assert.Equal(t, models.Turn{Role: "assistant", Content: models.InitialGreeting}, client.lastHistory[0])

	client.response = "second answer"
	_, err = svc.SendMessage("second question", SendOptions{})
	require.NoError(t, err)

	// Second send sees greeting, first question, first answer, in order
	require.Len(t, client.lastHistory, 3)
	assert.Equal(t, "assistant", client.lastHistory[0].Role)
	assert.Equal(t, models.Turn{Role: "user", Content: "first question"}, client.lastHistory[1])
	assert.Equal(t, models.Turn{Role: "assistant", Content: "first answer"}, client.lastHistory[2])
}

func TestSendMessageFailureAppendsSingleErrorTurn(t *testing.T) {
	client := &fakeClient{err: errors.New("API key not configured. Please contact the administrator.")}
	svc, repo := newTestChatService(t, client)

	session, err := svc.SendMessage("Hello", SendOptions{})
	require.NoError(t, err, "a generation failure is not a pipeline failure")
	require.NotNil(t, session)

	require.Len(t, session.Messages, 3)
	last := session.Messages[2]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.True(t, last.Error)
	assert.Equal(t, "API key not configured. Please contact the administrator.", last.Content)

	assert.Equal(t, 1, client.calls)
	assert.False(t, svc.IsProcessing())

	stored := repo.GetSession(session.ID)
	require.NotNil(t, stored)
	assert.Equal(t, session.Messages, stored.Messages)
}

func TestSendMessagePanicAppendsGenericErrorAndSettles(t *testing.T) {
	client := &fakeClient{panics: true}
	svc, _ := newTestChatService(t, client)

	session, err := svc.SendMessage("Hello", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, session)

	last := session.Messages[len(session.Messages)-1]
	assert.True(t, last.Error)
	assert.Equal(t, GenericErrorReply, last.Content)
	assert.False(t, svc.IsProcessing())
}

func TestSendMessageProcessingFlagLifecycle(t *testing.T) {
	client := &fakeClient{response: "reply"}
	svc, _ := newTestChatService(t, client)

	var duringGenerate bool
	client.onCall = func() {
		duringGenerate = svc.IsProcessing()
	}

	assert.False(t, svc.IsProcessing())
	_, err := svc.SendMessage("Hello", SendOptions{})
	require.NoError(t, err)

	assert.True(t, duringGenerate, "flag must be raised while generating")
	assert.False(t, svc.IsProcessing(), "flag must settle after every send")
}

func TestSendMessageSingleFlight(t *testing.T) {
	client := &fakeClient{response: "reply"}
	svc, _ := newTestChatService(t, client)

	var nested error
	client.onCall = func() {
		// A send started while one is in flight must be rejected
		_, nested = svc.SendMessage("overlapping", SendOptions{})
	}

	_, err := svc.SendMessage("Hello", SendOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrSendInProgress)
	assert.Equal(t, 1, client.calls)
}

func TestSendMessageReasoningPrompt(t *testing.T) {
	client := &fakeClient{response: "reply"}
	svc, _ := newTestChatService(t, client)

	_, err := svc.SendMessage("Hello", SendOptions{ShowReasoning: true})
	require.NoError(t, err)
	require.NotNil(t, client.lastOpts)
	assert.Equal(t, llm.ReasoningSystemPrompt, client.lastOpts.SystemPrompt)

	_, err = svc.SendMessage("Hello again", SendOptions{})
	require.NoError(t, err)
	assert.Empty(t, client.lastOpts.SystemPrompt, "no override unless reasoning is requested")
}

func TestSendMessageUsesConfiguredGenerationDefaults(t *testing.T) {
	client := &fakeClient{response: "reply"}
	st := store.NewMemoryStore(logger.NewNop())
	repo, err := repository.NewSessionRepository(st, logger.NewNop())
	require.NoError(t, err)

	defaults := llm.Options{
		MaxTokens:    256,
		Temperature:  0.2,
		TopP:         0.5,
		SystemPrompt: "You are a terse assistant.",
	}
	svc := NewChatService(repo, client, defaults, logger.NewNop(), metrics.New())

	_, err = svc.SendMessage("Hello", SendOptions{})
	require.NoError(t, err)
	require.NotNil(t, client.lastOpts)
	assert.Equal(t, 256, client.lastOpts.MaxTokens)
	assert.Equal(t, 0.2, client.lastOpts.Temperature)
	assert.Equal(t, 0.5, client.lastOpts.TopP)
	assert.Equal(t, "You are a terse assistant.", client.lastOpts.SystemPrompt)

	// The reasoning toggle still wins over the configured prompt
	_, err = svc.SendMessage("Hello again", SendOptions{ShowReasoning: true})
	require.NoError(t, err)
	assert.Equal(t, llm.ReasoningSystemPrompt, client.lastOpts.SystemPrompt)
	assert.Equal(t, 256, client.lastOpts.MaxTokens)
}

func TestSendMessageUsesCurrentSession(t *testing.T) {
	client := &fakeClient{response: "reply"}
	svc, repo := newTestChatService(t, client)

	first, err := repo.CreateSession()
	require.NoError(t, err)
	second, err := repo.CreateSession()
	require.NoError(t, err)

	require.NoError(t, repo.SetCurrentSession(first))

	session, err := svc.SendMessage("Hello", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, session.ID)

	// The other session is untouched
	untouched := repo.GetSession(second.ID)
	require.NotNil(t, untouched)
	assert.Len(t, untouched.Messages, 1)
}
