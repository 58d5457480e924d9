package service

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"xenarc-chat-demo/backend/internal/llm"
	"xenarc-chat-demo/backend/internal/models"
	"xenarc-chat-demo/backend/internal/repository"
	"xenarc-chat-demo/backend/pkg/logger"
	"xenarc-chat-demo/backend/pkg/metrics"
)

var (
	// ErrEmptyMessage rejects a send whose trimmed content is empty.
	// Nothing is mutated and the generator is never called.
	ErrEmptyMessage = errors.New("message content is empty")

	// ErrSendInProgress rejects a send while another one is running.
	// At most one send operation is in flight at a time.
	ErrSendInProgress = errors.New("another message is being processed")
)

// GenericErrorReply is appended when generation fails without a usable
// description, or when the pipeline itself panics.
const GenericErrorReply = "Sorry, an unexpected error occurred. Please try again later."

// SendOptions are the per-send knobs exposed to the UI layer.
type SendOptions struct {
	// ShowReasoning swaps in the step-by-step system prompt.
	ShowReasoning bool
}

// ChatService coordinates one send-message operation end to end: append
// the user turn, invoke the response client, append the result. Failed
// generations become error-flagged assistant turns; no failure from the
// pipeline propagates to the caller as anything else.
type ChatService struct {
	sessions *repository.SessionRepository
	client   llm.Client
	// defaults seed the generation options for every send. Zero fields
	// fall back to the llm package defaults; ShowReasoning overrides
	// the system prompt per send.
	defaults   llm.Options
	logger     *logger.Logger
	metrics    *metrics.Metrics
	processing atomic.Bool
}

// NewChatService creates the message orchestrator.
func NewChatService(sessions *repository.SessionRepository, client llm.Client, defaults llm.Options, log *logger.Logger, m *metrics.Metrics) *ChatService {
	return &ChatService{
		sessions: sessions,
		client:   client,
		defaults: defaults,
		logger:   log,
		metrics:  m,
	}
}

// IsProcessing reports whether a send operation is in flight. The flag
// spans the whole pipeline, from the single-flight gate through the
// final commit, not only the generation call. The UI is expected to
// disable submission while this is true.
func (s *ChatService) IsProcessing() bool {
	return s.processing.Load()
}

// SendMessage runs the send pipeline and returns the updated session.
// On a validation or busy rejection the error is typed and no state has
// changed. Generation failures are not errors here: they surface as an
// error-flagged assistant message in the returned session.
func (s *ChatService) SendMessage(content string, opts SendOptions) (*models.ChatSession, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	// Single-flight gate. Cooperative: the flag is the only exclusion.
	if !s.processing.CompareAndSwap(false, true) {
		return nil, ErrSendInProgress
	}
	defer s.processing.Store(false)

	session := s.sessions.CurrentSession()
	if session == nil {
		created, err := s.sessions.CreateSession()
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.SessionsCreated.Inc()
		}
		session = created
	}

	// History is computed from the pre-append state.
	history := models.ConversationHistory(session.Messages)

	userTurn := models.NewMessage(models.RoleUser, content)
	updated := session.Clone()
	updated.Append(userTurn)
	if len(session.Messages) <= 1 && updated.Title == models.DefaultSessionTitle {
		updated.Title = models.DeriveTitle(content)
	}

	if err := s.sessions.UpdateSession(updated); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
	}

	reply := s.generate(content, history, opts)

	final := updated.Clone()
	final.Append(reply)
	if err := s.sessions.UpdateSession(final); err != nil {
		return nil, err
	}

	return final, nil
}

// generate calls the response client and converts every failure mode,
// including a panic, into a message to append.
func (s *ChatService) generate(content string, history []models.Turn, opts SendOptions) (reply models.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("send pipeline panicked", "panic", r)
			if s.metrics != nil {
				s.metrics.GenerationFailures.Inc()
			}
			reply = models.NewErrorMessage(GenericErrorReply)
		}
	}()

	llmOpts := s.defaults
	if opts.ShowReasoning {
		llmOpts.SystemPrompt = llm.ReasoningSystemPrompt
	}

	start := time.Now()
	resp, err := s.client.GenerateResponse(content, history, &llmOpts)
	if s.metrics != nil {
		s.metrics.GenerationLatency.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		s.logger.Warn("response generation failed", "error", err.Error())
		if s.metrics != nil {
			s.metrics.GenerationFailures.Inc()
		}
		description := err.Error()
		if description == "" {
			description = GenericErrorReply
		}
		return models.NewErrorMessage(description)
	}

	return models.NewMessage(models.RoleAssistant, resp.Content)
}
