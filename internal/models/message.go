package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies the author of a message turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// DefaultSessionTitle is the title of a session before the first user
// message renames it.
const DefaultSessionTitle = "New Chat"

// InitialGreeting seeds every new session so the thread is never empty.
const InitialGreeting = "Hello! I'm XENARC. How can I assist you today?"

// Message is a single turn in a chat session. Messages are immutable
// once created and are only ever appended, never reordered or removed
// individually.
type Message struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Role      MessageRole `json:"role"`
	Timestamp int64       `json:"timestamp"` // epoch milliseconds
	Error     bool        `json:"error,omitempty"`
}

// NewMessage creates a message with a fresh ID and the current timestamp.
func NewMessage(role MessageRole, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Content:   content,
		Role:      role,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewErrorMessage creates an error-flagged assistant message. Failed
// generations surface in the thread as one of these.
func NewErrorMessage(content string) Message {
	m := NewMessage(RoleAssistant, content)
	m.Error = true
	return m
}

// ChatSession is one conversation thread. Messages hold insertion order,
// which is also display order.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

// NewChatSession creates a session seeded with the assistant greeting,
// so a session's message list is never empty.
func NewChatSession() *ChatSession {
	now := time.Now().UnixMilli()
	return &ChatSession{
		ID:        uuid.New().String(),
		Title:     DefaultSessionTitle,
		Messages:  []Message{NewMessage(RoleAssistant, InitialGreeting)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the session and refreshes UpdatedAt.
func (s *ChatSession) Append(m Message) {
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = time.Now().UnixMilli()
}

// Clone returns a deep copy of the session. Callers mutate the copy and
// hand it back to the repository to commit; they never touch stored
// state directly.
func (s *ChatSession) Clone() *ChatSession {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// Turn is a role-tagged entry of the conversation history handed to the
// response generation client.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationHistory formats prior messages for the response generation
// client: user and assistant turns only, in original order. System
// messages and error bookkeeping are excluded.
func ConversationHistory(messages []Message) []Turn {
	history := make([]Turn, 0, len(messages))
	for _, m := range messages {
		if m.Error {
			continue
		}
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		history = append(history, Turn{Role: string(m.Role), Content: m.Content})
	}
	return history
}

// DeriveTitle returns the session title taken from the first user
// message: its first 30 characters. Once a session has a real title it
// is left untouched.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > 30 {
		runes = runes[:30]
	}
	return string(runes)
}
