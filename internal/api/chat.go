package api

import (
	"net/http"

	"xenarc-chat-demo/backend/internal/repository"
	"xenarc-chat-demo/backend/internal/service"
	"xenarc-chat-demo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the session collection and the send-message
// pipeline over HTTP.
type ChatHandler struct {
	sessions *repository.SessionRepository
	chat     *service.ChatService
	logger   *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(sessions *repository.SessionRepository, chat *service.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		chat:     chat,
		logger:   logger,
	}
}

// ListSessions returns the session collection, newest-created first,
// along with the current-session id and the processing flag.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	currentID := ""
	if current := h.sessions.CurrentSession(); current != nil {
		currentID = current.ID
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":           h.sessions.Sessions(),
		"current_session_id": currentID,
		"is_processing":      h.chat.IsProcessing(),
	})
}

// CreateSession creates a new session and makes it current.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	session, err := h.sessions.CreateSession()
	if err != nil {
		h.logger.Error("error creating session", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ActivateSession makes the given session current.
func (h *ChatHandler) ActivateSession(c *gin.Context) {
	session := h.sessions.GetSession(c.Param("id"))
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := h.sessions.SetCurrentSession(session); err != nil {
		h.logger.Error("error activating session", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate session"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session. Deleting the current session moves
// the pointer to the next remaining one.
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.DeleteSession(c.Param("id")); err != nil {
		h.logger.Error("error deleting session", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearSessions removes every session and the persisted state behind
// them.
func (h *ChatHandler) ClearSessions(c *gin.Context) {
	if err := h.sessions.ClearSessions(); err != nil {
		h.logger.Error("error clearing sessions", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear sessions"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	Content       string `json:"content" binding:"required"`
	ShowReasoning bool   `json:"show_reasoning"`
}

// SendMessage runs the send pipeline against the current session and
// returns the updated thread. Generation failures still return 200; the
// failure is visible as an error-flagged assistant message.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	session, err := h.chat.SendMessage(req.Content, service.SendOptions{
		ShowReasoning: req.ShowReasoning,
	})
	if err != nil {
		switch err {
		case service.ErrEmptyMessage:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is empty"})
		case service.ErrSendInProgress:
			c.JSON(http.StatusConflict, gin.H{"error": "Another message is being processed"})
		default:
			h.logger.Error("error sending message", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":       session,
		"is_processing": h.chat.IsProcessing(),
	})
}
