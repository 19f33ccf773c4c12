package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"nyayasahaya-backend/models"
	"nyayasahaya-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// SessionHeader carries the conversation id in both directions
	SessionHeader = "X-Session-ID"

	msgQuestionRequired = "Question is required"
	msgInternalError    = "An internal error occurred. Please try again later."

	historyLimit = 50
)

// ExchangeHistory reads and clears recorded exchanges of a session
type ExchangeHistory interface {
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.ChatExchange, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// ChatHandler handles HTTP requests for the chat endpoint
type ChatHandler struct {
	chatService *service.ChatService
	history     ExchangeHistory
	logger      *zap.Logger
}

// NewChatHandler creates a new chat handler. history may be nil.
func NewChatHandler(chatService *service.ChatService, history ExchangeHistory, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chatService: chatService,
		history:     history,
		logger:      logger.With(zap.String("component", "chat_handler")),
	}
}

// ChatRequest represents the request body for asking a question
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// ChatResponse represents the answer returned to the client
type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = strings.TrimSpace(c.GetHeader(SessionHeader))
	}

	result, err := h.chatService.Answer(c.Request.Context(), service.ChatRequest{
		SessionID: sessionID,
		Question:  req.Question,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgQuestionRequired})
			return
		}
		h.logger.Error("chat request failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
		return
	}

	c.Header(SessionHeader, result.SessionID)
	c.JSON(http.StatusOK, ChatResponse{
		Answer:    result.Answer,
		SessionID: result.SessionID,
	})
}

// sessionParam reads a server-issued session id from the path
func sessionParam(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return "", false
	}
	return id.String(), true
}

// EndSession handles DELETE /api/chat/sessions/:id
func (h *ChatHandler) EndSession(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	h.chatService.EndSession(sessionID)

	if h.history != nil {
		if err := h.history.DeleteBySession(c.Request.Context(), sessionID); err != nil {
			h.logger.Error("failed to delete session history", zap.String("session_id", sessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
			return
		}
	}

	c.Status(http.StatusNoContent)
}

// GetHistory handles GET /api/chat/sessions/:id/history
func (h *ChatHandler) GetHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History is not recorded"})
		return
	}

	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	exchanges, err := h.history.ListBySession(c.Request.Context(), sessionID, historyLimit)
	if err != nil {
		h.logger.Error("failed to list session history", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
		return
	}
	if exchanges == nil {
		exchanges = []*models.ChatExchange{}
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"exchanges":  exchanges,
	})
}
