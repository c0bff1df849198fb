package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/storage"
)

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type UpdateConversationRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

func ListConversations(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		convos, err := app.Conversations().ListConversations(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to list conversations")
			return
		}
		c.JSON(http.StatusOK, convos)
	}
}

func CreateConversation(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		var req CreateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}
		convo := &internal.Conversation{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Title:     req.Title,
			CreatedAt: time.Now(),
			Messages:  []internal.Message{},
		}
		if err := app.Conversations().CreateConversation(c.Request.Context(), convo); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create conversation")
			return
		}
		c.JSON(http.StatusCreated, convo)
	}
}

// ownedConversation loads the conversation and enforces ownership; it writes
// the error response itself and returns nil when the caller should stop.
func ownedConversation(c *gin.Context, app App) *internal.Conversation {
	user := CurrentUser(c)
	convo, err := app.Conversations().GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Conversation not found")
			return nil
		}
		HandleError(c, app.Logger(), err, 500, "Failed to fetch conversation")
		return nil
	}
	if convo.UserID != user.ID {
		HandleError(c, app.Logger(), errors.New("ownership mismatch"), 403, "Forbidden")
		return nil
	}
	return convo
}

func GetConversation(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		convo := ownedConversation(c, app)
		if convo == nil {
			return
		}
		c.JSON(http.StatusOK, convo)
	}
}

func DeleteConversation(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		convo := ownedConversation(c, app)
		if convo == nil {
			return
		}
		if err := app.Conversations().DeleteConversation(c.Request.Context(), convo.ID); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete conversation")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func UpdateConversationTitle(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		convo := ownedConversation(c, app)
		if convo == nil {
			return
		}
		var req UpdateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Title is required")
			return
		}
		if err := app.Conversations().UpdateConversationTitle(c.Request.Context(), convo.ID, req.Title); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update title")
			return
		}
		convo.Title = req.Title
		c.JSON(http.StatusOK, convo)
	}
}
