package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joewaine/best-self-ai/internal/voice"
)

// maxAudioUpload bounds the multipart audio payload (hold-to-talk clips are
// well under this).
const maxAudioUpload = 25 << 20

func readAudioUpload(c *gin.Context) ([]byte, string, bool) {
	header, err := c.FormFile("audio")
	if err != nil {
		return nil, "", false
	}
	if header.Size > maxAudioUpload {
		return nil, "", false
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAudioUpload))
	if err != nil {
		return nil, "", false
	}
	return data, header.Filename, true
}

// PostTranscribeAndReply runs the full voice pipeline and appends the
// exchange to a conversation (auto-created when no conversationId form
// field is sent).
func PostTranscribeAndReply(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		audio, filename, ok := readAudioUpload(c)
		if !ok {
			HandleError(c, app.Logger(), errors.New("bad upload"), 400, "Missing audio file field: audio")
			return
		}
		conversationID := c.PostForm("conversationId")

		result, err := app.Voice().TranscribeAndReply(c.Request.Context(), user, audio, filename, conversationID)
		if err != nil {
			switch {
			case errors.Is(err, voice.ErrConversationNotFound):
				HandleError(c, app.Logger(), err, 404, "Conversation not found")
			case errors.Is(err, voice.ErrForbidden):
				HandleError(c, app.Logger(), err, 403, "Forbidden")
			default:
				HandleError(c, app.Logger(), err, 500, "Voice pipeline failed")
			}
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// PostVoiceQuick is the stateless variant: nothing is persisted.
func PostVoiceQuick(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		audio, filename, ok := readAudioUpload(c)
		if !ok {
			HandleError(c, app.Logger(), errors.New("bad upload"), 400, "Missing audio file field: audio")
			return
		}
		result, err := app.Voice().Quick(c.Request.Context(), user, audio, filename)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Voice pipeline failed")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
