package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TTSRequest struct {
	Text  string `json:"text" validate:"required"`
	Voice string `json:"voice"`
}

func PostTTS(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TTSRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Missing text")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Missing text")
			return
		}
		audio, err := app.TTS().Synthesize(c.Request.Context(), req.Text, req.Voice)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "TTS failed")
			return
		}
		c.Header("Content-Length", strconv.Itoa(len(audio)))
		c.Data(http.StatusOK, "audio/mpeg", audio)
	}
}

func GetVoices(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.TTS().Voices())
	}
}
