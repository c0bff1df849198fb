package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type OuraTokenRequest struct {
	OuraToken string `json:"ouraToken" validate:"required"`
}

func SetOuraToken(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		var req OuraTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "ouraToken is required")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "ouraToken is required")
			return
		}
		if err := app.Settings().SetOuraToken(c.Request.Context(), user.ID, req.OuraToken); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save Oura token")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func GetOuraTokenStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		token, err := app.Settings().GetOuraToken(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to check Oura token")
			return
		}
		c.JSON(http.StatusOK, gin.H{"hasToken": token != ""})
	}
}

// GetProfile reports the biological sex from Oura personal info. Every
// failure path degrades to null rather than an error, matching the
// dashboard's tolerance for missing vendor data.
func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		token, err := app.Settings().GetOuraToken(c.Request.Context(), user.ID)
		if err != nil || token == "" {
			c.JSON(http.StatusOK, gin.H{"biologicalSex": nil})
			return
		}
		info, err := app.Profile().FetchPersonalInfo(c.Request.Context(), token)
		if err != nil {
			app.Logger().Warnf("failed to fetch personal info: %v", err)
			c.JSON(http.StatusOK, gin.H{"biologicalSex": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"biologicalSex": info.BiologicalSex})
	}
}
