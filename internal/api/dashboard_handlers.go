package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joewaine/best-self-ai/internal/dashboard"
)

const noTokenMsg = "No Oura token configured. Please add your Oura personal access token in settings."

func GetDashboardToday(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		snap, err := app.Dashboard().Today(c.Request.Context(), user.ID)
		if err != nil {
			if errors.Is(err, dashboard.ErrNoOuraToken) {
				HandleError(c, app.Logger(), err, 400, noTokenMsg)
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to fetch dashboard data")
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func GetDashboardWeek(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		snap, err := app.Dashboard().Week(c.Request.Context(), user.ID)
		if err != nil {
			if errors.Is(err, dashboard.ErrNoOuraToken) {
				HandleError(c, app.Logger(), err, 400, noTokenMsg)
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to fetch week data")
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// PostDashboardSync invalidates the caller's cached dashboard entries so the
// next read refetches from Oura.
func PostDashboardSync(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		app.Dashboard().Sync(user.ID)
		c.JSON(http.StatusOK, gin.H{"synced": true})
	}
}

// GetOuraYesterday is a debug view of the summary fed to the coach prompt.
func GetOuraYesterday(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		token, err := app.Settings().GetOuraToken(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to check Oura token")
			return
		}
		if token == "" {
			HandleError(c, app.Logger(), dashboard.ErrNoOuraToken, 400, "No Oura token configured")
			return
		}
		summary, err := app.Dashboard().YesterdaySummary(c.Request.Context(), token)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch Oura summary")
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
