package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/auth"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"omitempty,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Register(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Email and a password of at least 8 characters are required")
			return
		}
		user, session, err := app.Auth().Register(c.Request.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				HandleError(c, app.Logger(), err, 400, "Email already registered")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to register")
			return
		}
		setSessionCookie(c, session.Token)
		c.JSON(http.StatusCreated, user)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Email and password are required")
			return
		}
		user, session, err := app.Auth().Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				HandleError(c, app.Logger(), err, 401, "Invalid email or password")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to log in")
			return
		}
		setSessionCookie(c, session.Token)
		c.JSON(http.StatusOK, user)
	}
}

func Logout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(auth.SessionCookie); err == nil && token != "" {
			_ = app.Auth().Logout(c.Request.Context(), token)
		}
		clearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// Me returns the logged-in user; mounted behind the auth middleware.
func Me(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, c.MustGet("user").(*internal.User))
	}
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
}
