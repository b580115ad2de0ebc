package bridge

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionUserKey = "user"

type authHandler struct {
	creds  Credentials
	logger *slog.Logger
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (h *authHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.creds.Password)) == 1
	if !userOK || !passOK {
		c.JSON(http.StatusUnauthorized, errorBody{Code: "UNAUTHORIZED", Message: "invalid credentials"})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, h.creds.Username)
	if err := session.Save(); err != nil {
		h.logger.Error("Failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": h.creds.Username})
}

func (h *authHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.logger.Error("Failed to clear session", "error", err)
	}
	c.Status(http.StatusNoContent)
}

// AuthRequired rejects requests without a logged-in session.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionUserKey) == nil {
		// htmx clients follow HX-Redirect instead of a 401 body.
		if c.GetHeader("HX-Request") == "true" {
			c.Header("HX-Redirect", "/login")
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Code: "UNAUTHORIZED", Message: "login required"})
		return
	}
	c.Next()
}
