package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheetsage/sheetsage/pkg/model"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account
func (h *Handler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	user, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

// LogIn verifies credentials and sets the session cookie
func (h *Handler) LogIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	session, err := h.auth.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	maxAge := int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())
	c.SetCookie(sessionCookie, string(session.Token), maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user_id": session.UserID})
}

// LogOut invalidates the current session and clears the cookie
func (h *Handler) LogOut(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil && token != "" {
		if err := h.auth.LogOut(c.Request.Context(), model.SessionToken(token)); err != nil {
			h.writeError(c, err)
			return
		}
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetRequest issues a reset token. The response is identical for
// known and unknown emails.
func (h *Handler) PasswordResetRequest(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	if _, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{})
}

type passwordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// PasswordResetConfirm consumes a reset token and sets the new password
func (h *Handler) PasswordResetConfirm(c *gin.Context) {
	var req passwordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
