package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sheetsage/sheetsage/pkg/export"
	"github.com/sheetsage/sheetsage/pkg/model"
	"github.com/sheetsage/sheetsage/pkg/usecase/history"
)

// writeError maps the error taxonomy to HTTP responses. Generation failures
// are retryable from the user's side; store failures surface only where the
// store is the primary operation.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please describe your spreadsheet problem."})
	case errors.Is(err, model.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in to use this feature."})
	case errors.Is(err, model.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
	case errors.Is(err, model.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists."})
	case errors.Is(err, model.ErrResetTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "This password reset link is invalid or has expired."})
	case errors.Is(err, model.ErrGeneration):
		h.logger.Error("solution generation failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate solution. Please rephrase your problem and try again."})
	default:
		h.logger.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error. Please try again later."})
	}
}

type solveRequest struct {
	Problem string `json:"problem"`
}

// Solve handles one problem submission, anonymous or authenticated
func (h *Handler) Solve(c *gin.Context) {
	var req solveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	result, err := h.submitter.Submit(c.Request.Context(), req.Problem, currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HistoryList returns the current user's past queries, newest first
func (h *Handler) HistoryList(c *gin.Context) {
	queries, err := history.List(c.Request.Context(), h.repo, currentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if queries == nil {
		queries = []*model.Query{}
	}
	c.JSON(http.StatusOK, gin.H{"history": queries})
}

// HistoryClear bulk-deletes the current user's history
func (h *Handler) HistoryClear(c *gin.Context) {
	if err := history.Clear(c.Request.Context(), h.repo, currentUser(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type exportRequest struct {
	Problem  string          `json:"problem"`
	Solution *model.Solution `json:"solution"`
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export renders a posted solution as a downloadable spreadsheet
func (h *Handler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Solution == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	workbook, err := export.Workbook(req.Problem, req.Solution)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(req.Problem)))
	c.Status(http.StatusOK)

	if err := workbook.Write(c.Writer); err != nil {
		// Headers are gone already; all we can do is log
		h.logger.Error("failed to write workbook", "error", err)
	}
}
