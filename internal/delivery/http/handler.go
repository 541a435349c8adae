package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealsnap/backend/internal/domain"
	"github.com/mealsnap/backend/internal/usecase"
)

// maxImageBytes caps uploaded meal photos at 8 MiB.
const maxImageBytes = 8 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions *usecase.SessionManager
	history  *usecase.HistoryService
	identity *usecase.IdentityService
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *usecase.SessionManager, history *usecase.HistoryService, identity *usecase.IdentityService) *Handler {
	return &Handler{
		sessions: sessions,
		history:  history,
		identity: identity,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mealsnap-backend",
		"version": "1.0.0",
	})
}

// CreateSession starts a new meal analysis flow
func (h *Handler) CreateSession(c *gin.Context) {
	id, flow := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": id,
		"snapshot":  flow.Snapshot(),
	})
}

// GetSession returns the current flow snapshot
func (h *Handler) GetSession(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

type analyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
	Pro  bool   `json:"pro"`
}

// AnalyzeText submits free-form meal text for analysis
func (h *Handler) AnalyzeText(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}

	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	// Analysis failures are reflected in the snapshot's notices; the
	// flow has already decided which state the user returns to.
	if err := flow.SubmitText(c.Request.Context(), req.Text, req.Pro); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "snapshot": flow.Snapshot()})
			return
		}
	}

	c.JSON(http.StatusOK, flow.Snapshot())
}

// AnalyzeImage submits a meal photo for analysis. The file arrives as
// multipart form data; an optional api_key field overrides the
// configured key sources.
func (h *Handler) AnalyzeImage(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer file.Close()

	apiKey := c.PostForm("api_key")
	pro := c.PostForm("pro") == "true"
	contentType := fileHeader.Header.Get("Content-Type")

	if err := flow.SubmitImage(c.Request.Context(), file, contentType, apiKey, pro); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "snapshot": flow.Snapshot()})
			return
		}
	}

	c.JSON(http.StatusOK, flow.Snapshot())
}

type addItemRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddItem appends a user-entered food to the detected list
func (h *Handler) AddItem(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	item, err := flow.AddItem(req.Name)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "snapshot": flow.Snapshot()})
}

// RemoveItem deletes a detected food item
func (h *Handler) RemoveItem(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}

	if err := flow.RemoveItem(c.Param("itemId")); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

// Confirm accepts the detected items and runs nutrition calculation.
// The save happens asynchronously; its outcome shows up as a notice.
func (h *Handler) Confirm(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}

	if err := flow.Confirm(c.Request.Context(), currentUserID(c)); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "snapshot": flow.Snapshot()})
		return
	}
	c.JSON(http.StatusOK, flow.Snapshot())
}

// Reset returns the flow to the upload state
func (h *Handler) Reset(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}

	flow.Reset()
	c.JSON(http.StatusOK, flow.Snapshot())
}

// History returns the caller's meal logs, newest first. Authenticated
// callers are identified by their token; anonymous callers pass the
// anon_-prefixed ID they were issued.
func (h *Handler) History(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		userID = c.Query("anon_id")
		if userID != "" && !usecase.IsAnonymous(userID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "anon_id must carry the anonymous prefix"})
			return
		}
	}
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity: sign in or supply anon_id"})
		return
	}

	logs, locked, err := h.history.History(c.Request.Context(), userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load meal history"})
		return
	}

	if logs == nil {
		logs = []domain.MealLog{}
	}
	c.JSON(http.StatusOK, gin.H{
		"mealLogs":        logs,
		"isHistoryLocked": locked,
	})
}

// AnonymousIdentity issues (or reuses) the caller's anonymous ID
func (h *Handler) AnonymousIdentity(c *gin.Context) {
	id, err := h.identity.AnonymousID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve anonymous identity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"anonId": id})
}

// flow resolves the session ID path parameter to a live flow.
func (h *Handler) flow(c *gin.Context) (*usecase.Flow, bool) {
	flow, exists := h.sessions.Get(c.Param("sessionId"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
		return nil, false
	}
	return flow, true
}
