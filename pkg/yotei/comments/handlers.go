package comments

import (
	"errors"
	"net/http"

	"github.com/example/yotei/pkg/yotei/identity"
	"github.com/example/yotei/pkg/yotei/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles comment requests
type Handler struct {
	db    *gorm.DB
	store *Store
}

// NewHandler creates a new comments handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, store: NewStore(db)}
}

// SetCommentRequest represents the comment update body. An empty text
// clears the comment.
type SetCommentRequest struct {
	Text string `json:"text"`
}

// Set updates the caller's comment on a schedule
// @Summary Set own comment on a schedule
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body SetCommentRequest true "Comment text (empty clears)"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Schedule not found"
// @Security BearerAuth
// @Router /schedules/{id}/comment [put]
func (h *Handler) Set(c *gin.Context) {
	userID, _ := identity.GetUserID(c)
	scheduleID := c.Param("id")

	var req SetCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Set(userID, scheduleID, req.Text); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": req.Text})
}

// RegisterRoutes registers comment routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/schedules/:id/comment", h.Set)
}
