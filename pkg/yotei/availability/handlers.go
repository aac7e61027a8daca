package availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/yotei/pkg/yotei/identity"
	"github.com/example/yotei/pkg/yotei/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles availability requests
type Handler struct {
	db     *gorm.DB
	matrix *Matrix
}

// NewHandler creates a new availability handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, matrix: NewMatrix(db)}
}

// SetCellRequest represents a single-cell update
type SetCellRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetManyRequest represents one participant's whole submission for a schedule
type SetManyRequest struct {
	// candidate id (as decimal string, JSON keys are strings) -> status
	Cells map[string]string `json:"cells" binding:"required"`
}

// SetCell updates the caller's mark for one candidate
// @Summary Set availability for one candidate
// @Tags availability
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param candidateID path int true "Candidate ID"
// @Param request body SetCellRequest true "New status (yes, no or undecided)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Malformed status"
// @Failure 404 {object} map[string]string "Candidate not found"
// @Security BearerAuth
// @Router /schedules/{id}/candidates/{candidateID}/availability [put]
func (h *Handler) SetCell(c *gin.Context) {
	userID, _ := identity.GetUserID(c)

	candidateID, err := strconv.ParseUint(c.Param("candidateID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate ID"})
		return
	}

	var req SetCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.matrix.Set(userID, uint(candidateID), status); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}

// SetRow applies the caller's submission for a whole schedule atomically
// @Summary Submit availability for a schedule
// @Description All cells are applied in one unit; an unknown candidate id rejects the whole submission
// @Tags availability
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body SetManyRequest true "Cells to apply"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Malformed submission"
// @Failure 404 {object} map[string]string "Schedule not found"
// @Failure 409 {object} map[string]string "Submission references a foreign candidate"
// @Security BearerAuth
// @Router /schedules/{id}/availability [post]
func (h *Handler) SetRow(c *gin.Context) {
	userID, _ := identity.GetUserID(c)
	scheduleID := c.Param("id")

	var req SetManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cells := make([]Cell, 0, len(req.Cells))
	for rawID, rawStatus := range req.Cells {
		candidateID, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate ID: " + rawID})
			return
		}
		status, err := models.ParseStatus(rawStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cells = append(cells, Cell{CandidateID: uint(candidateID), Status: status})
	}

	if err := h.matrix.SetMany(userID, scheduleID, cells); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		case errors.Is(err, models.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save availability"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability saved"})
}

// RegisterRoutes registers availability routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/schedules/:id/candidates/:candidateID/availability", h.SetCell)
	rg.POST("/schedules/:id/availability", h.SetRow)
}
