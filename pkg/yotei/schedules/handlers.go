package schedules

import (
	"errors"
	"net/http"

	"github.com/example/yotei/pkg/yotei/aggregate"
	"github.com/example/yotei/pkg/yotei/availability"
	"github.com/example/yotei/pkg/yotei/candidates"
	"github.com/example/yotei/pkg/yotei/comments"
	"github.com/example/yotei/pkg/yotei/identity"
	"github.com/example/yotei/pkg/yotei/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles schedule requests
type Handler struct {
	db         *gorm.DB
	store      *Store
	candidates *candidates.Store
	matrix     *availability.Matrix
	comments   *comments.Store
}

// NewHandler creates a new schedules handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:         db,
		store:      NewStore(db),
		candidates: candidates.NewStore(db),
		matrix:     availability.NewMatrix(db),
		comments:   comments.NewStore(db),
	}
}

// CreateScheduleRequest represents the request to create a schedule
type CreateScheduleRequest struct {
	Title string `json:"title" binding:"required"`
	// One candidate slot per line
	Candidates string `json:"candidates" binding:"required"`
}

// AppendCandidatesRequest represents the request to append candidate slots
type AppendCandidatesRequest struct {
	// One candidate slot per line
	Candidates string `json:"candidates" binding:"required"`
}

// CandidateResponse represents a candidate in API responses
type CandidateResponse struct {
	ID           uint   `json:"id"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"display_order"`
}

// ScheduleResponse represents a schedule in API responses
type ScheduleResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	CandidatesText string `json:"candidates_text"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ScheduleDetailResponse is the aggregated organizer-facing view
type ScheduleDetailResponse struct {
	Schedule   ScheduleResponse    `json:"schedule"`
	Candidates []CandidateResponse `json:"candidates"`
	Summary    aggregate.Summary   `json:"summary"`
}

func scheduleToResponse(s models.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:             s.ID,
		Title:          s.Title,
		CandidatesText: s.CandidatesText,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      s.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func candidateToResponse(c models.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:           c.ID,
		Label:        c.Label,
		DisplayOrder: c.DisplayOrder,
	}
}

// Create creates a new schedule with its candidate slots
// @Summary Create a schedule
// @Description Create a scheduling poll with candidate slots, one per line
// @Tags schedules
// @Accept json
// @Produce json
// @Param request body CreateScheduleRequest true "Schedule details"
// @Success 201 {object} ScheduleDetailResponse
// @Failure 400 {object} map[string]string "No usable candidate lines"
// @Security BearerAuth
// @Router /schedules [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := identity.GetUserID(c)

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, created, err := h.store.Create(req.Title, req.Candidates, userID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule"})
		return
	}

	resp := ScheduleDetailResponse{
		Schedule:   scheduleToResponse(schedule),
		Candidates: make([]CandidateResponse, len(created)),
	}
	for i, cand := range created {
		resp.Candidates[i] = candidateToResponse(cand)
	}

	c.JSON(http.StatusCreated, resp)
}

// List returns the caller's schedules, most recently updated first
// @Summary List own schedules
// @Tags schedules
// @Produce json
// @Success 200 {array} ScheduleResponse
// @Security BearerAuth
// @Router /schedules [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := identity.GetUserID(c)

	list, err := h.store.ListByOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedules"})
		return
	}

	responses := make([]ScheduleResponse, len(list))
	for i, s := range list {
		responses[i] = scheduleToResponse(s)
	}

	c.JSON(http.StatusOK, responses)
}

// Get returns one schedule with its aggregated availability summary
// @Summary Get a schedule with its summary
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} ScheduleDetailResponse
// @Failure 404 {object} map[string]string "Schedule not found"
// @Security BearerAuth
// @Router /schedules/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")

	schedule, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		return
	}

	cands, err := h.candidates.ListBySchedule(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch candidates"})
		return
	}
	marks, err := h.matrix.ListBySchedule(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availability"})
		return
	}
	notes, err := h.comments.ListBySchedule(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	names, err := h.displayNames(marks, notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch participants"})
		return
	}

	resp := ScheduleDetailResponse{
		Schedule:   scheduleToResponse(schedule),
		Candidates: make([]CandidateResponse, len(cands)),
		Summary:    aggregate.Build(cands, marks, notes, names),
	}
	for i, cand := range cands {
		resp.Candidates[i] = candidateToResponse(cand)
	}

	c.JSON(http.StatusOK, resp)
}

// displayNames resolves the display names of every user appearing in the
// matrix slice or the comment slice
func (h *Handler) displayNames(marks []models.Availability, notes map[string]string) (map[string]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range marks {
		if !seen[a.UserID] {
			seen[a.UserID] = true
			ids = append(ids, a.UserID)
		}
	}
	for userID := range notes {
		if !seen[userID] {
			seen[userID] = true
			ids = append(ids, userID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	var users []models.User
	if err := h.db.Where("external_id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ExternalID] = u.DisplayName
	}
	return names, nil
}

// AppendCandidates appends new candidate slots to a schedule. Existing
// candidates are never updated, reordered or removed.
// @Summary Append candidate slots
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body AppendCandidatesRequest true "New slots, one per line"
// @Success 201 {array} CandidateResponse
// @Failure 400 {object} map[string]string "No usable candidate lines"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Schedule not found"
// @Security BearerAuth
// @Router /schedules/{id}/candidates [post]
func (h *Handler) AppendCandidates(c *gin.Context) {
	userID, _ := identity.GetUserID(c)
	id := c.Param("id")

	schedule, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		return
	}
	if schedule.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may edit candidates"})
		return
	}

	var req AppendCandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var created []models.Candidate
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = candidates.CreateMany(tx, id, candidates.SplitLabels(req.Candidates))
		if err != nil {
			return err
		}
		return NewStore(tx).Touch(id)
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to append candidates"})
		return
	}

	responses := make([]CandidateResponse, len(created))
	for i, cand := range created {
		responses[i] = candidateToResponse(cand)
	}

	c.JSON(http.StatusCreated, responses)
}

// Delete removes a schedule and everything under it
// @Summary Delete a schedule
// @Description Owner-only; removes the schedule, its candidates, their availabilities and its comments
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]string "Schedule deleted"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Schedule not found"
// @Security BearerAuth
// @Router /schedules/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := identity.GetUserID(c)
	id := c.Param("id")

	if err := h.store.Delete(id, userID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		case errors.Is(err, models.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may delete a schedule"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}

// RegisterRoutes registers schedule routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/schedules", h.Create)
	rg.GET("/schedules", h.List)
	rg.GET("/schedules/:id", h.Get)
	rg.POST("/schedules/:id/candidates", h.AppendCandidates)
	rg.DELETE("/schedules/:id", h.Delete)
}
