package api

import (
	"net/http"

	"alcyxob/palestra-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ClientHandler serves a trainee's own plan. The client id always comes
// from the token, never from the path.
type ClientHandler struct {
	planService service.PlanService
	log         logrus.FieldLogger
}

func NewClientHandler(planService service.PlanService, log logrus.FieldLogger) *ClientHandler {
	return &ClientHandler{
		planService: planService,
		log:         log,
	}
}

type UpdateNotesRequest struct {
	Notes *string `json:"notes"`
}

func (h *ClientHandler) clientID(c *gin.Context) (string, bool) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client.")
		return "", false
	}
	return clientID, true
}

// GetMyPlan godoc
// @Summary Get my weekly plan
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Client
// @Failure 404 {object} gin.H "No plan for this client"
// @Router /client/plan [get]
func (h *ClientHandler) GetMyPlan(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetClientPlan(c.Request.Context(), clientID)
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to retrieve plan.")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetMyDay godoc
// @Summary Get one day of my plan
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param dayId path string true "Day ID"
// @Success 200 {object} domain.WorkoutDay
// @Router /client/plan/days/{dayId} [get]
func (h *ClientHandler) GetMyDay(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}
	day, err := h.planService.GetDay(c.Request.Context(), clientID, c.Param("dayId"))
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to retrieve day.")
		return
	}
	c.JSON(http.StatusOK, day)
}

// GetMyExercise godoc
// @Summary Get one exercise of my plan
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.WorkoutExercise
// @Router /client/plan/days/{dayId}/exercises/{exerciseId} [get]
func (h *ClientHandler) GetMyExercise(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}
	exercise, err := h.planService.GetExercise(c.Request.Context(), clientID, c.Param("dayId"), c.Param("exerciseId"))
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to retrieve exercise.")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateMyExerciseNotes godoc
// @Summary Write my notes on an exercise
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notes body UpdateNotesRequest true "Notes, empty string clears them"
// @Success 200 {object} domain.WorkoutExercise
// @Router /client/plan/days/{dayId}/exercises/{exerciseId}/notes [patch]
func (h *ClientHandler) UpdateMyExerciseNotes(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.Notes == nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: notes is required")
		return
	}

	exercise, err := h.planService.UpdateExerciseNotes(c.Request.Context(), clientID, c.Param("dayId"), c.Param("exerciseId"), *req.Notes)
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to update notes.")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// ExportMyPlan godoc
// @Summary Export my plan as a downloadable JSON document
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ExportResponse
// @Failure 503 {object} gin.H "Export storage not configured"
// @Router /client/plan/export [post]
func (h *ClientHandler) ExportMyPlan(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}
	res, err := h.planService.ExportPlan(c.Request.Context(), clientID)
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to export plan.")
		return
	}
	c.JSON(http.StatusOK, res)
}
