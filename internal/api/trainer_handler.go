package api

import (
	"net/http"

	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TrainerHandler struct {
	planService service.PlanService
	log         logrus.FieldLogger
}

func NewTrainerHandler(planService service.PlanService, log logrus.FieldLogger) *TrainerHandler {
	return &TrainerHandler{
		planService: planService,
		log:         log,
	}
}

// --- DTOs ---
type AddDayRequest struct {
	Weekday domain.WeekdayKey `json:"weekday" binding:"required"`
	Label   string            `json:"label"`
}

type RenameDayRequest struct {
	Title string `json:"title" binding:"required"`
}

// AddExerciseRequest either references a catalog entry or describes the exercise in full.
type AddExerciseRequest struct {
	CatalogID   string   `json:"catalogId"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Sets        int      `json:"sets"`
	Reps        string   `json:"reps"`
	RestSec     int      `json:"restSec"`
	Notes       string   `json:"notes"`
	Muscles     []string `json:"muscles"`
	Description string   `json:"description"`
}

func (r AddExerciseRequest) toExercise() domain.WorkoutExercise {
	return domain.WorkoutExercise{
		ID:          r.ID,
		Name:        r.Name,
		Sets:        r.Sets,
		Reps:        r.Reps,
		RestSec:     r.RestSec,
		Notes:       r.Notes,
		Muscles:     r.Muscles,
		Description: r.Description,
	}
}

// --- Handler Methods ---

// ListClients godoc
// @Summary List all clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ClientSummary
// @Failure 503 {object} gin.H "Plan store still loading"
// @Router /trainer/clients [get]
func (h *TrainerHandler) ListClients(c *gin.Context) {
	clients, err := h.planService.ListClients(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to retrieve clients.")
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClientPlan godoc
// @Summary Get a client with the full weekly plan
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {object} domain.Client
// @Failure 404 {object} gin.H "Client not found"
// @Router /trainer/clients/{clientId} [get]
func (h *TrainerHandler) GetClientPlan(c *gin.Context) {
	client, err := h.planService.GetClientPlan(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to retrieve client plan.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// AddDay godoc
// @Summary Add a training day for a weekday
// @Description Creates the day, or returns the existing day for that weekday with created=false.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param day body AddDayRequest true "Weekday and label"
// @Success 201 {object} service.DayResult "Day created"
// @Success 200 {object} service.DayResult "Day for that weekday already existed"
// @Failure 400 {object} gin.H "Invalid weekday"
// @Failure 404 {object} gin.H "Client not found"
// @Router /trainer/clients/{clientId}/days [post]
func (h *TrainerHandler) AddDay(c *gin.Context) {
	var req AddDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	res, err := h.planService.AddDay(c.Request.Context(), c.Param("clientId"), req.Weekday, req.Label)
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to add day.")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// RenameDay godoc
// @Summary Change a day's title
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param dayId path string true "Day ID"
// @Param day body RenameDayRequest true "New title"
// @Success 200 {object} domain.WorkoutDay
// @Router /trainer/clients/{clientId}/days/{dayId} [patch]
func (h *TrainerHandler) RenameDay(c *gin.Context) {
	var req RenameDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	day, err := h.planService.RenameDay(c.Request.Context(), c.Param("clientId"), c.Param("dayId"), req.Title)
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to rename day.")
		return
	}
	c.JSON(http.StatusOK, day)
}

// RemoveDay godoc
// @Summary Delete a day and its exercises
// @Tags Trainer
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param dayId path string true "Day ID"
// @Success 204 "No Content"
// @Failure 404 {object} gin.H "Client or day not found"
// @Router /trainer/clients/{clientId}/days/{dayId} [delete]
func (h *TrainerHandler) RemoveDay(c *gin.Context) {
	if err := h.planService.RemoveDay(c.Request.Context(), c.Param("clientId"), c.Param("dayId")); err != nil {
		respondWithServiceError(c, h.log, err, "Failed to remove day.")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise godoc
// @Summary Add an exercise at the top of a day
// @Description Send {"catalogId": "..."} to add a catalog entry with default volume, or the full exercise.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param dayId path string true "Day ID"
// @Param exercise body AddExerciseRequest true "Exercise"
// @Success 201 {object} domain.WorkoutExercise
// @Failure 400 {object} gin.H "Invalid exercise"
// @Failure 404 {object} gin.H "Client, day or catalog entry not found"
// @Failure 409 {object} gin.H "Exercise id already used in the day"
// @Router /trainer/clients/{clientId}/days/{dayId}/exercises [post]
func (h *TrainerHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	clientID, dayID := c.Param("clientId"), c.Param("dayId")

	var (
		exercise *domain.WorkoutExercise
		err      error
	)
	if req.CatalogID != "" {
		exercise, err = h.planService.AddCatalogExercise(ctx, clientID, dayID, req.CatalogID)
	} else {
		exercise, err = h.planService.AddExercise(ctx, clientID, dayID, req.toExercise())
	}
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to add exercise.")
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// UpdateExercise godoc
// @Summary Partially update an exercise
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param dayId path string true "Day ID"
// @Param exerciseId path string true "Exercise ID"
// @Param patch body domain.ExercisePatch true "Fields to change"
// @Success 200 {object} domain.WorkoutExercise
// @Router /trainer/clients/{clientId}/days/{dayId}/exercises/{exerciseId} [patch]
func (h *TrainerHandler) UpdateExercise(c *gin.Context) {
	var patch domain.ExercisePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if patch.IsEmpty() {
		abortWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	exercise, err := h.planService.UpdateExercise(c.Request.Context(), c.Param("clientId"), c.Param("dayId"), c.Param("exerciseId"), patch)
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to update exercise.")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// RemoveExercise godoc
// @Summary Delete an exercise
// @Tags Trainer
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /trainer/clients/{clientId}/days/{dayId}/exercises/{exerciseId} [delete]
func (h *TrainerHandler) RemoveExercise(c *gin.Context) {
	err := h.planService.RemoveExercise(c.Request.Context(), c.Param("clientId"), c.Param("dayId"), c.Param("exerciseId"))
	if err != nil {
		respondWithServiceError(c, h.log, err, "Failed to remove exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}

// Reset godoc
// @Summary Restore the initial roster and clear persisted plans
// @Tags Trainer
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /trainer/reset [post]
func (h *TrainerHandler) Reset(c *gin.Context) {
	if err := h.planService.Reset(c.Request.Context()); err != nil {
		respondWithServiceError(c, h.log, err, "Failed to reset plans.")
		return
	}
	h.log.Warn("plans reset to initial roster")
	c.Status(http.StatusNoContent)
}
