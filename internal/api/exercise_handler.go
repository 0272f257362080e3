package api

import (
	"net/http"

	"alcyxob/palestra-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise catalog trainers pick from.
type ExerciseHandler struct {
	catalogService service.CatalogService
}

func NewExerciseHandler(catalogService service.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{catalogService: catalogService}
}

// ListCatalog godoc
// @Summary List the exercise catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.CatalogExercise
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /catalog [get]
func (h *ExerciseHandler) ListCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalogService.ListCatalog(c.Request.Context()))
}
