package api

import (
	"errors"
	"net/http"

	"alcyxob/palestra-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondWithServiceError maps service errors to HTTP status codes.
// Unknown errors are logged and hidden behind a 500.
func respondWithServiceError(c *gin.Context, log logrus.FieldLogger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrStoreNotReady), errors.Is(err, service.ErrExportUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrDayNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrCatalogExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidExercise),
		errors.Is(err, service.ErrInvalidWeekday),
		errors.Is(err, service.ErrInvalidTitle):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
