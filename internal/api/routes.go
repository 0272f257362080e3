package api

import (
	"net/http"

	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/metrics"
	"alcyxob/palestra-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ReadinessFunc reports whether the plan store has finished loading.
type ReadinessFunc func() bool

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	planService service.PlanService,
	catalogService service.CatalogService,
	ready ReadinessFunc,
	metricsManager *metrics.Manager,
	gatherer prometheus.Gatherer,
	log logrus.FieldLogger,
) {
	trainerHandler := NewTrainerHandler(planService, log)
	clientHandler := NewClientHandler(planService, log)
	exerciseHandler := NewExerciseHandler(catalogService)

	router.Use(LogRequest(log))
	if metricsManager != nil {
		router.Use(RequestMetrics(metricsManager))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/healthz", func(c *gin.Context) {
		if !ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "hydrating"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, domain.Principal{UserID: userID, Role: role})
		})

		protected.GET("/catalog", RoleMiddleware(domain.RoleTrainer, domain.RoleClient), exerciseHandler.ListCatalog)

		// --- Trainer Specific Routes ---
		trainerAPIGroup := protected.Group("/trainer")
		trainerAPIGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerAPIGroup.GET("/clients", trainerHandler.ListClients)
			trainerAPIGroup.GET("/clients/:clientId", trainerHandler.GetClientPlan)

			// --- Days ---
			trainerAPIGroup.POST("/clients/:clientId/days", trainerHandler.AddDay)
			trainerAPIGroup.PATCH("/clients/:clientId/days/:dayId", trainerHandler.RenameDay)
			trainerAPIGroup.DELETE("/clients/:clientId/days/:dayId", trainerHandler.RemoveDay)

			// --- Exercises ---
			trainerAPIGroup.POST("/clients/:clientId/days/:dayId/exercises", trainerHandler.AddExercise)
			trainerAPIGroup.PATCH("/clients/:clientId/days/:dayId/exercises/:exerciseId", trainerHandler.UpdateExercise)
			trainerAPIGroup.DELETE("/clients/:clientId/days/:dayId/exercises/:exerciseId", trainerHandler.RemoveExercise)

			trainerAPIGroup.POST("/reset", trainerHandler.Reset)
		}

		// --- Client Specific Routes ---
		clientAPIGroup := protected.Group("/client")
		clientAPIGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientAPIGroup.GET("/plan", clientHandler.GetMyPlan)
			clientAPIGroup.POST("/plan/export", clientHandler.ExportMyPlan)
			clientAPIGroup.GET("/plan/days/:dayId", clientHandler.GetMyDay)
			clientAPIGroup.GET("/plan/days/:dayId/exercises/:exerciseId", clientHandler.GetMyExercise)
			clientAPIGroup.PATCH("/plan/days/:dayId/exercises/:exerciseId/notes", clientHandler.UpdateMyExerciseNotes)
		}
	}
}
