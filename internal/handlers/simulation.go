package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"simulation/internal/config"
	"simulation/internal/models"
	"simulation/internal/worker"
)

// SimulationHandler gère les requêtes HTTP de simulation
type SimulationHandler struct {
	bridge  worker.SimulationBridgeInterface
	tracker *JobTracker
	config  *config.Config
}

// NewSimulationHandler crée un nouveau handler de simulation
func NewSimulationHandler(bridge worker.SimulationBridgeInterface, tracker *JobTracker, cfg *config.Config) *SimulationHandler {
	return &SimulationHandler{
		bridge:  bridge,
		tracker: tracker,
		config:  cfg,
	}
}

// SimulateMatch soumet une simulation de match en tâche de fond
func (h *SimulationHandler) SimulateMatch(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid match request",
			"details": err.Error(),
		})
		return
	}

	h.submitJob(c, worker.RequestSimulateMatch, &req)
}

// SimulateMatchSync simule un match en mode synchrone. Si la fenêtre
// configurée expire, le job continue en tâche de fond et son
// identifiant est retourné pour interrogation ultérieure.
func (h *SimulationHandler) SimulateMatchSync(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid match request",
			"details": err.Error(),
		})
		return
	}

	jobID := uuid.New().String()

	responses, err := h.bridge.Submit(&worker.ComputeRequest{
		Type:    worker.RequestSimulateMatch,
		ID:      jobID,
		Payload: &req,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to submit synchronous match simulation")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Simulation queue unavailable",
			"details": err.Error(),
		})
		return
	}

	timeout := time.NewTimer(h.config.Simulation.SyncTimeout)
	defer timeout.Stop()

	for {
		select {
		case resp, ok := <-responses:
			if !ok {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Simulation ended without result",
				})
				return
			}

			// Les progressions sont ignorées en mode synchrone
			if !resp.Terminal() {
				continue
			}

			if resp.Type == worker.ResponseError {
				logrus.WithFields(logrus.Fields{
					"job_id": jobID,
					"error":  resp.Error,
				}).Error("Synchronous match simulation failed")

				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "Match simulation failed",
					"details": resp.Error,
				})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"result":  resp.Payload,
			})
			return

		case <-timeout.C:
			// Bascule en mode asynchrone, le job continue en arrière-plan
			h.tracker.Track(jobID, worker.RequestSimulateMatch, responses)

			c.JSON(http.StatusAccepted, gin.H{
				"success": true,
				"job_id":  jobID,
				"status":  JobRunning,
				"message": "Synchronous window elapsed, job continues in background",
			})
			return
		}
	}
}

// TrainPlayer soumet une session d'entraînement individuelle
func (h *SimulationHandler) TrainPlayer(c *gin.Context) {
	var req models.TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid training request",
			"details": err.Error(),
		})
		return
	}

	h.submitJob(c, worker.RequestTrainPlayer, &req)
}

// TrainBatch soumet une session d'entraînement d'effectif complet
func (h *SimulationHandler) TrainBatch(c *gin.Context) {
	var req models.TrainingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid training batch request",
			"details": err.Error(),
		})
		return
	}

	h.submitJob(c, worker.RequestTrainBatch, &req)
}

// ResolveScrim soumet un match d'entraînement
func (h *SimulationHandler) ResolveScrim(c *gin.Context) {
	var req models.ScrimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid scrim request",
			"details": err.Error(),
		})
		return
	}

	h.submitJob(c, worker.RequestResolveScrim, &req)
}

// EvaluateDrama soumet une évaluation d'ambiance d'équipe
func (h *SimulationHandler) EvaluateDrama(c *gin.Context) {
	var req models.DramaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid drama request",
			"details": err.Error(),
		})
		return
	}

	h.submitJob(c, worker.RequestEvaluateDrama, &req)
}

// GetJob retourne l'état courant d'un job, dernière progression incluse
func (h *SimulationHandler) GetJob(c *gin.Context) {
	jobID := c.Param("id")

	job, exists := h.tracker.Get(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"job":     job,
	})
}

// Stats retourne les compteurs de jobs du service
func (h *SimulationHandler) Stats(c *gin.Context) {
	running, completed, failed := h.tracker.Counts()

	c.JSON(http.StatusOK, gin.H{
		"service":   "simulation-service",
		"timestamp": time.Now().Unix(),
		"jobs": gin.H{
			"running":   running,
			"completed": completed,
			"failed":    failed,
		},
		"queue_capacity": h.config.Simulation.MaxQueuedJobs,
	})
}

// submitJob soumet une tâche au bridge et retourne son identifiant
func (h *SimulationHandler) submitJob(c *gin.Context, requestType worker.RequestType, payload interface{}) {
	jobID := uuid.New().String()

	responses, err := h.bridge.Submit(&worker.ComputeRequest{
		Type:    requestType,
		ID:      jobID,
		Payload: payload,
	})
	if err != nil {
		logrus.WithError(err).WithField("type", requestType).Error("Failed to submit simulation job")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Simulation queue unavailable",
			"details": err.Error(),
		})
		return
	}

	h.tracker.Track(jobID, requestType, responses)

	logrus.WithFields(logrus.Fields{
		"job_id": jobID,
		"type":   requestType,
	}).Info("Simulation job submitted")

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"job_id":  jobID,
		"type":    requestType,
		"status":  JobRunning,
	})
}
