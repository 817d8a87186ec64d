package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"simulation/internal/worker"
)

// StreamHandler diffuse les réponses de jobs sur WebSocket
type StreamHandler struct {
	upgrader websocket.Upgrader
	tracker  *JobTracker
}

// NewStreamHandler crée un nouveau handler de streaming de jobs
func NewStreamHandler(tracker *JobTracker) *StreamHandler {
	return &StreamHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // En production, vérifier l'origine
			},
		},
		tracker: tracker,
	}
}

// StreamJob pousse les progressions d'un job puis sa réponse terminale.
// Chaque trame reprend le format des réponses du worker de calcul.
func (h *StreamHandler) StreamJob(c *gin.Context) {
	jobID := c.Param("id")

	progressCh, cancel, exists := h.tracker.Subscribe(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	// Détection de la fermeture côté client
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case p, ok := <-progressCh:
			if !ok {
				h.writeTerminal(conn, jobID)
				return
			}

			frame := worker.ComputeResponse{
				Type:     worker.ResponseProgress,
				ID:       jobID,
				Progress: &p,
			}
			if err := conn.WriteJSON(frame); err != nil {
				logrus.WithError(err).WithField("job_id", jobID).Debug("WebSocket write failed")
				return
			}

		case <-done:
			logrus.WithField("job_id", jobID).Debug("WebSocket client disconnected")
			return
		}
	}
}

// writeTerminal envoie la réponse terminale d'un job puis ferme proprement
func (h *StreamHandler) writeTerminal(conn *websocket.Conn, jobID string) {
	job, exists := h.tracker.Get(jobID)
	if !exists {
		return
	}

	frame := worker.ComputeResponse{ID: jobID}
	switch job.Status {
	case JobCompleted:
		frame.Type = worker.ResponseResult
		frame.Payload = job.Result
	case JobFailed:
		frame.Type = worker.ResponseError
		frame.Error = job.Error
	default:
		return
	}

	if err := conn.WriteJSON(frame); err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Debug("WebSocket terminal write failed")
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Debug("WebSocket close failed")
	}
}
