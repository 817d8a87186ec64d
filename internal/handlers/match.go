package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"simulation/internal/constants"
	"simulation/internal/repository"
)

// MatchHandler gère les requêtes HTTP sur l'historique des matchs
type MatchHandler struct {
	matchRepo repository.MatchRepositoryInterface
}

// NewMatchHandler crée un nouveau handler d'historique des matchs
func NewMatchHandler(matchRepo repository.MatchRepositoryInterface) *MatchHandler {
	return &MatchHandler{
		matchRepo: matchRepo,
	}
}

// ListMatches liste les matchs persistés, filtrés par équipe si demandé
func (h *MatchHandler) ListMatches(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	var teamID *uuid.UUID
	if raw := c.Query("team_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid team ID",
			})
			return
		}
		teamID = &id
	}

	records, err := h.matchRepo.List(teamID, pageSize, (page-1)*pageSize)
	if err != nil {
		logrus.WithError(err).Error("Failed to list match results")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list match results",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"matches":   records,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetMatch récupère un match complet par son ID
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid match ID",
		})
		return
	}

	result, err := h.matchRepo.GetByID(matchID)
	if err != nil {
		if err.Error() == "match result not found" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Match not found",
			})
			return
		}

		logrus.WithError(err).WithField("match_id", matchID).Error("Failed to get match result")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get match result",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"match":   result,
	})
}

// DeleteMatch supprime un match persisté
func (h *MatchHandler) DeleteMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid match ID",
		})
		return
	}

	if err := h.matchRepo.Delete(matchID); err != nil {
		if err.Error() == "match result not found" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Match not found",
			})
			return
		}

		logrus.WithError(err).WithField("match_id", matchID).Error("Failed to delete match result")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete match result",
			"details": err.Error(),
		})
		return
	}

	logrus.WithField("match_id", matchID).Info("Match result deleted")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Match result deleted successfully",
	})
}
