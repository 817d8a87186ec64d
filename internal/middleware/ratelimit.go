package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"simulation/internal/config"
	"simulation/internal/constants"
)

// clientLimiter associe un seau de jetons à sa dernière utilisation
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gère un seau de jetons par client et évince
// les clients restés silencieux
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	every   rate.Limit
	burst   int
}

// NewRateLimiter crée un limiteur de taux par client
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		burst:   cfg.BurstSize,
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go rl.evictStale(interval)

	return rl
}

// Allow consomme un jeton du seau du client. Retourne aussi le nombre
// de jetons restants pour l'en-tête informatif.
func (rl *RateLimiter) Allow(clientID string) (bool, int) {
	rl.mu.Lock()
	cl, ok := rl.clients[clientID]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.clients[clientID] = cl
	}
	cl.lastSeen = time.Now()
	rl.mu.Unlock()

	allowed := cl.limiter.Allow()
	return allowed, int(cl.limiter.TokensAt(time.Now()))
}

// evictStale retire les clients sans requête depuis trois intervalles
func (rl *RateLimiter) evictStale(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-3 * interval)
		rl.mu.Lock()
		for id, cl := range rl.clients {
			if cl.lastSeen.Before(cutoff) {
				delete(rl.clients, id)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit middleware de limitation de taux par IP, affinée par
// utilisateur authentifié
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := NewRateLimiter(cfg)

	return func(c *gin.Context) {
		clientID := c.ClientIP()
		if userID, exists := c.Get(constants.ContextUserID); exists {
			clientID = fmt.Sprintf("%s_%s", clientID, userID)
		}

		allowed, remaining := limiter.Allow(clientID)
		if !allowed {
			logrus.WithFields(logrus.Fields{
				"client_id":  clientID,
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"request_id": c.GetString(constants.ContextRequestID),
			}).Warn("Simulation rate limit exceeded")

			c.Header("X-Rate-Limit-Remaining", "0")
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many simulation requests, please slow down",
				"retry_after": 60,
				"request_id":  c.GetString(constants.ContextRequestID),
			})
			c.Abort()
			return
		}

		c.Header("X-Rate-Limit-Remaining", fmt.Sprintf("%d", remaining))
		c.Next()
	}
}

// RequestID middleware pour générer un ID unique par requête
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set(constants.ContextRequestID, requestID)
		c.Next()
	}
}
