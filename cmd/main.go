package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"simulation/internal/config"
	"simulation/internal/database"
	"simulation/internal/handlers"
	"simulation/internal/middleware"
	"simulation/internal/monitoring"
	"simulation/internal/repository"
	"simulation/internal/service"
	"simulation/internal/worker"
)

// Version du service (à définir lors du build)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	initLogger()

	logrus.WithFields(logrus.Fields{
		"service":    "simulation",
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("🎮 Starting Simulation Service...")

	// Chargement de la configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}

	// Connexion à la base de données
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Exécution des migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Initialisation des repositories
	matchRepo := repository.NewMatchRepository(db)

	// Initialisation des moteurs de simulation
	buyPhase := service.NewBuyPhaseResolver()
	combat := service.NewCombatResolver()
	rounds := service.NewRoundSimulator(combat)
	summaries := service.NewSummaryCalculator()
	compositions := service.NewCompositionAnalyzer()
	matchSimulator := service.NewMatchSimulator(buyPhase, rounds, summaries, compositions, logrus.StandardLogger())
	trainingEngine := service.NewTrainingEngine(logrus.StandardLogger())
	scrimEngine := service.NewScrimEngine(matchSimulator, logrus.StandardLogger())
	dramaEngine := service.NewDramaEngine(logrus.StandardLogger())

	// Initialisation du bridge de calcul
	bridge := worker.NewSimulationBridge(logrus.StandardLogger(), cfg.Simulation.MaxQueuedJobs)
	worker.RegisterEngines(bridge, &worker.EngineSet{
		Matches:   matchSimulator,
		Training:  trainingEngine,
		Scrims:    scrimEngine,
		Drama:     dramaEngine,
		MatchRepo: matchRepo,
	})

	// Initialisation du monitoring
	metrics := monitoring.NewMetrics()
	healthChecker := monitoring.NewHealthChecker(db)

	// Initialisation des handlers
	tracker := handlers.NewJobTracker()
	simulationHandler := handlers.NewSimulationHandler(bridge, tracker, cfg)
	matchHandler := handlers.NewMatchHandler(matchRepo)
	streamHandler := handlers.NewStreamHandler(tracker)

	// Purge périodique de l'historique des matchs
	startRetentionRoutine(matchRepo, cfg.Simulation.ResultRetentionDays)

	// Configuration du mode Gin
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configuration des routes
	router := setupRoutes(simulationHandler, matchHandler, streamHandler, healthChecker, metrics, cfg)

	// Configuration du serveur HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Démarrage du serveur en arrière-plan
	go func() {
		logrus.WithFields(logrus.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
			"env":  cfg.Server.Environment,
		}).Info("🎮 Simulation Service started successfully")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Gestion gracieuse de l'arrêt
	gracefulShutdown(server, bridge)
}

// setupRoutes configure toutes les routes du service Simulation
func setupRoutes(
	simulationHandler *handlers.SimulationHandler,
	matchHandler *handlers.MatchHandler,
	streamHandler *handlers.StreamHandler,
	healthChecker *monitoring.HealthChecker,
	metrics *monitoring.Metrics,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Middleware globaux
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(metrics.Middleware())

	// Rate limiting global si configuré
	if cfg.RateLimit.RequestsPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	// Routes de santé et monitoring (sans auth)
	router.GET(cfg.Monitoring.HealthPath, healthChecker.HealthCheck)
	router.GET("/ready", healthChecker.ReadinessCheck)
	router.GET("/live", healthChecker.LivenessCheck)
	router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))
	router.GET("/stats", simulationHandler.Stats)

	// Routes de debug (seulement en développement)
	if cfg.Server.Debug {
		debug := router.Group("/debug")
		debug.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole("admin"))
		{
			debug.GET("/info", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"service":    "simulation",
					"version":    Version,
					"build_time": BuildTime,
					"git_commit": GitCommit,
					"go_version": runtime.Version(),
					"goroutines": runtime.NumGoroutine(),
				})
			})
			debug.GET("/config", func(c *gin.Context) {
				// Sections JWT et Database omises: secrets
				c.JSON(http.StatusOK, gin.H{
					"server":     cfg.Server,
					"simulation": cfg.Simulation,
					"rate_limit": cfg.RateLimit,
					"monitoring": cfg.Monitoring,
				})
			})
		}
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Routes protégées (authentification JWT requise)
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			// Simulation et jobs
			simulation := protected.Group("/simulation")
			{
				simulation.POST("/match", simulationHandler.SimulateMatch)
				simulation.POST("/match/sync", simulationHandler.SimulateMatchSync)
				simulation.POST("/training", simulationHandler.TrainPlayer)
				simulation.POST("/training/batch", simulationHandler.TrainBatch)
				simulation.POST("/scrim", simulationHandler.ResolveScrim)
				simulation.POST("/drama", simulationHandler.EvaluateDrama)

				simulation.GET("/jobs/:id", simulationHandler.GetJob)
				simulation.GET("/jobs/:id/stream", streamHandler.StreamJob)
			}

			// Historique des matchs
			matches := protected.Group("/matches")
			{
				matches.GET("", matchHandler.ListMatches)
				matches.GET("/:id", matchHandler.GetMatch)
				matches.DELETE("/:id", matchHandler.DeleteMatch)
			}
		}
	}

	return router
}

// startRetentionRoutine purge périodiquement les matchs expirés
func startRetentionRoutine(matchRepo repository.MatchRepositoryInterface, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			deleted, err := matchRepo.CleanupOlderThan(retentionDays)
			if err != nil {
				logrus.WithError(err).Error("Failed to cleanup old match results")
				continue
			}
			if deleted > 0 {
				logrus.WithFields(logrus.Fields{
					"deleted":        deleted,
					"retention_days": retentionDays,
				}).Info("Old match results cleaned up")
			}
		}
	}()
}

// initLogger initialise le système de logging
func initLogger() {
	if os.Getenv("SERVER_ENVIRONMENT") == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.SetOutput(os.Stdout)
}

// gracefulShutdown gère l'arrêt gracieux du service
func gracefulShutdown(server *http.Server, bridge worker.SimulationBridgeInterface) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logrus.Info("🎮 Simulation Service is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Arrêter les nouvelles connexions
	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	// Rejeter les jobs en attente et arrêter le worker
	bridge.Stop()

	logrus.Info("🎮 Simulation Service stopped gracefully")
}
