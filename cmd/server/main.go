package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edurank/internal/auth"
	"edurank/internal/config"
	"edurank/internal/database"
	"edurank/internal/handlers"
	"edurank/internal/services"
	"edurank/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	store := storage.NewGormAdapter(db)

	interactionService := services.NewInteractionService(store, logger)
	similarityService := services.NewSimilarityService(store, logger)
	recommendationService := services.NewRecommendationService(store, logger)
	impactService := services.NewImpactService(store, logger)
	publicationService := services.NewPublicationService(store, logger)

	scheduler := startScheduler(cfg, logger, recommendationService, similarityService)
	defer scheduler.Stop()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	router := setupRouter(db, issuer,
		recommendationService, interactionService, similarityService, impactService, publicationService)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("received shutdown signal, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return cfg.Build()
}

// startScheduler wires the recurring sweeps: expiring stale recommendations
// and refreshing similarity edges for the most viewed content.
func startScheduler(cfg *config.Config, logger *zap.Logger,
	recommendations *services.RecommendationService, similarity *services.SimilarityService) *cron.Cron {

	scheduler := cron.New()

	_, err := scheduler.AddFunc(cfg.ExpirySchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := recommendations.ExpireStale(ctx); err != nil {
			logger.Error("recommendation expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("invalid expiry schedule", zap.Error(err))
	}

	_, err = scheduler.AddFunc(cfg.SimilaritySchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := similarity.RefreshTopContent(ctx, cfg.SimilarityBatchSize); err != nil {
			logger.Error("similarity refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("invalid similarity schedule", zap.Error(err))
	}

	scheduler.Start()
	return scheduler
}

func setupRouter(db *gorm.DB, issuer *auth.TokenIssuer,
	recommendations *services.RecommendationService,
	interactions *services.InteractionService,
	similarity *services.SimilarityService,
	impact *services.ImpactService,
	publications *services.PublicationService) *gin.Engine {

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	recommendationHandler := handlers.NewRecommendationHandler(recommendations)
	interactionHandler := handlers.NewInteractionHandler(interactions)
	similarityHandler := handlers.NewSimilarityHandler(similarity)
	impactHandler := handlers.NewImpactHandler(impact)
	publicationHandler := handlers.NewPublicationHandler(publications)
	docsHandler := handlers.NewDocsHandler()

	r.GET("/health", handlers.NewHealthHandler(db).Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/doc/:doc", docsHandler.ServeMarkdownAsHTML)

	api := r.Group("/api")
	api.Use(issuer.Middleware())
	{
		api.POST("/recommendations", recommendationHandler.Generate)
		api.GET("/recommendations", recommendationHandler.List)
		api.PUT("/recommendations/:id", recommendationHandler.UpdateStatus)
		api.POST("/recommendations/:id/feedback", recommendationHandler.Feedback)

		api.POST("/interactions", interactionHandler.Record)
		api.POST("/interactions/bookmark", interactionHandler.ToggleBookmark)
		api.POST("/interactions/rating", interactionHandler.Rate)
		api.GET("/content/:id/popularity", interactionHandler.PopularityStats)

		api.POST("/similarity/:id/recompute", similarityHandler.Recompute)

		api.GET("/impact/researchers/:id", impactHandler.ResearcherMetrics)
		api.GET("/impact/researchers/:id/field", impactHandler.FieldNormalized)
		api.GET("/impact/publications/:id/altmetrics", impactHandler.PublicationAltmetrics)
		api.GET("/impact/history/:entityType/:id", impactHandler.MetricHistory)

		api.POST("/publications", publicationHandler.Create)
		api.GET("/publications/:id", publicationHandler.Get)
		api.GET("/publications/:id/citations", publicationHandler.ListCitations)
		api.POST("/citations", publicationHandler.RecordCitation)
	}

	return r
}
