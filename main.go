package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"football-dwh/config"
	"football-dwh/models"
	"football-dwh/providers/footballdata"
	"football-dwh/providers/transfermarkt"
	"football-dwh/services"
	"football-dwh/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to warehouse database", zap.Error(err))
	}
	logging.Info("Successfully connected to warehouse database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	db.AutoMigrate(
		&models.Season{},
		&models.Competition{},
		&models.Team{},
		&models.Player{},
		&models.Match{},
		&models.MarketValue{},
		&models.Transfer{},
		&models.PlayerSeasonStat{},
		&models.PlayerMatchPerformance{},
	)

	// Setup Providers
	fdFetcher := footballdata.NewFetcher(cfg, logging)
	tmFetcher := transfermarkt.NewFetcher(cfg, logging)

	// Rohdaten-Archiv (optional)
	if cfg.ArchiveEnabled {
		s3Client, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		archiver := storage.NewArchiver(s3Client, cfg.ArchiveS3Bucket, logging)
		fdFetcher.Client.Archive = archiver.ArchiveResponse
		tmFetcher.Client.Archive = archiver.ArchiveResponse
		logging.Info("Raw response archive enabled", zap.String("bucket", cfg.ArchiveS3Bucket))
	}

	// Setup Services
	matcher := services.NewMatcher(tmFetcher, logging)
	reconciler := services.NewReconciler(db, tmFetcher, matcher, logging)
	seasons := services.NewSeasonService(db, logging)
	facts := services.NewFactService(db, logging)
	perf := services.NewPerformanceService(db, reconciler, logging)

	seasonLoad := &services.SeasonLoadService{
		DB:         db,
		FD:         fdFetcher,
		TM:         tmFetcher,
		Reconciler: reconciler,
		Seasons:    seasons,
		Facts:      facts,
		Perf:       perf,
		Logger:     logging,
	}
	playerData := &services.PlayerDataService{
		DB:         db,
		TM:         tmFetcher,
		Reconciler: reconciler,
		Seasons:    seasons,
		Facts:      facts,
		Matcher:    matcher,
		Logger:     logging,
	}
	daily := &services.DailyService{
		DB:          db,
		FD:          fdFetcher,
		TM:          tmFetcher,
		Facts:       facts,
		Seasons:     seasons,
		PlayerData:  playerData,
		SeasonLoad:  seasonLoad,
		Competition: cfg.DefaultCompetition,
		Logger:      logging,
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupRunRoutes(router, cfg, seasonLoad, daily, playerData, logging)
	setupTeamRoutes(router, db, logging)
	setupPlayerRoutes(router, db, logging)
	setupMatchRoutes(router, db, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled daily job...")
		if err := daily.Run(context.Background()); err != nil {
			logging.Error("Cron job failed", zap.Error(err))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// setupRunRoutes stellt die Trigger für die drei ETL-Läufe bereit.
// Läufe laufen asynchron, der Aufrufer bekommt sofort 202.
func setupRunRoutes(router *gin.Engine, cfg *config.Config, seasonLoad *services.SeasonLoadService, daily *services.DailyService, playerData *services.PlayerDataService, log *zap.Logger) {
	rg := router.Group("/runs")

	rg.POST("/season-load", func(c *gin.Context) {
		var req struct {
			Competition string `json:"competition"`
			SeasonYear  int    `json:"season_year"`
		}
		// Leerer Body ist erlaubt, dann gelten die Defaults.
		_ = c.ShouldBindJSON(&req)
		if req.Competition == "" {
			req.Competition = cfg.DefaultCompetition
		}
		if req.SeasonYear == 0 {
			req.SeasonYear = cfg.DefaultSeasonYear
		}

		go func(code string, year int) {
			if err := seasonLoad.Run(context.Background(), code, year); err != nil {
				log.Error("Async season-load failed", zap.Error(err))
			}
		}(req.Competition, req.SeasonYear)

		c.JSON(http.StatusAccepted, gin.H{
			"message":     "season-load triggered",
			"competition": req.Competition,
			"season_year": req.SeasonYear,
		})
	})

	rg.POST("/daily", func(c *gin.Context) {
		go func() {
			if err := daily.Run(context.Background()); err != nil {
				log.Error("Async daily run failed", zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "daily run triggered"})
	})

	rg.POST("/player-data", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		go func() {
			if err := playerData.Run(context.Background(), limit); err != nil {
				log.Error("Async player-data run failed", zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "player-data run triggered", "limit": limit})
	})

	rg.POST("/backfill-ids", func(c *gin.Context) {
		go func() {
			filled, err := playerData.BackfillCrossIDs(context.Background())
			if err != nil {
				log.Error("Async backfill failed", zap.Error(err))
				return
			}
			log.Info("Async backfill completed", zap.Int("filled", filled))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "backfill triggered"})
	})
}

func setupTeamRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/teams")

	rg.GET("/", func(c *gin.Context) {
		var teams []models.Team
		if err := db.Find(&teams).Error; err != nil {
			log.Error("Database query for teams failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, teams)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var team models.Team
		if err := db.First(&team, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, team)
	})
}

func setupPlayerRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/players")

	rg.POST("/query", func(c *gin.Context) {
		type PlayerQuery struct {
			Name        string `json:"name"`
			TeamID      *uint  `json:"team_id"`
			Nationality string `json:"nationality"`
			Position    string `json:"position"`
			Limit       int    `json:"limit"`
		}

		var req PlayerQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Player{})
		if req.Name != "" {
			query = query.Where("name ILIKE ?", "%"+req.Name+"%")
		}
		if req.TeamID != nil {
			query = query.Where("current_team_id = ?", *req.TeamID)
		}
		if req.Nationality != "" {
			query = query.Where("nationality = ?", req.Nationality)
		}
		if req.Position != "" {
			query = query.Where("position = ?", req.Position)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var players []models.Player
		if err := query.Order("name").Find(&players).Error; err != nil {
			log.Error("Database query for players failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, players)
	})

	rg.GET("/:id/market-values", func(c *gin.Context) {
		var values []models.MarketValue
		if err := db.Where("player_id = ?", c.Param("id")).Order("date_recorded").Find(&values).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, values)
	})

	rg.GET("/:id/transfers", func(c *gin.Context) {
		var transfers []models.Transfer
		if err := db.Where("player_id = ?", c.Param("id")).Order("date_recorded").Find(&transfers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, transfers)
	})

	rg.GET("/:id/season-stats", func(c *gin.Context) {
		var stats []models.PlayerSeasonStat
		if err := db.Where("player_id = ?", c.Param("id")).Find(&stats).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})
}

func setupMatchRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/matches")

	rg.POST("/query", func(c *gin.Context) {
		type MatchQuery struct {
			SeasonID      *uint  `json:"season_id"`
			CompetitionID *uint  `json:"competition_id"`
			TeamID        *uint  `json:"team_id"`
			Status        string `json:"status"`
			Limit         int    `json:"limit"`
		}

		var req MatchQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Match{})
		if req.SeasonID != nil {
			query = query.Where("season_id = ?", *req.SeasonID)
		}
		if req.CompetitionID != nil {
			query = query.Where("competition_id = ?", *req.CompetitionID)
		}
		if req.TeamID != nil {
			query = query.Where("home_team_id = ? OR away_team_id = ?", *req.TeamID, *req.TeamID)
		}
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var matches []models.Match
		if err := query.Order("date desc").Find(&matches).Error; err != nil {
			log.Error("Database query for matches failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, matches)
	})

	rg.GET("/:id/performances", func(c *gin.Context) {
		var performances []models.PlayerMatchPerformance
		if err := db.Where("match_id = ?", c.Param("id")).Find(&performances).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, performances)
	})
}
