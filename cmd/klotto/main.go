package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"klotto/internal/client/dhlottery"
	"klotto/internal/config"
	cronrunner "klotto/internal/cron"
	"klotto/internal/db"
	"klotto/internal/drawstore"
	"klotto/internal/generator"
	"klotto/internal/handler"
	"klotto/internal/logger"
	"klotto/internal/repository"
	gormrepository "klotto/internal/repository/gorm"
	"klotto/internal/service"

	_ "klotto/docs"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfgPath := os.Getenv("KL_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("KL_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var (
		primary repository.Repository
		readyDB *db.DB
	)
	dbConn, err := db.Open(cfg.DB)
	switch {
	case errors.Is(err, db.ErrDisabled):
		logger.Info("primary database disabled, running on json cache")
	case err != nil:
		logger.Warn("db open failed, running on json cache", zap.Error(err))
	default:
		defer db.Close(dbConn)
		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		primary = gormrepository.New(dbConn.Gorm)
		readyDB = dbConn
	}

	cache := drawstore.NewJSONCache(cfg.Cache.Path, cfg.Cache.Size)
	store := drawstore.New(primary, cache, drawstore.Options{Logger: logger})
	records := store.Load(context.Background())
	logger.Info("draw history loaded",
		zap.Int("records", len(records)),
		zap.Bool("primary", store.HasPrimary()),
	)

	hub := service.NewEventHub()
	var syncSvc *service.DrawSyncService
	if cfg.Sync.Enabled {
		estimator, err := service.NewDrawEstimator(cfg.Sync)
		if err != nil {
			logger.Fatal("invalid sync config", zap.Error(err))
		}
		lotteryHTTP := &http.Client{Timeout: cfg.Lottery.Timeout}
		syncSvc = &service.DrawSyncService{
			Fetcher:   dhlottery.NewClient(lotteryHTTP, cfg.Lottery.BaseURL),
			State:     primary,
			Hub:       hub,
			Logger:    logger,
			Estimator: estimator,
			Pace:      cfg.Sync.Pace,
		}
	}
	lottoSvc := service.NewLottoService(store, generator.New(nil), syncSvc, logger)

	historySvc := service.NewHistoryService(cfg.History.Path, cfg.History.MaxEntries, logger)
	favoritesSvc := service.NewFavoritesService(cfg.Favorites.Path, logger)
	logger.Info("user data loaded",
		zap.Int("history", historySvc.Load()),
		zap.Int("favorites", favoritesSvc.Load()),
	)
	if cfg.History.RecordGenerated {
		lottoSvc.History = historySvc
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(handler.RequireBearerForWrites(cfg.Server.APIToken))
	engine.Use(handler.WriteAuditMiddleware(logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthHandler := &handler.HealthHandler{DB: readyDB}
	healthHandler.Register(engine)
	drawHandler := &handler.DrawHandler{Service: lottoSvc}
	drawHandler.Register(engine)
	statsHandler := &handler.StatsHandler{Service: lottoSvc}
	statsHandler.Register(engine)
	generateHandler := &handler.GenerateHandler{
		Service:     lottoSvc,
		DefaultSets: cfg.Generator.DefaultSets,
		MaxSets:     cfg.Generator.MaxSets,
	}
	generateHandler.Register(engine)
	syncHandler := &handler.SyncHandler{
		Service:        lottoSvc,
		Hub:            hub,
		Logger:         logger,
		BaseCtx:        ctx,
		AllowAnyOrigin: strings.EqualFold(cfg.App.Env, "dev"),
	}
	syncHandler.Register(engine)
	historyHandler := &handler.HistoryHandler{History: historySvc}
	historyHandler.Register(engine)
	favoritesHandler := &handler.FavoritesHandler{Favorites: favoritesSvc}
	favoritesHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	onSynced := func(synced int) {
		logger.Info("draw sync completed", zap.Int("synced", synced))
	}

	cronRunner := cronrunner.New(logger, ctx, cfg.Sync.Location())
	if cfg.Cron.Enabled && syncSvc != nil {
		id, err := cronRunner.Add("draw_sync", cfg.Cron.DrawSync, func(ctx context.Context) {
			lottoSvc.StartBackgroundSync(ctx, onSynced)
		})
		if err != nil {
			logger.Fatal("invalid cron spec", zap.String("spec", cfg.Cron.DrawSync), zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
		logger.Info("draw sync scheduled", zap.Time("next", cronRunner.Next(id)))
	}

	if cfg.Sync.OnStart && syncSvc != nil {
		lottoSvc.StartBackgroundSync(ctx, onSynced)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	stop()
	lottoSvc.StopSync()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
