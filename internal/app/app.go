// Package app assembles the substitution API from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-substitution-api/internal/handler"
	"github.com/noah-isme/sma-substitution-api/internal/middleware"
	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/repository"
	"github.com/noah-isme/sma-substitution-api/internal/service"
	"github.com/noah-isme/sma-substitution-api/pkg/cache"
	"github.com/noah-isme/sma-substitution-api/pkg/config"
	"github.com/noah-isme/sma-substitution-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-substitution-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-substitution-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// App owns the engine, the services built on it and the HTTP router.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	engine  *service.Engine
	metrics *service.MetricsService
	board   *service.LiveBoardService
	router  *gin.Engine
	redis   *redis.Client
}

// New loads the timetable and wires every service and handler.
func New(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*App, error) {
	if logr == nil {
		logr = zap.NewNop()
	}
	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	engine, sourceName, err := LoadEngine(ctx, cfg.Timetable, cfg.Database, metrics, logr)
	if err != nil {
		return nil, err
	}
	return NewWithEngine(ctx, cfg, logr, engine, sourceName, metrics), nil
}

// NewWithEngine wires the services around an already loaded engine.
func NewWithEngine(ctx context.Context, cfg *config.Config, logr *zap.Logger, engine *service.Engine, sourceName string, metrics *service.MetricsService) *App {
	if logr == nil {
		logr = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logr, engine: engine, metrics: metrics}

	validate := validator.New()
	store := repository.NewPlanStore(engine.Timetable().DayNames())
	cacheSvc := service.NewCacheService(a.cacheRepository(ctx), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	loc, err := time.LoadLocation(cfg.Timetable.Timezone)
	if err != nil {
		logr.Warn("unknown school timezone, using UTC", zap.String("timezone", cfg.Timetable.Timezone), zap.Error(err))
		loc = time.UTC
	}
	clock := service.NewSchoolClock(engine.Timetable().Periods, loc)
	a.board = service.NewLiveBoardService(engine, clock, cfg.LiveBoard.Interval, metrics, logr)

	substitutions := service.NewSubstitutionService(engine, store, cacheSvc, metrics, validate, logr, cfg.Cache.TTL)
	exports := service.NewExportService(engine, store, logr, nil, nil)
	timetable := service.NewTimetableService(engine, store, sourceName)
	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Engine:    engine,
		Plans:     store,
		Clock:     clock,
		LiveBoard: a.board,
		Metrics:   metrics,
		Logger:    logr,
	})
	auth := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	a.router = a.buildRouter(routerDeps{
		substitutions: handler.NewSubstitutionHandler(substitutions, exports),
		timetable:     handler.NewTimetableHandler(timetable),
		dashboard:     handler.NewDashboardHandler(dashboard),
		metrics:       handler.NewMetricsHandler(metrics, a),
		auth:          auth,
	})
	return a
}

func (a *App) cacheRepository(ctx context.Context) service.CacheRepository {
	if !a.cfg.Cache.Enabled {
		return nil
	}
	if a.cfg.Cache.Backend == "redis" {
		client, err := cache.NewRedis(ctx, a.cfg.Redis)
		if err == nil {
			a.redis = client
			return repository.NewCacheRepository(client, a.cfg.Redis.KeyPrefix, a.logger)
		}
		a.logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
	}
	return repository.NewMemoryCacheRepository()
}

type routerDeps struct {
	substitutions *handler.SubstitutionHandler
	timetable     *handler.TimetableHandler
	dashboard     *handler.DashboardHandler
	metrics       *handler.MetricsHandler
	auth          *service.AuthService
}

func (a *App) buildRouter(deps routerDeps) *gin.Engine {
	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)
	if a.metrics != nil {
		r.GET("/metrics", deps.metrics.Prometheus)
	}
	if a.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(a.cfg.APIPrefix)
	api.GET("/timetable", deps.timetable.Overview)
	api.GET("/timetable/days/:day", deps.timetable.Day)
	api.GET("/timetable/classes/:class", deps.timetable.Class)
	api.GET("/timetable/teachers/:teacher", deps.timetable.Teacher)
	api.GET("/availability/free", deps.substitutions.FreeTeachers)
	api.GET("/dashboard", deps.dashboard.Summary)

	subs := api.Group("/substitutions")
	subs.GET("/:day", deps.substitutions.Plan)
	subs.GET("/:day/export", deps.substitutions.Export)

	mutations := subs.Group("")
	if a.cfg.Auth.Enabled {
		mutations.Use(middleware.JWT(deps.auth), middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator))
	} else {
		mutations.Use(middleware.OptionalJWT(deps.auth))
	}
	mutations.POST("/:day/generate", deps.substitutions.Generate)
	mutations.DELETE("/:day", deps.substitutions.Reset)

	return r
}

// Router exposes the HTTP handler.
func (a *App) Router() http.Handler {
	return a.router
}

// Engine exposes the shared engine.
func (a *App) Engine() *service.Engine {
	return a.engine
}

// Ready reports whether the engine has a timetable to answer from and the Redis cache, when used, answers.
func (a *App) Ready(ctx context.Context) error {
	if a.engine == nil || len(a.engine.Timetable().Days) == 0 {
		return errors.New("timetable not loaded")
	}
	if a.redis != nil {
		if err := cache.Ping(ctx, a.redis); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Run serves HTTP and refreshes the live board until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if a.cfg.LiveBoard.Enabled {
		g.Go(func() error {
			return a.board.Run(gctx)
		})
	}

	err := g.Wait()
	a.Close()
	return err
}

// Close releases external connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
		a.redis = nil
	}
}
