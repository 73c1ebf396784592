package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"readaloud_backend/internal/authz"
	"readaloud_backend/internal/config"
	"readaloud_backend/internal/controller"
	"readaloud_backend/internal/repository"
	"readaloud_backend/internal/service"
	"readaloud_backend/internal/session"
	"readaloud_backend/pkg/configwatcher"
	"readaloud_backend/pkg/database"
	"readaloud_backend/pkg/logger"
	"readaloud_backend/pkg/monitoring"
	"readaloud_backend/pkg/security"
	"readaloud_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	sessions        session.Store
	resolver        *authz.Resolver
	bgCancel        context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	profile        *repository.ProfileRepository
	class          *repository.ClassRepository
	assignment     *repository.AssignmentRepository
	recording      *repository.RecordingRepository
	visualPassword *repository.VisualPasswordRepository
	claims         *repository.ClaimsRepo
}

type services struct {
	auth          *service.AuthService
	storage       *service.StorageService
	studentAccess *service.StudentAccessService
	class         *service.ClassService
	assignment    *service.AssignmentService
	recording     *service.RecordingService
	transcription *service.TranscriptionService
}

type controllers struct {
	auth           *controller.AuthController
	visualPassword *controller.VisualPasswordController
	class          *controller.ClassController
	assignment     *controller.AssignmentController
	recording      *controller.RecordingController
	rpc            *controller.RPCController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	profile := repository.NewProfileRepository(db)
	class := repository.NewClassRepository(db)

	return &repositories{
		profile:        profile,
		class:          class,
		assignment:     repository.NewAssignmentRepository(db),
		recording:      repository.NewRecordingRepository(db),
		visualPassword: repository.NewVisualPasswordRepository(db),
		claims:         repository.NewClaimsRepo(profile, class),
	}
}

// initSessionStore 三种存法：memory（默认）、db、redis
func (a *App) initSessionStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) session.Store {
	switch cfg.Session.Store {
	case "redis":
		if rdb != nil {
			return session.NewRedisStore(rdb)
		}
		logger.Log.Warn("redis session store requested but redis unavailable, using memory")
		return session.NewMemoryStore()
	case "db":
		return session.NewDBStore(db)
	default:
		return session.NewMemoryStore()
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.profile, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	s.studentAccess = service.NewStudentAccessService(repos.class, repos.profile, a.sessions, cfg.Session.TTL)
	s.class = service.NewClassService(repos.class, repos.profile)
	s.assignment = service.NewAssignmentService(repos.assignment, repos.class)

	var queue service.JobQueue
	if cfg.Whisper.Enabled {
		if rdb != nil {
			queue = service.NewRedisJobQueue(rdb)
		} else {
			queue = service.NewMemoryJobQueue(256)
		}
		whisper := service.NewWhisperClient(&cfg.Whisper)
		s.transcription = service.NewTranscriptionService(queue, whisper, repos.recording, s.storage, cfg.Whisper.Workers)
	}

	s.recording = service.NewRecordingService(
		repos.recording, repos.profile, repos.class, repos.assignment, s.storage, queueOrNil(s.transcription))

	return s
}

// queueOrNil 转写关闭时录音服务拿到 nil 队列，提交后停在 uploaded
func queueOrNil(t *service.TranscriptionService) service.JobQueue {
	if t == nil {
		return nil
	}
	return t.Queue()
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:           controller.NewAuthController(s.auth),
		visualPassword: controller.NewVisualPasswordController(repos.visualPassword),
		class:          controller.NewClassController(s.class),
		assignment:     controller.NewAssignmentController(s.assignment),
		recording:      controller.NewRecordingController(s.recording),
		rpc:            controller.NewRPCController(s.studentAccess, s.recording, s.class, s.auth),
		health:         controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	cors := security.NewCORSPolicy(cfg.CORS.AllowedOrigins)
	router.Use(cors.Middleware())
	// 配置热加载时同步刷新跨域白名单
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		cors.SetOrigins(newCfg.CORS.AllowedOrigins)
	})

	router.Use(security.Secure())
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services, cfg *config.Config) {
	// 会话清扫 + 活跃会话指标
	go func() {
		interval := cfg.Session.SweepInterval
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				switch store := a.sessions.(type) {
				case *session.MemoryStore:
					if removed := store.Sweep(); removed > 0 {
						logger.Log.Info("swept expired sessions", zap.Int("removed", removed))
					}
					monitoring.ActiveSessions.Set(float64(store.Len()))
				case *session.DBStore:
					removed, err := store.Sweep(ctx)
					if err != nil {
						logger.Log.Error("session sweep failed", zap.Error(err))
					} else if removed > 0 {
						logger.Log.Info("swept expired sessions", zap.Int64("removed", removed))
					}
				}
			}
		}
	}()

	if s.transcription != nil {
		s.transcription.Start(ctx)
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode != "release" || cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// redis 只承载会话和队列，起不来就退化到进程内实现
			logger.Log.Warn("redis unavailable, falling back to in-process stores", zap.Error(err))
			rdb = nil
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	app.sessions = app.initSessionStore(cfg, db, rdb)

	repos := app.initRepositories(db)
	app.resolver = authz.NewResolver(repos.claims)

	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("readaloud-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	bgCtx, cancel := context.WithCancel(context.Background())
	app.bgCancel = cancel
	app.startBackgroundTasks(bgCtx, services, cfg)

	// 配置热加载：目前只刷新进程内配置并通知回调
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		reloaded, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("config reloaded")
		app.Config = reloaded
		for _, cb := range app.configCallbacks {
			cb(reloaded)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 停掉后台 worker，再关 HTTP
	if a.bgCancel != nil {
		a.bgCancel()
	}
	if a.services != nil && a.services.transcription != nil {
		a.services.transcription.Wait()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
