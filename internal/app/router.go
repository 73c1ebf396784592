package app

import (
	"readaloud_backend/docs"
	"readaloud_backend/internal/config"
	"readaloud_backend/internal/middleware"
	"readaloud_backend/internal/model"
	"readaloud_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.IdentityMiddleware(a.resolver, a.sessions, cfg.JWT.Secret))

	// 1. 公共路由（无需登录）
	a.registerPublicRoutes(api, c)

	// 2. RPC 接口（旧前端按函数名调用）
	a.registerRPCRoutes(api, c)

	// 3. 教师/管理端 REST 接口
	a.registerStaffRoutes(api, c)

	// 注意：本地存储时录音文件不做静态目录直出，
	// 一律走 /api/recordings/:id/audio 的鉴权流式接口
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.POST("/auth/register", c.auth.Register)
	api.POST("/auth/login", c.auth.Login)
	api.GET("/visual-passwords", c.visualPassword.List)
}

func (a *App) registerRPCRoutes(api *gin.RouterGroup, c *controllers) {
	rpc := api.Group("/rpc")
	{
		// 登录类：匿名可达
		rpc.POST("/validate_student_access", c.rpc.ValidateStudentAccess)
		rpc.POST("/authenticate_with_username", c.rpc.AuthenticateWithUsername)

		// 学生会话
		rpc.POST("/submit_student_recording", middleware.RequireAuth(), c.rpc.SubmitStudentRecording)
		rpc.POST("/logout_student", middleware.RequireAuth(), c.rpc.LogoutStudent)

		// 教师/管理端
		rpc.POST("/get_class_recordings_with_students", middleware.RequireStaff(), c.rpc.GetClassRecordingsWithStudents)
		rpc.POST("/admin_get_classes_with_counts", middleware.RequireStaff(), c.rpc.AdminGetClassesWithCounts)
	}
}

func (a *App) registerStaffRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/auth/me", middleware.RequireAuth(), c.auth.Me)

	classes := api.Group("/classes", middleware.RequireStaff())
	{
		classes.POST("", c.class.Create)
		classes.GET("", c.class.List)
		classes.GET("/:id", c.class.Get)
		classes.PUT("/:id", c.class.Update)
		classes.DELETE("/:id", c.class.Delete)
		classes.POST("/:id/access-token", c.class.RegenerateToken)
		classes.GET("/:id/students", c.class.ListStudents)
	}

	api.PUT("/students/:id/active", middleware.RequireRoles(model.Teacher), c.class.SetStudentActive)
	api.GET("/profiles", middleware.RequireStaff(), c.class.ListProfiles)

	assignments := api.Group("/assignments")
	{
		// 学生也能读任务（行级过滤只给已发布的）
		assignments.GET("", middleware.RequireAuth(), c.assignment.List)
		assignments.GET("/:id", middleware.RequireAuth(), c.assignment.Get)

		assignments.POST("", middleware.RequireStaff(), c.assignment.Create)
		assignments.PUT("/:id", middleware.RequireStaff(), c.assignment.Update)
		assignments.DELETE("/:id", middleware.RequireStaff(), c.assignment.Delete)
	}

	recordings := api.Group("/recordings", middleware.RequireAuth())
	{
		recordings.GET("", c.recording.List)
		recordings.GET("/:id", c.recording.Get)
		recordings.GET("/:id/audio", c.recording.Stream)
		recordings.GET("/:id/status", c.recording.Status)
		recordings.PUT("/:id/review", middleware.RequireStaff(), c.recording.Review)
	}
}
