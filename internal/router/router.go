package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/handlers"
	"github.com/yukikurage/taskhub-api/internal/metrics"
	"github.com/yukikurage/taskhub-api/internal/middleware"
	"github.com/yukikurage/taskhub-api/internal/policy"
	"github.com/yukikurage/taskhub-api/internal/realtime"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/services"
	"gorm.io/gorm"
)

// Services bundles the application services shared by the router and
// background jobs.
type Services struct {
	Sessions      *services.SessionService
	Auth          *services.AuthService
	Users         *services.UserService
	Tasks         *services.TaskService
	Comments      *services.CommentService
	Ratings       *services.RatingService
	Notifications *services.NotificationService
	Messages      *services.MessageService
	Activities    *services.ActivityService
	Reports       *services.ReportService
	AI            *services.AIService
}

// NewServices wires repositories and services on db. Realtime events go
// to publisher, which may be nil.
func NewServices(cfg *config.Config, db *gorm.DB, publisher services.Publisher) *Services {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return &Services{
		Sessions:      services.NewSessionService(repository.NewSessionRepository(db), cfg.SessionTTL),
		Auth:          services.NewAuthService(userRepo),
		Users:         services.NewUserService(userRepo),
		Tasks:         services.NewTaskService(taskRepo, userRepo, publisher),
		Comments:      services.NewCommentService(repository.NewCommentRepository(db), taskRepo, publisher),
		Ratings:       services.NewRatingService(repository.NewRatingRepository(db), taskRepo),
		Notifications: services.NewNotificationService(repository.NewNotificationRepository(db)),
		Messages:      services.NewMessageService(repository.NewMessageRepository(db), userRepo, publisher),
		Activities:    services.NewActivityService(repository.NewActivityRepository(db), taskRepo),
		Reports:       services.NewReportService(taskRepo, userRepo),
		AI:            services.NewAIService(cfg.OpenAIAPIKey),
	}
}

func NewRouter(cfg *config.Config, db *gorm.DB, hub *realtime.Hub, svc *Services) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())
	r.Use(metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With", constants.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", constants.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Sessions, cfg.IsProduction())
	taskHandler := handlers.NewTaskHandler(svc.Tasks, svc.AI)
	commentHandler := handlers.NewCommentHandler(svc.Comments)
	ratingHandler := handlers.NewRatingHandler(svc.Ratings)
	userHandler := handlers.NewUserHandler(svc.Users)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	messageHandler := handlers.NewMessageHandler(svc.Messages)
	activityHandler := handlers.NewActivityHandler(svc.Activities)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	healthHandler := handlers.NewHealthHandler(db)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := middleware.RequireAuth(svc.Sessions)
	can := middleware.RequirePermission

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.PUT("/password", requireAuth, authHandler.ChangePassword)
		}

		protected := api.Group("")
		protected.Use(requireAuth)

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", can(policy.ActionReadTask), taskHandler.ListTasks)
			tasks.POST("", can(policy.ActionCreateTask), taskHandler.CreateTask)
			tasks.POST("/draft", can(policy.ActionCreateTask), taskHandler.DraftTasks)
			tasks.GET("/:id", can(policy.ActionReadTask), taskHandler.GetTask)
			tasks.PUT("/:id", can(policy.ActionUpdateTask), taskHandler.UpdateTask)
			tasks.PATCH("/:id", can(policy.ActionUpdateTask), taskHandler.UpdateTask)
			tasks.DELETE("/:id", can(policy.ActionDeleteTask), taskHandler.DeleteTask)
		}

		protected.POST("/comments", can(policy.ActionCreateComment), commentHandler.CreateComment)

		ratings := protected.Group("/ratings")
		{
			ratings.GET("", ratingHandler.ListRatings)
			ratings.POST("", can(policy.ActionSubmitRating), ratingHandler.SubmitRating)
		}

		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", can(policy.ActionCreateUser), userHandler.CreateUser)
			users.PUT("/:id", can(policy.ActionUpdateUser), userHandler.UpdateUser)
			users.DELETE("/:id", can(policy.ActionDeleteUser), userHandler.DeleteUser)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		messages := protected.Group("/messages")
		{
			messages.GET("", messageHandler.ListMessages)
			messages.POST("", messageHandler.SendMessage)
			messages.PUT("", messageHandler.MarkRead)
		}

		activity := protected.Group("/activity")
		{
			activity.GET("", activityHandler.ListActivities)
			activity.POST("", activityHandler.RecordActivity)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/summary", reportHandler.Summary)
			reports.GET("/export", can(policy.ActionExportReport), reportHandler.Export)
		}

		if hub != nil {
			wsHandler := handlers.NewWebSocketHandler(hub)
			protected.GET("/ws", wsHandler.Connect)
		}
	}

	return r
}
