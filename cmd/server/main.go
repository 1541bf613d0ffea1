// Package main runs the crew scheduling HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crewsched/backend/config"
	"github.com/crewsched/backend/internal/auth"
	"github.com/crewsched/backend/internal/clients"
	"github.com/crewsched/backend/internal/members"
	"github.com/crewsched/backend/internal/messages"
	"github.com/crewsched/backend/internal/middleware"
	"github.com/crewsched/backend/internal/notify"
	"github.com/crewsched/backend/internal/projects"
	"github.com/crewsched/backend/internal/realtime"
	"github.com/crewsched/backend/internal/schedule"
	"github.com/crewsched/backend/internal/teams"
	"github.com/crewsched/backend/pkg/database"
	"github.com/crewsched/backend/pkg/queue"
	"github.com/crewsched/backend/pkg/redis"
	"github.com/crewsched/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	defer hub.Close()

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Clients and projects
	projectRepo := projects.NewRepository(pool)
	clientRepo := clients.NewRepository(pool)
	clientHandler := clients.NewHandler(clientRepo, projectRepo)

	// Teams and org members
	teamRepo := teams.NewRepository(pool)
	teamHandler := teams.NewHandler(teamRepo)
	memberRepo := members.NewRepository(pool)
	memberHandler := members.NewHandler(memberRepo)

	// Scheduling core
	eventRepo := schedule.NewEventRepository(pool)
	assignmentRepo := schedule.NewAssignmentRepository(pool)
	resolver := schedule.NewResolver(teamRepo, memberRepo)
	reconciler := schedule.NewReconciler(assignmentRepo)
	window := schedule.NewWindow(eventRepo, logger)
	notifyClient := notify.NewClient(cfg.Notify, logger)
	controller := schedule.NewController(eventRepo, reconciler, resolver, window, notifyClient, hub, logger)
	scheduleHandler := schedule.NewHandler(window, resolver, controller, assignmentRepo)

	projectHandler := projects.NewHandler(projectRepo, eventRepo)

	// Notification pipeline
	jobQueue := queue.NewQueue(rdb.Client, logger)
	msgRepo := messages.NewRepository(pool)
	msgHandler := messages.NewHandler(msgRepo)
	notifyHandler := notify.NewHandler(jwtService, eventRepo, projectRepo, clientRepo, jobQueue, logger)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// SMS function endpoint (authorizes from the forwarded bearer itself)
	notifyHandler.RegisterRoutes(&router.RouterGroup)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (admin only)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Clients
		api.GET("/clients", clientHandler.List)
		api.POST("/clients", clientHandler.Create)
		api.GET("/clients/:id", clientHandler.GetByID)
		api.PUT("/clients/:id", clientHandler.Update)
		api.DELETE("/clients/:id", clientHandler.Delete)
		api.GET("/clients/:id/projects", clientHandler.ListProjects)

		// Projects
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/:id", projectHandler.GetByID)
		api.PUT("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)
		api.GET("/projects/:id/events", projectHandler.ListEvents)

		// Teams and rosters
		api.GET("/teams", teamHandler.List)
		api.POST("/teams", middleware.RequireRole("admin"), teamHandler.Create)
		api.PUT("/teams/:id", middleware.RequireRole("admin"), teamHandler.Update)
		api.DELETE("/teams/:id", middleware.RequireRole("admin"), teamHandler.Delete)
		api.GET("/teams/:id/members", teamHandler.ListMembers)
		api.POST("/teams/:id/members", middleware.RequireRole("admin"), teamHandler.AddMembers)
		api.PUT("/teams/:id/members", middleware.RequireRole("admin"), teamHandler.ReplaceMembers)
		api.DELETE("/team-members/:memberId", middleware.RequireRole("admin"), teamHandler.RemoveMember)

		// Org members
		api.GET("/members", memberHandler.List)
		api.POST("/members", middleware.RequireRole("admin"), memberHandler.Create)
		api.PUT("/members/:id", middleware.RequireRole("admin"), memberHandler.Update)
		api.DELETE("/members/:id", middleware.RequireRole("admin"), memberHandler.Delete)

		// Schedule window
		api.GET("/schedule/window", scheduleHandler.GetWindow)
		api.PUT("/schedule/window/range", scheduleHandler.SetRange)
		api.PUT("/schedule/window/team", scheduleHandler.SetTeamFilter)
		api.GET("/schedule/crew", scheduleHandler.EligibleCrew)

		// Events
		api.POST("/events", scheduleHandler.Create)
		api.PUT("/events/:id", scheduleHandler.Update)
		api.DELETE("/events/:id", scheduleHandler.Delete)
		api.PATCH("/events/:id/reschedule", scheduleHandler.Reschedule)
		api.POST("/events/:id/confirm", scheduleHandler.Confirm)
		api.GET("/events/:id/assignments", scheduleHandler.ListAssignments)

		// Message log
		api.GET("/messages", msgHandler.List)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
