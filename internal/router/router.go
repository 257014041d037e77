package router

import (
	"time"

	"github.com/boardwalk-dev/boardwalk/internal/auth"
	"github.com/boardwalk-dev/boardwalk/internal/handlers"
	"github.com/boardwalk-dev/boardwalk/internal/middleware"
	"github.com/boardwalk-dev/boardwalk/internal/store"
	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Store          *store.Store
	Issuer         *auth.Issuer
	Hub            *handlers.Hub
	Logger         *zap.Logger
	AllowedOrigins []string
	BcryptCost     int
}

func NewRouter(deps Deps) *gin.Engine {
	handlers.RegisterValidation()

	r := gin.New()
	r.HandleMethodNotAllowed = false

	r.Use(
		middleware.LanguageMiddleware(),
		middleware.GinZapMiddleware(deps.Logger),
		gin.CustomRecovery(apierrors.Recovery(middleware.GetLang)),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "Accept-Language", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) {
		apierrors.Respond(c, middleware.GetLang(c), apierrors.CodeRouteNotFound, map[string]interface{}{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authHandler := handlers.NewAuthHandler(deps.Store.Users, deps.Issuer, deps.BcryptCost)
	boardHandler := handlers.NewBoardHandler(deps.Store.Boards, deps.Hub)
	listHandler := handlers.NewListHandler(deps.Store.Lists, deps.Hub)
	taskHandler := handlers.NewTaskHandler(deps.Store.Tasks, deps.Hub)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	requireAuth := middleware.AuthMiddleware(deps.Issuer, false)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.HealthCheck)
		api.GET("/ws/:boardId", middleware.AuthMiddleware(deps.Issuer, true), deps.Hub.WebSocket(deps.Store.Boards))

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", requireAuth, authHandler.Me)
		}

		boards := api.Group("/boards", requireAuth)
		{
			boards.POST("", boardHandler.CreateBoard)
			boards.GET("", boardHandler.ListBoards)
			boards.GET("/:id", boardHandler.GetBoard)
			boards.PUT("/:id", boardHandler.UpdateBoard)
			boards.DELETE("/:id", boardHandler.DeleteBoard)
		}

		lists := api.Group("/lists", requireAuth)
		{
			lists.POST("", listHandler.CreateList)
			lists.GET("/board/:boardId", listHandler.GetListsByBoard)
			lists.GET("/:id", listHandler.GetList)
			lists.PUT("/:id", listHandler.UpdateList)
			lists.PATCH("/:id/position", listHandler.MoveList)
			lists.DELETE("/:id", listHandler.DeleteList)
		}

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.GetTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/position", taskHandler.MoveTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	return r
}
