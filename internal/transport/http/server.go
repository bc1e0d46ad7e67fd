package http

import (
	"github.com/gin-gonic/gin"

	appsvc "askpa/internal/app"
	"askpa/internal/bootstrap"
	"askpa/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.GET("/healthz", healthHandler.Check)

	authService := appsvc.NewAuthService(app.Registry)
	assistantService := appsvc.NewAssistantService(
		app.Registry,
		app.LLM,
		app.Index,
		app.LLM,
		app.Config.RAG.ChunkSize,
		app.Config.RAG.ChunkOverlap,
		app.Config.RAG.TopK,
	)
	accountHandler := handler.NewAccountHandler(authService, assistantService)
	assistantHandler := handler.NewAssistantHandler(assistantService)

	router.POST("/signup", accountHandler.Signup)
	router.POST("/login", accountHandler.Login)
	router.POST("/append", assistantHandler.Append)
	router.POST("/chat", assistantHandler.Chat)

	return router
}
