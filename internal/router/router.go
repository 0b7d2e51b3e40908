package router

import (
	"net/http"
	"time"

	"sikseb/internal/catalog"
	"sikseb/internal/handlers"
	"sikseb/internal/middleware"
	"sikseb/internal/mockapi"
	"sikseb/pkg/config"
	"sikseb/pkg/jwt"
	"sikseb/pkg/logger"
	"sikseb/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps is what the stub backend router is built from.
type Deps struct {
	Store  *mockapi.Store
	JWT    *jwt.JWTManager
	CORS   config.CORSConfig
	Logger logrus.FieldLogger
}

// SetupRouter builds the stub backend serving the role console's REST surface.
func SetupRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.GetLogger()
	}
	router := gin.New()

	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.ErrorHandler(deps.Logger))
	router.Use(middleware.SetupCORS(deps.CORS))

	registerRoutes(router, deps)
	return router
}

func registerRoutes(router *gin.Engine, deps Deps) {
	auth := middleware.NewAuthMiddleware(deps.Store, deps.JWT)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)

		authHandler := handlers.NewAuthHandler(deps.Store, deps.JWT)
		api.POST("/login", authHandler.Login)
		api.GET("/user", auth.RequireLogin(), authHandler.Me)

		roleHandler := handlers.NewRoleHandler(deps.Store)
		roles := api.Group("/roles", auth.CombineMiddleware(string(catalog.ManageRoles))...)
		{
			roles.GET("", roleHandler.List)
			roles.POST("", roleHandler.Create)
			roles.GET("/:id", roleHandler.GetByID)
			roles.PUT("/:id", roleHandler.Update)
			roles.DELETE("/:id", roleHandler.Delete)
			roles.PATCH("/:id/permissions", roleHandler.UpdatePermissions)
			roles.GET("/:id/users", roleHandler.Users)
		}

		userHandler := handlers.NewUserHandler(deps.Store)
		api.GET("/users", append(auth.CombineMiddleware(string(catalog.ManageUsers)), userHandler.List)...)

		permissionHandler := handlers.NewPermissionHandler()
		api.GET("/permissions", auth.RequireLogin(), permissionHandler.Groups)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, response.MessageEnvelope{Message: "ok " + time.Now().Format(time.RFC3339)})
}
