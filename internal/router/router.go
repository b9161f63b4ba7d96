package router

import (
	"github.com/gin-gonic/gin"
	"github.com/oboteam/guarantor-backend/config"
	"github.com/oboteam/guarantor-backend/internal/app/controller"
	"github.com/oboteam/guarantor-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	userController     *controller.UserController
	passwordController *controller.PasswordController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	passwordController *controller.PasswordController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		userController:     userController,
		passwordController: passwordController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Guarantor API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/login", r.authController.Login)

		users := v1.Group("/users", r.authMiddleware.Authenticate())
		{
			// /users/me must be registered before /users/:id
			users.GET("/me", r.userController.GetMe)

			users.GET("",
				r.authMiddleware.RequireSuperuser(),
				r.userController.ListUsers,
			)
			users.GET("/:id",
				r.authMiddleware.RequireSuperuser(),
				r.userController.GetUser,
			)
			users.POST("",
				r.authMiddleware.RequireSuperuser(),
				r.userController.CreateUser,
			)
			users.PUT("/:id",
				r.authMiddleware.RequireSuperuser(),
				r.userController.UpdateUser,
			)
			users.DELETE("/:id",
				r.authMiddleware.RequireSuperuser(),
				r.userController.DeleteUser,
			)
		}

		v1.POST("/restore-password", r.passwordController.RestorePassword)
		v1.POST("/restore-password-check", r.passwordController.RestorePasswordCheck)
		v1.POST("/set-new-password",
			r.authMiddleware.Authenticate(),
			r.passwordController.SetNewPassword,
		)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Range")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
