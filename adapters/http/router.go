package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/devprofiles/pkg/auth"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

func NewRouter(profileHandler *ProfileHandler, jwtSvc *auth.JWTService, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), ErrorMiddleware(log))

	authMiddleware := AuthMiddleware(jwtSvc)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		profiles := api.Group("/profile")
		{
			profiles.GET("", profileHandler.ListProfiles)
			profiles.GET("/user/:user_id", profileHandler.GetProfileByAccountID)

			private := profiles.Group("")
			private.Use(authMiddleware)
			{
				private.GET("/me", profileHandler.GetOwnProfile)
				private.POST("", profileHandler.UpsertProfile)
				private.DELETE("", profileHandler.DeleteAccount)
			}
		}
	}

	return router
}
