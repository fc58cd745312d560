package handler

import (
	"net/http"
	"time"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/metrics"
	"gamestore/backend/internal/service"
	"gamestore/backend/pkg/jwt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the router wires into its handlers.
type Dependencies struct {
	Users   *service.UserService
	Games   *service.GameService
	Library *service.LibraryService
	Reviews *service.ReviewService
	Tokens  *jwt.Codec
	Log     *zap.SugaredLogger

	// Metrics is optional. When nil no /metrics route is served.
	Metrics         *metrics.HTTP
	MetricsGatherer prometheus.Gatherer

	AllowedOrigins []string
}

// NewRouter builds the HTTP API.
func NewRouter(d Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(d.Log))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
	}
	router.Use(cors.New(corsConfig(d.AllowedOrigins)), ErrorHandler(d.Log))
	router.NoRoute(NotFound)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if d.Metrics != nil && d.MetricsGatherer != nil {
		router.GET("/metrics", metrics.Handler(d.MetricsGatherer))
	}

	users := NewUserHandler(d.Users)
	games := NewGameHandler(d.Games)
	library := NewLibraryHandler(d.Library)
	reviews := NewReviewHandler(d.Reviews)

	// Public routes
	router.POST("/users", users.Register)
	router.POST("/authentications", users.Login)
	router.GET("/games", games.List)
	router.GET("/games/:gameId", games.Get)
	router.GET("/games/:gameId/reviews", reviews.List)
	router.GET("/games/:gameId/reviews/:reviewId", reviews.Get)

	// Protected routes
	protected := router.Group("/")
	protected.Use(auth.SessionMiddleware(d.Tokens, d.Users))
	{
		protected.GET("/users", users.List)
		protected.GET("/users/:userId", users.Get)
		protected.PATCH("/users/:userId", users.Update)
		protected.PATCH("/users/:userId/password", users.ChangePassword)
		protected.DELETE("/users/:userId", users.Delete)
		protected.DELETE("/authentications", users.Logout)

		// Catalog writes are refused to non-admins before the body is read.
		protected.POST("/games", auth.AdminMiddleware(service.MsgUploadDenied), games.Upload)
		protected.PUT("/games/:gameId", auth.AdminMiddleware(service.MsgEditDenied), games.Edit)
		protected.DELETE("/games/:gameId", auth.AdminMiddleware(service.MsgDeleteDenied), games.Delete)

		protected.POST("/library", library.Buy)
		protected.GET("/library", library.List)

		protected.POST("/games/:gameId/reviews", reviews.Create)
		protected.PUT("/games/:gameId/reviews/:reviewId", reviews.Edit)
		protected.DELETE("/games/:gameId/reviews/:reviewId", reviews.Delete)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
