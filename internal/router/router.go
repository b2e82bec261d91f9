package router

import (
	"net/http"
	"strings"
	"threadline/internal/config"
	"threadline/internal/content"
	"threadline/internal/handlers"
	"threadline/internal/middleware"
	"threadline/internal/services"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Handlers bundles everything RegisterRoutes wires up.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Channel *handlers.ChannelHandler
	Message *handlers.MessageHandler
	Reply   *handlers.ReplyHandler
	Rating  *handlers.RatingHandler
	Search  *handlers.SearchHandler
	Image   *handlers.ImageHandler
	Render  *handlers.RenderHandler
}

// New builds the services, the middleware chain and the route table.
func New(cfg *config.Config, conn *gorm.DB, log *zap.Logger) (*gin.Engine, error) {
	renderer, err := content.NewRenderer(cfg.RenderCacheSize)
	if err != nil {
		return nil, err
	}

	ratings := services.NewRatingService(conn, log)
	cascade := services.NewCascadeService(conn, log)
	forum := services.NewForumService(conn, log, ratings, cascade)
	users := services.NewUserService(conn, log, cascade)
	search := services.NewSearchService(conn, forum)

	var blobs services.BlobStore = &services.LocalBlobStore{Dir: cfg.UploadDir, BaseURL: cfg.UploadBaseURL}
	if cfg.ImgurClientID != "" {
		blobs = services.NewImgurBlobStore(cfg.ImgurClientID)
	}
	uploader := services.NewImageUploader(blobs, cfg.UploadMaxBytes, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   !cfg.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("threadline_session", store))
	r.Use(middleware.LoadUser(conn))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.ImgurClientID == "" && strings.HasPrefix(cfg.UploadBaseURL, "/") {
		r.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	api := r.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	api.Use(middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))
	RegisterRoutes(api, Handlers{
		Auth:    handlers.NewAuthHandler(users),
		User:    handlers.NewUserHandler(users, search),
		Channel: handlers.NewChannelHandler(forum, renderer),
		Message: handlers.NewMessageHandler(forum, renderer),
		Reply:   handlers.NewReplyHandler(forum, renderer),
		Rating:  handlers.NewRatingHandler(ratings),
		Search:  handlers.NewSearchHandler(search),
		Image:   handlers.NewImageHandler(uploader),
		Render:  handlers.NewRenderHandler(renderer),
	})
	return r, nil
}

func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/me", h.Auth.Me)

	api.GET("/users", h.User.List)
	api.GET("/users/top", h.User.Top)
	api.GET("/users/by-name/:username", h.User.ByName)
	api.GET("/users/:id", h.User.Get)
	api.GET("/users/:id/content", h.User.Content)

	api.GET("/channels", h.Channel.List)
	api.GET("/channels/:id", h.Channel.Get)
	api.GET("/channels/:id/messages", h.Channel.Messages)

	api.GET("/messages/:id", h.Message.Get)
	api.GET("/messages/:id/replies", h.Message.Replies)
	api.GET("/messages/:id/blocks", h.Message.Blocks)

	api.GET("/replies/:id", h.Reply.Get)
	api.GET("/replies/:id/replies", h.Reply.Children)
	api.GET("/replies/:id/blocks", h.Reply.Blocks)

	api.GET("/ratings", h.Rating.List)

	api.GET("/search", h.Search.Content)
	api.GET("/search/channels", h.Search.Channels)
	api.GET("/search/messages", h.Search.Messages)
	api.GET("/search/users", h.Search.Users)

	api.POST("/render", h.Render.Preview)

	// Protected routes
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.PATCH("/me", h.Auth.UpdateMe)
		authorized.DELETE("/users/:id", h.User.Delete)

		authorized.POST("/channels", h.Channel.Create)
		authorized.PATCH("/channels/:id", h.Channel.Update)
		authorized.DELETE("/channels/:id", h.Channel.Delete)
		authorized.POST("/channels/:id/messages", h.Channel.PostMessage)

		authorized.PATCH("/messages/:id", h.Message.Update)
		authorized.DELETE("/messages/:id", h.Message.Delete)

		authorized.POST("/replies", h.Reply.Create)
		authorized.PATCH("/replies/:id", h.Reply.Update)
		authorized.DELETE("/replies/:id", h.Reply.Delete)

		authorized.PUT("/ratings", h.Rating.Rate)
		authorized.DELETE("/ratings", h.Rating.Unrate)

		authorized.POST("/upload", h.Image.Upload)
	}
}
