package router

import (
	"time"

	"github.com/anonto42/snapshare/backend/internal/auth"
	"github.com/anonto42/snapshare/backend/internal/handlers"
	"github.com/anonto42/snapshare/backend/internal/middleware"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"github.com/anonto42/snapshare/backend/internal/services"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Repositories groups the data access layer the routes are built on
type Repositories struct {
	Users    repositories.UserRepository
	Posts    repositories.PostRepository
	Likes    repositories.LikeRepository
	Comments repositories.CommentRepository
	Follows  repositories.FollowRepository
	Sessions repositories.SessionRepository
}

// NewMongoRepositories wires the MongoDB repositories plus the SQL session store
func NewMongoRepositories(db *mongo.Database, sessions repositories.SessionRepository) Repositories {
	return Repositories{
		Users:    repositories.NewMongoUserRepository(db),
		Posts:    repositories.NewMongoPostRepository(db),
		Likes:    repositories.NewMongoLikeRepository(db),
		Comments: repositories.NewMongoCommentRepository(db),
		Follows:  repositories.NewMongoFollowRepository(db),
		Sessions: sessions,
	}
}

// Options carries the non-repository dependencies of the routes
type Options struct {
	Tokens         *auth.TokenService
	Store          storage.ObjectStore
	Health         handlers.Pinger
	Redis          *redis.Client
	Logger         *zap.Logger
	SecureCookies  bool
	AuthRateLimit  int
	AuthRateWindow time.Duration
	// UploadDir is served under storage.URLPrefix when images are kept on local disk
	UploadDir string
}

// Services are the services built by SetupRoutes that background jobs need
type Services struct {
	Auth *services.AuthService
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, repos Repositories, opts Options) *Services {
	log := opts.Logger

	e.GET("/health", handlers.HealthCheck(opts.Health))
	if opts.UploadDir != "" {
		e.Static(storage.URLPrefix, opts.UploadDir)
	}

	// --- Services ---
	authService := services.NewAuthService(repos.Users, repos.Sessions, opts.Tokens, opts.Store, log)
	userService := services.NewUserService(repos.Users, opts.Store, log)
	postService := services.NewPostService(repos.Posts, repos.Users, opts.Store, log)
	commentService := services.NewCommentService(repos.Comments, repos.Posts, repos.Users)
	followService := services.NewFollowService(repos.Follows, repos.Users)
	cascade := services.NewCascadeDeleter(repos.Users, repos.Posts, repos.Likes, repos.Comments, repos.Follows, opts.Store, log)
	toggler := services.NewLikeToggler(repos.Users, repos.Posts, repos.Likes, log)

	// --- Unprotected routes for authentication ---
	var authLimit []echo.MiddlewareFunc
	if opts.Redis != nil {
		authLimit = append(authLimit, middleware.RateLimit(opts.Redis, "auth", opts.AuthRateLimit, opts.AuthRateWindow, log))
	}
	authHandler := handlers.NewAuthHandler(authService, opts.SecureCookies)
	authHandler.RegisterAuthRoutes(e.Group(""), authLimit...)
	log.Debug("auth routes configured", zap.Bool("rate_limited", len(authLimit) > 0))

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(opts.Tokens))

	handlers.NewUserHandler(userService, authService, cascade, opts.SecureCookies, log).RegisterUserRoutes(api.Group("/users"))
	handlers.NewPostHandler(postService, cascade).RegisterPostRoutes(api.Group("/posts"))
	handlers.NewLikeHandler(toggler).RegisterLikeRoutes(api.Group("/likes"))
	handlers.NewCommentHandler(commentService).RegisterCommentRoutes(api.Group("/comments"))
	handlers.NewFollowHandler(followService).RegisterFollowRoutes(api.Group("/follows"))

	log.Info("all routes configured", zap.Int("routes", len(e.Routes())))
	return &Services{Auth: authService}
}
