package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"libris/api/internal/config"
	"libris/api/internal/middleware"
	"libris/api/internal/models"
	"libris/api/internal/repository"
	"libris/api/internal/service"
	"libris/api/internal/session"
	"libris/api/internal/storage"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	auth          *service.AuthService
	impersonation *service.ImpersonationService
	sessions      *service.SessionService
	cookies       *session.Cookies
	store         *storage.DocumentStore
	db            *pgxpool.Pool
	cache         *redis.Client
	users         *repository.UserRepository
	theses        *repository.ThesisRepository
	books         *repository.BookRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.DocumentStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	thesisRepo := repository.NewThesisRepository(db)
	bookRepo := repository.NewBookRepository(db)

	cookies := session.NewCookies(
		cfg.Security.SessionCookie,
		cfg.Security.ImpersonationCookie,
		cfg.Production(),
	)
	sessions := service.NewSessionService(sessionRepo, cfg.Security.SessionTTL, log)
	throttle := service.NewLoginThrottle(cache, cfg.Security.LoginMaxAttempts, cfg.Security.LoginWindow)
	auth := service.NewAuthService(userRepo, sessions, cookies, throttle, cfg.Security.LoginMinDelay, log)
	impersonation := service.NewImpersonationService(userRepo, auth, sessions, cookies, log)

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		auth:          auth,
		impersonation: impersonation,
		sessions:      sessions,
		cookies:       cookies,
		store:         store,
		db:            db,
		cache:         cache,
		users:         userRepo,
		theses:        thesisRepo,
		books:         bookRepo,
	}
}

// Sessions exposes the session service for the housekeeping scheduler.
func (h HandlerSet) Sessions() *service.SessionService {
	return h.sessions
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.POST("/impersonate", h.Impersonate)
	auth.POST("/exit-impersonation", h.ExitImpersonation)
	auth.GET("/impersonation-status", h.ImpersonationStatus)
	auth.GET("/me", middleware.RequireAuth(h.auth), h.Me)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRoles(h.auth, models.UserRoleAdmin, models.UserRoleSuperAdmin))
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PATCH("/users/:id/status",
		middleware.RequireRoles(h.auth, models.UserRoleSuperAdmin), h.UpdateUserStatus)
	admin.DELETE("/users/:id",
		middleware.RequireRoles(h.auth, models.UserRoleSuperAdmin), h.DeleteUser)

	theses := v1.Group("/theses")
	theses.POST("",
		middleware.RequireRoles(h.auth, models.UserRoleStudent), h.SubmitThesis)
	theses.GET("/mine",
		middleware.RequireRoles(h.auth, models.UserRoleStudent), h.MyTheses)
	theses.GET("",
		middleware.RequireRoles(h.auth, models.UserRoleStaff, models.UserRoleAdmin, models.UserRoleSuperAdmin), h.ListTheses)
	theses.PATCH("/:id/status",
		middleware.RequireRoles(h.auth, models.UserRoleStaff, models.UserRoleAdmin, models.UserRoleSuperAdmin), h.ReviewThesis)
	theses.GET("/:id/download-link", middleware.RequireAuth(h.auth), h.ThesisDownloadLink)

	// Document fetches authenticate with a short-lived signed token in the
	// URL, not the session cookie.
	v1.GET("/documents/:thesisId", h.FetchDocument)

	books := v1.Group("/books")
	books.GET("", middleware.RequireAuth(h.auth), h.ListBooks)
	books.POST("",
		middleware.RequireRoles(h.auth, models.UserRoleStaff, models.UserRoleAdmin, models.UserRoleSuperAdmin), h.CreateBook)
	books.PUT("/:id",
		middleware.RequireRoles(h.auth, models.UserRoleStaff, models.UserRoleAdmin, models.UserRoleSuperAdmin), h.UpdateBook)
	books.DELETE("/:id",
		middleware.RequireRoles(h.auth, models.UserRoleStaff, models.UserRoleAdmin, models.UserRoleSuperAdmin), h.DeleteBook)
}

// respondError maps the service error taxonomy onto status codes. Client
// bodies stay generic; detail goes to the log only.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrOriginalSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Session expired"})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	case errors.Is(err, service.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many attempts, try again later"})
	case errors.Is(err, service.ErrSelfImpersonation),
		errors.Is(err, service.ErrAlreadyImpersonating),
		errors.Is(err, service.ErrNotImpersonating),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrThesisNotFound),
		errors.Is(err, repository.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	default:
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
	}
}
