// Package web exposes the JSON API over HTTP. Handlers translate
// requests into service calls and classified errors into status codes;
// they hold no business rules of their own.
package web

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harikeshranjan/TodoX/internal/auth"
	"github.com/harikeshranjan/TodoX/internal/core"
)

// cookieName is the session cookie carrying the signed token.
const cookieName = "token"

// AuthService is the slice of the authenticator used by handlers.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*core.User, error)
	Login(ctx context.Context, email, password string) (*core.User, string, error)
	Validate(token string) (core.Identity, error)
	Profile(ctx context.Context, id core.Identity) (*core.User, error)
}

// TaskService is the slice of the task service used by handlers.
type TaskService interface {
	Create(ctx context.Context, id core.Identity, in core.TaskInput) (*core.Task, error)
	ListAll(ctx context.Context, id core.Identity) ([]core.Task, error)
	ListByPriority(ctx context.Context, id core.Identity, priority string) ([]core.Task, error)
	ListByTag(ctx context.Context, id core.Identity, tag string) ([]core.Task, error)
	ListDistinctTags(ctx context.Context, id core.Identity) ([]string, error)
	ListToday(ctx context.Context, id core.Identity) ([]core.Task, error)
	ListOverdue(ctx context.Context, id core.Identity) ([]core.Task, error)
	ToggleCompletion(ctx context.Context, id core.Identity, taskID string, completed bool) (*core.Task, error)
	Update(ctx context.Context, id core.Identity, taskID string, in core.TaskInput, completed bool) (*core.Task, error)
	Delete(ctx context.Context, id core.Identity, taskID string) error
}

// Options configures cookie behavior.
type Options struct {
	// SecureCookies marks the session cookie Secure and SameSite=None
	// (the cross-origin browser client needs both together).
	SecureCookies bool
	// CookieTTL bounds the cookie lifetime; it should match the token
	// TTL so the cookie and the token expire together.
	CookieTTL time.Duration
}

// Server is the TodoX API server.
type Server struct {
	auth   AuthService
	tasks  TaskService
	opts   Options
	router *gin.Engine
}

// NewServer creates the API server and registers all routes.
func NewServer(authSvc AuthService, tasks TaskService, opts Options) *Server {
	router := gin.Default()

	s := &Server{
		auth:   authSvc,
		tasks:  tasks,
		opts:   opts,
		router: router,
	}

	users := router.Group("/auth")
	{
		users.POST("/register", s.handleRegister)
		users.POST("/login", s.handleLogin)
		users.GET("/logout", s.handleLogout)
		users.GET("/session", s.requireAuth, s.handleSession)
		users.GET("/profile", s.requireAuth, s.handleProfile)
	}

	tasksGroup := router.Group("/tasks", s.requireAuth)
	{
		tasksGroup.GET("", s.handleListTasks)
		tasksGroup.POST("", s.handleCreateTask)
		tasksGroup.PUT("/:id", s.handleUpdateTask)
		tasksGroup.DELETE("/:id", s.handleDeleteTask)
		tasksGroup.GET("/priority/:level", s.handleTasksByPriority)
		tasksGroup.GET("/tags", s.handleDistinctTags)
		tasksGroup.GET("/tags/:tag", s.handleTasksByTag)
		tasksGroup.GET("/today", s.handleTasksToday)
		tasksGroup.GET("/overdue", s.handleTasksOverdue)
	}

	return s
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

const identityKey = "identity"

// requireAuth validates the session credential (cookie or bearer
// header) and stores the resulting identity on the request context.
func (s *Server) requireAuth(c *gin.Context) {
	token := sessionToken(c)
	identity, err := s.auth.Validate(token)
	if err != nil {
		writeError(c, err)
		c.Abort()
		return
	}
	c.Set(identityKey, identity)
	c.Next()
}

// sessionToken extracts the token from the cookie, falling back to an
// Authorization bearer header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// identityFrom returns the identity placed by requireAuth.
func identityFrom(c *gin.Context) core.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(core.Identity); ok {
			return id
		}
	}
	return core.Identity{}
}

// setSessionCookie installs the httpOnly session cookie.
func (s *Server) setSessionCookie(c *gin.Context, token string) {
	if s.opts.SecureCookies {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	maxAge := int(s.opts.CookieTTL / time.Second)
	c.SetCookie(cookieName, token, maxAge, "/", "", s.opts.SecureCookies, true)
}

// clearSessionCookie instructs the client to discard the session
// cookie. The token itself stays valid until it expires; the server
// holds no session state to invalidate.
func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetCookie(cookieName, "", -1, "/", "", s.opts.SecureCookies, true)
}

// writeError renders a classified error as the JSON envelope.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Warning: internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   core.MessageOf(err),
	})
}

func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
