package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harikeshranjan/TodoX/internal/auth"
	"github.com/harikeshranjan/TodoX/internal/core"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// taskRequest covers both task bodies: a full field set for create and
// replace, or just {completed} for a completion toggle. Pointer fields
// distinguish "omitted" from zero values.
type taskRequest struct {
	Title     *string    `json:"title"`
	DueDate   *time.Time `json:"dueDate"`
	Priority  *string    `json:"priority"`
	Tags      *[]string  `json:"tags"`
	Completed *bool      `json:"completed"`
}

func (r taskRequest) toInput() core.TaskInput {
	var in core.TaskInput
	if r.Title != nil {
		in.Title = *r.Title
	}
	if r.DueDate != nil {
		in.DueDate = *r.DueDate
	}
	if r.Priority != nil {
		in.Priority = *r.Priority
	}
	if r.Tags != nil {
		in.Tags = *r.Tags
	}
	return in
}

// toggleOnly reports whether the body carries only a completion flag.
func (r taskRequest) toggleOnly() bool {
	return r.Completed != nil && r.Title == nil && r.DueDate == nil && r.Priority == nil && r.Tags == nil
}

// Auth handlers

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationErr("invalid request body"))
		return
	}

	user, err := s.auth.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationErr("invalid request body"))
		return
	}

	user, token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "logged out",
	})
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    identityFrom(c),
	})
}

func (s *Server) handleProfile(c *gin.Context) {
	user, err := s.auth.Profile(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// Task handlers

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListAll(c.Request.Context(), identityFrom(c))
	s.respondTasks(c, tasks, err)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationErr("invalid request body"))
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), identityFrom(c), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	taskID := c.Param("id")

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationErr("invalid request body"))
		return
	}

	var task *core.Task
	var err error
	if req.toggleOnly() {
		task, err = s.tasks.ToggleCompletion(c.Request.Context(), identityFrom(c), taskID, *req.Completed)
	} else if req.Completed == nil {
		writeError(c, core.ValidationErr("completed field is required"))
		return
	} else {
		task, err = s.tasks.Update(c.Request.Context(), identityFrom(c), taskID, req.toInput(), *req.Completed)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleTasksByPriority(c *gin.Context) {
	tasks, err := s.tasks.ListByPriority(c.Request.Context(), identityFrom(c), c.Param("level"))
	s.respondTasks(c, tasks, err)
}

func (s *Server) handleTasksByTag(c *gin.Context) {
	tasks, err := s.tasks.ListByTag(c.Request.Context(), identityFrom(c), c.Param("tag"))
	s.respondTasks(c, tasks, err)
}

func (s *Server) handleDistinctTags(c *gin.Context) {
	tags, err := s.tasks.ListDistinctTags(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tags":    tags,
		"count":   len(tags),
	})
}

func (s *Server) handleTasksToday(c *gin.Context) {
	tasks, err := s.tasks.ListToday(c.Request.Context(), identityFrom(c))
	s.respondTasks(c, tasks, err)
}

func (s *Server) handleTasksOverdue(c *gin.Context) {
	tasks, err := s.tasks.ListOverdue(c.Request.Context(), identityFrom(c))
	s.respondTasks(c, tasks, err)
}

func (s *Server) respondTasks(c *gin.Context, tasks []core.Task, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}
