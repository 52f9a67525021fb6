package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskapi/internal/export"
	"taskapi/internal/models"
	"taskapi/internal/query"
	"taskapi/internal/stats"
)

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// handleListTasks returns the caller's tasks narrowed by the optional
// search/status/date/ordering parameters.
func (s *Server) handleListTasks(c *gin.Context) {
	ownerID, _ := currentUser(c)
	filter := query.ParseTaskFilter(c.Request.URL.Query())

	tasks, err := s.store.QueryTasks(c.Request.Context(), ownerID, filter)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleCreateTask inserts a new task owned by the caller.
func (s *Server) handleCreateTask(c *gin.Context) {
	ownerID, _ := currentUser(c)

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	fields := map[string]string{}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fields["title"] = "title is required"
	}
	if msg, ok := validateStatus(req.Status); !ok {
		fields["status"] = msg
	}
	if len(fields) > 0 {
		respondValidation(c, fields)
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), ownerID, models.CreateTaskInput{
		Title:       *req.Title,
		Description: getString(req.Description),
		Status:      getString(req.Status),
	})
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleUpdateTask applies a partial update to an owned task. Any subset of
// title, description and status is accepted.
func (s *Server) handleUpdateTask(c *gin.Context) {
	ownerID, _ := currentUser(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	fields := map[string]string{}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		fields["title"] = "title must not be empty"
	}
	if msg, ok := validateStatus(req.Status); !ok {
		fields["status"] = msg
	}
	if len(fields) > 0 {
		respondValidation(c, fields)
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), ownerID, id, models.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes an owned task permanently.
func (s *Server) handleDeleteTask(c *gin.Context) {
	ownerID, _ := currentUser(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), ownerID, id); err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleSearchTasks is the dedicated search endpoint. It accepts q as an
// alias for search and echoes the applied filters alongside the results.
func (s *Server) handleSearchTasks(c *gin.Context) {
	ownerID, _ := currentUser(c)

	values := c.Request.URL.Query()
	if q := values.Get("q"); q != "" && values.Get("search") == "" {
		values.Set("search", q)
	}
	filter := query.ParseTaskFilter(values)

	tasks, err := s.store.QueryTasks(c.Request.Context(), ownerID, filter)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	// The date bounds echo the raw query values even when malformed and
	// dropped from the filter; the envelope reports what was requested,
	// not what survived normalization.
	respondSuccess(c, http.StatusOK, gin.H{
		"results": tasks,
		"count":   len(tasks),
		"filters_applied": gin.H{
			"search":    filter.Search,
			"status":    filter.Status,
			"date_from": values.Get("date_from"),
			"date_to":   values.Get("date_to"),
			"ordering":  filter.Ordering,
		},
	})
}

// handleTaskStatistics aggregates the caller's tasks, honoring any active
// filters.
func (s *Server) handleTaskStatistics(c *gin.Context) {
	ownerID, _ := currentUser(c)
	filter := query.ParseTaskFilter(c.Request.URL.Query())

	tasks, err := s.store.QueryTasks(c.Request.Context(), ownerID, filter)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats.Compute(tasks, time.Now()))
}

// handleExportTasks streams the filtered task set as a CSV download.
func (s *Server) handleExportTasks(c *gin.Context) {
	ownerID, username := currentUser(c)
	filter := query.ParseTaskFilter(c.Request.URL.Query())

	tasks, err := s.store.QueryTasks(c.Request.Context(), ownerID, filter)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(username, now)+`"`)
	c.Status(http.StatusOK)

	if err := export.WriteTasks(c.Writer, tasks, username, now); err != nil {
		s.logger.Error("csv export failed", "error", err.Error())
	}
}

// validateStatus accepts an absent or empty status; anything else must be a
// known value.
func validateStatus(status *string) (string, bool) {
	if status == nil || *status == "" {
		return "", true
	}
	if _, valid := models.ValidTaskStatuses[*status]; !valid {
		return "status must be one of pending, completed, cancelled", false
	}
	return "", true
}

func getString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
