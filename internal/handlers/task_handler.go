package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/models"
	"taskmanager/internal/services"
	"taskmanager/internal/validation"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// @Summary      List tasks
// @Description  Owner's tasks, filtered, sorted and paginated
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "pending | in-progress | completed"
// @Param        priority   query     string  false  "low | medium | high"
// @Param        search     query     string  false  "case-insensitive substring of title or description"
// @Param        page       query     int     false  "page, from 1"  default(1)
// @Param        limit      query     int     false  "page size, 1..100"  default(10)
// @Param        sortBy     query     string  false  "createdAt | updatedAt | dueDate | title | status | priority"
// @Param        sortOrder  query     string  false  "desc sorts descending, anything else ascending"
// @Success      200  {object}  models.TaskPage
// @Failure      400  {object}  ValidationResponse
// @Failure      500  {object}  MessageResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	log.Printf("[task][list] call by userID=%s q=%v", userID, c.Request.URL.RawQuery)

	q, err := validation.ParseTaskQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, "[task][list]", "fetching tasks", err)
		return
	}

	page, err := h.service.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, "[task][list]", "fetching tasks", err)
		return
	}
	log.Printf("[task][list][ok] count=%d total=%d", len(page.Tasks), page.Pagination.Total)
	c.JSON(http.StatusOK, page)
}

// @Summary      Get task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  MessageResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	task, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, "[task][getByID]", "fetching task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Create task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      models.TaskInput  true  "title is required"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  ValidationResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "[task][create][bind]", "creating task", bindErrors(err))
		return
	}

	task, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "[task][create]", "creating task", err)
		return
	}
	log.Printf("[task][create][ok] id=%s owner=%s title=%q", task.ID, userID, task.Title)
	c.JSON(http.StatusCreated, task)
}

// @Summary      Update task
// @Description  Partial update; absent fields keep their values, dueDate null or "" clears it
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Task ID"
// @Param        task  body      models.TaskPatch  true  "fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  ValidationResponse
// @Failure      404   {object}  MessageResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req models.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "[task][update][bind]", "updating task", bindErrors(err))
		return
	}

	task, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, "[task][update]", "updating task", err)
		return
	}
	log.Printf("[task][update][ok] id=%s", id)
	c.JSON(http.StatusOK, task)
}

// @Summary      Delete task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, "[task][delete]", "deleting task", err)
		return
	}
	log.Printf("[task][delete][ok] id=%s", id)
	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// @Summary      Task statistics
// @Description  Total plus counts by status and priority; empty buckets are omitted
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.TaskStats
// @Failure      500  {object}  MessageResponse
// @Router       /tasks/stats/overview [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "[task][stats]", "fetching statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
