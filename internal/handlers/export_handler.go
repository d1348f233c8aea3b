package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/models"
	"taskmanager/internal/pdf"
	"taskmanager/internal/services"
	"taskmanager/internal/validation"
)

// maxExportTasks caps a PDF export; page and limit are ignored.
const maxExportTasks = 1000

type ExportHandler struct {
	tasks  services.TaskService
	users  services.UserService
	report *pdf.ReportGenerator
}

func NewExportHandler(tasks services.TaskService, users services.UserService, report *pdf.ReportGenerator) *ExportHandler {
	return &ExportHandler{tasks: tasks, users: users, report: report}
}

// @Summary      Export tasks as PDF
// @Description  Same filters and sorting as the list endpoint, up to 1000 tasks
// @Tags         Tasks
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        status     query     string  false  "pending | in-progress | completed"
// @Param        priority   query     string  false  "low | medium | high"
// @Param        search     query     string  false  "substring of title or description"
// @Param        sortBy     query     string  false  "sort field"
// @Param        sortOrder  query     string  false  "desc or asc"
// @Success      200  {file}    binary
// @Failure      400  {object}  ValidationResponse
// @Router       /tasks/export/pdf [get]
func (h *ExportHandler) TasksPDF(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	values := c.Request.URL.Query()
	values.Del("page")
	values.Del("limit")
	q, err := validation.ParseTaskQuery(values)
	if err != nil {
		respondError(c, "[export][pdf]", "exporting tasks", err)
		return
	}
	q.Page, q.Limit = 1, maxExportTasks

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Token is not valid"})
			return
		}
		respondError(c, "[export][pdf]", "exporting tasks", err)
		return
	}

	page, err := h.tasks.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, "[export][pdf]", "exporting tasks", err)
		return
	}

	var buf bytes.Buffer
	err = h.report.Render(&buf, pdf.TaskReport{
		Username:    user.Username,
		Tasks:       page.Tasks,
		Total:       page.Pagination.Total,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		respondError(c, "[export][pdf]", "exporting tasks", err)
		return
	}

	log.Printf("[export][pdf][ok] userID=%s tasks=%d bytes=%d", userID, len(page.Tasks), buf.Len())
	c.Header("Content-Disposition", `attachment; filename="tasks.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
