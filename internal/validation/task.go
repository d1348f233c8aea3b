package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskmanager/internal/models"
)

var errInvalidDate = errors.New("invalid date format")

// enum rules shared by bodies and list queries; keep in step with models
const (
	statusRule   = "oneof=pending in-progress completed"
	priorityRule = "oneof=low medium high"
	sortByRule   = "oneof=createdAt updatedAt dueDate title status priority"
)

// taskRules holds what every stored task satisfies. Lengths count runes.
type taskRules struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	Status      string `validate:"oneof=pending in-progress completed"`
	Priority    string `validate:"oneof=low medium high"`
}

var taskMessages = map[string]string{
	"title.required":  "Title is required",
	"title.max":       "Title cannot exceed 100 characters",
	"description.max": "Description cannot exceed 500 characters",
	"status.oneof":    "Invalid status",
	"priority.oneof":  "Invalid priority",
}

// an update may not blank out the title
var patchMessages = map[string]string{
	"title.required": "Title cannot be empty",
}

// ParseDueDate accepts a calendar date (YYYY-MM-DD, midnight UTC) or an
// RFC 3339 timestamp. An empty string means "no due date".
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, errInvalidDate
}

// NewTask validates a create body and returns the task to persist, with
// trimmed text and defaults applied. ID and timestamps are left to the store.
func NewTask(owner string, in models.TaskInput) (*models.Task, error) {
	t := &models.Task{
		Owner:       owner,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
	}
	if in.Status.Set {
		t.Status = models.TaskStatus(in.Status.Value)
	}
	if in.Priority.Set {
		t.Priority = models.TaskPriority(in.Priority.Value)
	}
	var dueErr error
	if in.DueDate.Set && !in.DueDate.Null {
		t.DueDate, dueErr = ParseDueDate(in.DueDate.Value)
	}

	errs := checkTask(t, taskMessages)
	if dueErr != nil {
		errs.Add("dueDate", "Invalid date format")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// ApplyPatch merges p onto a copy of current and re-validates the result
// against the create constraints. Owner, ID and timestamps are never
// touched here.
func ApplyPatch(current models.Task, p models.TaskPatch) (*models.Task, error) {
	next := current

	if p.Title.Set {
		next.Title = strings.TrimSpace(p.Title.Value)
	}
	if p.Description.Set {
		next.Description = strings.TrimSpace(p.Description.Value)
	}
	if p.Status.Set {
		next.Status = models.TaskStatus(p.Status.Value)
	}
	if p.Priority.Set {
		next.Priority = models.TaskPriority(p.Priority.Value)
	}
	var dueErr error
	if p.DueDate.Set {
		next.DueDate, dueErr = ParseDueDate(p.DueDate.Value)
	}

	errs := checkTask(&next, patchMessages, taskMessages)
	if dueErr != nil {
		errs.Add("dueDate", "Invalid date format")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &next, nil
}

func checkTask(t *models.Task, messages ...map[string]string) Errors {
	err := validate.Struct(taskRules{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
	})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	return translate(verrs, messages...)
}
