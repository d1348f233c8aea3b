// internal/models/task.go
package models

import (
	"errors"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every valid status in display order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

var ErrTaskNotFound = errors.New("task not found")

// Task represents the structure of a task in the system.
type Task struct {
	ID          string       `json:"id" bson:"_id"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description" bson:"description"`
	Status      TaskStatus   `json:"status" bson:"status"`
	Priority    TaskPriority `json:"priority" bson:"priority"`
	DueDate     *time.Time   `json:"dueDate" bson:"dueDate"`
	Owner       string       `json:"owner" bson:"owner"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// TaskSortField is a task attribute the list can be ordered by.
type TaskSortField string

const (
	SortByCreatedAt TaskSortField = "createdAt"
	SortByUpdatedAt TaskSortField = "updatedAt"
	SortByDueDate   TaskSortField = "dueDate"
	SortByTitle     TaskSortField = "title"
	SortByStatus    TaskSortField = "status"
	SortByPriority  TaskSortField = "priority"
)

var TaskSortFields = []TaskSortField{
	SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByTitle, SortByStatus, SortByPriority,
}

func (f TaskSortField) Valid() bool {
	for _, v := range TaskSortFields {
		if f == v {
			return true
		}
	}
	return false
}

// TaskQuery is a validated list request. Ownership is passed separately.
type TaskQuery struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	Search     string
	Page       int
	Limit      int
	SortBy     TaskSortField
	Descending bool
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// DefaultTaskQuery returns the query used when no parameters are given.
func DefaultTaskQuery() TaskQuery {
	return TaskQuery{
		Page:       DefaultPage,
		Limit:      DefaultLimit,
		SortBy:     SortByCreatedAt,
		Descending: true,
	}
}

// Skip is the number of matching tasks before the requested page.
func (q TaskQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

// NewPagination computes page metadata over the full filtered count.
func NewPagination(q TaskQuery, total int64) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return Pagination{Current: q.Page, Pages: pages, Total: total, Limit: q.Limit}
}

type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// GroupCount is one row of a group-by count.
type GroupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// TaskStats is the per-owner overview. Zero buckets are omitted.
type TaskStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
}
