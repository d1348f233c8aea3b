package repositories

import (
	"context"

	"taskmanager/internal/models"
)

// TaskRepository is owner-scoped task persistence. Every read and write
// matches on owner as well as id; a task owned by someone else is
// reported as models.ErrTaskNotFound, exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, ownerID, id string) (*models.Task, error)
	List(ctx context.Context, ownerID string, q models.TaskQuery) ([]models.Task, int64, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, ownerID, id string) error

	// aggregation
	Count(ctx context.Context, ownerID string) (int64, error)
	CountByStatus(ctx context.Context, ownerID string) ([]models.GroupCount, error)
	CountByPriority(ctx context.Context, ownerID string) ([]models.GroupCount, error)
}

// UserRepository stores accounts. Emails are unique and stored normalized.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
