// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
	"taskmanager/internal/validation"
)

// TaskService defines the interface for task-related business logic.
// Every method is scoped to ownerID.
type TaskService interface {
	Create(ctx context.Context, ownerID string, in models.TaskInput) (*models.Task, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Task, error)
	List(ctx context.Context, ownerID string, q models.TaskQuery) (*models.TaskPage, error)
	Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	Stats(ctx context.Context, ownerID string) (*models.TaskStats, error)
}

type taskService struct {
	repo     repositories.TaskRepository
	notifier TaskNotifier
}

// NewTaskService creates a new instance of TaskService. notifier may be nil.
func NewTaskService(repo repositories.TaskRepository, notifier TaskNotifier) TaskService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &taskService{repo: repo, notifier: notifier}
}

func (s *taskService) Create(ctx context.Context, ownerID string, in models.TaskInput) (*models.Task, error) {
	task, err := validation.NewTask(ownerID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.notify(ctx, EventTaskCreated, task)
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

func (s *taskService) List(ctx context.Context, ownerID string, q models.TaskQuery) (*models.TaskPage, error) {
	tasks, total, err := s.repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &models.TaskPage{Tasks: tasks, Pagination: models.NewPagination(q, total)}, nil
}

func (s *taskService) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error) {
	current, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	// валидация на слитом результате, до записи
	next, err := validation.ApplyPatch(*current, patch)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, err
	}
	s.notify(ctx, EventTaskUpdated, next)
	return next, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, id string) error {
	current, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.notify(ctx, EventTaskDeleted, current)
	return nil
}

func (s *taskService) Stats(ctx context.Context, ownerID string) (*models.TaskStats, error) {
	var (
		total                int64
		byStatus, byPriority []models.GroupCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.repo.CountByStatus(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		byPriority, err = s.repo.CountByPriority(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &models.TaskStats{
		Total:      total,
		ByStatus:   foldCounts(byStatus),
		ByPriority: foldCounts(byPriority),
	}, nil
}

func foldCounts(rows []models.GroupCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.Count > 0 {
			out[r.Key] += r.Count
		}
	}
	return out
}

func (s *taskService) notify(ctx context.Context, event TaskEvent, t *models.Task) {
	if err := s.notifier.NotifyTask(ctx, event, t); err != nil {
		log.Printf("[task][notify][err] event=%s id=%s: %v", event, t.ID, err)
	}
}
