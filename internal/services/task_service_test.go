package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
	"taskmanager/internal/validation"
)

type recordedEvent struct {
	event TaskEvent
	id    string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (n *recordingNotifier) NotifyTask(_ context.Context, event TaskEvent, t *models.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{event, t.ID})
	return n.err
}

func newTaskService(t *testing.T) (TaskService, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	return NewTaskService(repositories.NewMemoryStore().Tasks(), n), n
}

func TestTaskService_CreateAppliesDefaults(t *testing.T) {
	svc, n := newTaskService(t)

	task, err := svc.Create(context.Background(), "u1", models.TaskInput{Title: "Write docs"})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "u1", task.Owner)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Equal(t, []recordedEvent{{EventTaskCreated, task.ID}}, n.events)
}

func TestTaskService_CreateInvalidStoresNothing(t *testing.T) {
	svc, n := newTaskService(t)

	_, err := svc.Create(context.Background(), "u1", models.TaskInput{Title: ""})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)

	page, err := svc.List(context.Background(), "u1", models.DefaultTaskQuery())
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
	assert.Empty(t, n.events)
}

func TestTaskService_ListPagination(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := svc.Create(ctx, "u1", models.TaskInput{Title: "t"})
		require.NoError(t, err)
	}

	q := models.DefaultTaskQuery()
	q.Page, q.Limit = 2, 5
	page, err := svc.List(ctx, "u1", q)
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 5)
	assert.Equal(t, models.Pagination{Current: 2, Pages: 3, Total: 12, Limit: 5}, page.Pagination)

	page, err = svc.List(ctx, "nobody", q)
	require.NoError(t, err)
	assert.NotNil(t, page.Tasks)
	assert.Equal(t, models.Pagination{Current: 2, Pages: 0, Total: 0, Limit: 5}, page.Pagination)
}

func TestTaskService_Update(t *testing.T) {
	svc, n := newTaskService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "u1", models.TaskInput{Title: "a", DueDate: models.Some("2030-01-01")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "u1", created.ID, models.TaskPatch{
		Status:  models.Some("completed"),
		DueDate: models.Null(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "a", updated.Title)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	assert.Equal(t, EventTaskUpdated, n.events[len(n.events)-1].event)

	got, err := svc.GetByID(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestTaskService_UpdateRejectedLeavesTaskUnchanged(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "u1", models.TaskInput{Title: "a"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u1", created.ID, models.TaskPatch{Title: models.Some("b"), Priority: models.Some("urgent")})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)

	got, err := svc.GetByID(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
}

func TestTaskService_OtherOwnerSeesNotFound(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "u1", models.TaskInput{Title: "a"})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, "u2", created.ID)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
	_, err = svc.Update(ctx, "u2", created.ID, models.TaskPatch{Title: models.Some("x")})
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", created.ID), models.ErrTaskNotFound)
}

func TestTaskService_Delete(t *testing.T) {
	svc, n := newTaskService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "u1", models.TaskInput{Title: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", created.ID))
	assert.Equal(t, recordedEvent{EventTaskDeleted, created.ID}, n.events[len(n.events)-1])
	assert.ErrorIs(t, svc.Delete(ctx, "u1", created.ID), models.ErrTaskNotFound)
}

func TestTaskService_NotifierFailureIsIgnored(t *testing.T) {
	svc, n := newTaskService(t)
	n.err = errors.New("telegram down")

	task, err := svc.Create(context.Background(), "u1", models.TaskInput{Title: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
}

func TestTaskService_Stats(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()
	for _, in := range []models.TaskInput{
		{Title: "1", Status: models.Some("completed"), Priority: models.Some("high")},
		{Title: "2", Status: models.Some("completed")},
		{Title: "3"},
	} {
		_, err := svc.Create(ctx, "u1", in)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.Equal(t, map[string]int64{"completed": 2, "pending": 1}, stats.ByStatus)
	assert.Equal(t, map[string]int64{"high": 1, "medium": 2}, stats.ByPriority)

	empty, err := svc.Stats(ctx, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 0, empty.Total)
	assert.Empty(t, empty.ByStatus)
	assert.NotNil(t, empty.ByStatus)
}

func TestFoldCounts(t *testing.T) {
	got := foldCounts([]models.GroupCount{{Key: "a", Count: 2}, {Key: "b", Count: 0}, {Key: "a", Count: 1}})
	assert.Equal(t, map[string]int64{"a": 3}, got)
}

type failingCounts struct {
	repositories.TaskRepository
	err error
}

func (f failingCounts) CountByPriority(context.Context, string) ([]models.GroupCount, error) {
	return nil, f.err
}

func TestTaskService_StatsStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewTaskService(failingCounts{repositories.NewMemoryStore().Tasks(), boom}, nil)

	_, err := svc.Stats(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}
