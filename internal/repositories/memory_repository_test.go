package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
)

// newTestStore returns a store whose clock advances one second per call.
func newTestStore() *MemoryStore {
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func seed(t *testing.T, repo TaskRepository, owner string, tasks ...models.Task) []models.Task {
	t.Helper()
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		task.Owner = owner
		require.NoError(t, repo.Create(context.Background(), &task))
		out = append(out, task)
	}
	return out
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestMemoryTasks_OwnershipScope(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Tasks()
	mine := seed(t, repo, "alice", models.Task{Title: "a", Status: models.StatusPending, Priority: models.PriorityLow})
	seed(t, repo, "bob", models.Task{Title: "b", Status: models.StatusPending, Priority: models.PriorityLow})

	_, err := repo.FindByID(ctx, "bob", mine[0].ID)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	foreign := mine[0]
	foreign.Owner = "bob"
	foreign.Title = "hijacked"
	assert.ErrorIs(t, repo.Update(ctx, &foreign), models.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "bob", mine[0].ID), models.ErrTaskNotFound)

	got, err := repo.FindByID(ctx, "alice", mine[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)

	list, total, err := repo.List(ctx, "alice", models.DefaultTaskQuery())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{"a"}, titles(list))
}

func TestMemoryTasks_FiltersAndSearch(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Tasks()
	seed(t, repo, "u",
		models.Task{Title: "Write REPORT", Status: models.StatusPending, Priority: models.PriorityHigh},
		models.Task{Title: "Groceries", Description: "for the quarterly report party", Status: models.StatusCompleted, Priority: models.PriorityHigh},
		models.Task{Title: "Gym", Status: models.StatusPending, Priority: models.PriorityLow},
	)

	q := models.DefaultTaskQuery()
	q.Search = "report"
	list, total, err := repo.List(ctx, "u", q)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.ElementsMatch(t, []string{"Write REPORT", "Groceries"}, titles(list))

	q.Status = ptr(models.StatusPending)
	list, _, err = repo.List(ctx, "u", q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Write REPORT"}, titles(list))

	q = models.DefaultTaskQuery()
	q.Priority = ptr(models.PriorityLow)
	list, _, err = repo.List(ctx, "u", q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gym"}, titles(list))
}

func TestMemoryTasks_PaginationIsStableAndComplete(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Tasks()
	for i := 0; i < 23; i++ {
		seed(t, repo, "u", models.Task{Title: fmt.Sprintf("t%02d", i), Status: models.StatusPending, Priority: models.PriorityMedium})
	}

	q := models.DefaultTaskQuery()
	q.Limit = 10
	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		q.Page = page
		list, total, err := repo.List(ctx, "u", q)
		require.NoError(t, err)
		assert.EqualValues(t, 23, total)
		for _, task := range list {
			assert.False(t, seen[task.ID], "task %s on two pages", task.ID)
			seen[task.ID] = true
		}
		if page < 3 {
			assert.Len(t, list, 10)
		} else {
			assert.Len(t, list, 3)
		}
	}
	assert.Len(t, seen, 23)

	q.Page = 9
	list, total, err := repo.List(ctx, "u", q)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.EqualValues(t, 23, total)
}

func TestMemoryTasks_Sorting(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Tasks()
	d1 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seed(t, repo, "u",
		models.Task{Title: "b", DueDate: &d2, Status: models.StatusPending, Priority: models.PriorityLow},
		models.Task{Title: "c", Status: models.StatusPending, Priority: models.PriorityLow},
		models.Task{Title: "a", DueDate: &d1, Status: models.StatusPending, Priority: models.PriorityLow},
	)

	q := models.DefaultTaskQuery()
	list, _, err := repo.List(ctx, "u", q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, titles(list), "newest first by default")

	q.SortBy, q.Descending = models.SortByTitle, false
	list, _, _ = repo.List(ctx, "u", q)
	assert.Equal(t, []string{"a", "b", "c"}, titles(list))

	q.SortBy = models.SortByDueDate
	list, _, _ = repo.List(ctx, "u", q)
	assert.Equal(t, []string{"c", "a", "b"}, titles(list), "missing due date sorts first ascending")

	q.Descending = true
	list, _, _ = repo.List(ctx, "u", q)
	assert.Equal(t, []string{"b", "a", "c"}, titles(list))
}

func TestMemoryTasks_UpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Tasks()
	created := seed(t, repo, "u", models.Task{Title: "x", Status: models.StatusPending, Priority: models.PriorityLow})[0]

	next := created
	next.Title = "y"
	next.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, &next))

	assert.Equal(t, created.ID, next.ID)
	assert.Equal(t, created.CreatedAt, next.CreatedAt)
	assert.True(t, next.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, "y", next.Title)
}

func TestMemoryTasks_DeleteThenMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Tasks()
	created := seed(t, repo, "u", models.Task{Title: "x", Status: models.StatusPending, Priority: models.PriorityLow})[0]

	require.NoError(t, repo.Delete(ctx, "u", created.ID))
	_, err := repo.FindByID(ctx, "u", created.ID)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "u", created.ID), models.ErrTaskNotFound)
}

func TestMemoryTasks_Counts(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Tasks()
	seed(t, repo, "u",
		models.Task{Title: "1", Status: models.StatusPending, Priority: models.PriorityHigh},
		models.Task{Title: "2", Status: models.StatusPending, Priority: models.PriorityLow},
		models.Task{Title: "3", Status: models.StatusCompleted, Priority: models.PriorityHigh},
	)
	seed(t, repo, "other", models.Task{Title: "4", Status: models.StatusInProgress, Priority: models.PriorityHigh})

	n, err := repo.Count(ctx, "u")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	byStatus, err := repo.CountByStatus(ctx, "u")
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.GroupCount{{Key: "pending", Count: 2}, {Key: "completed", Count: 1}}, byStatus)

	byPriority, err := repo.CountByPriority(ctx, "u")
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.GroupCount{{Key: "high", Count: 2}, {Key: "low", Count: 1}}, byPriority)
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	users := newTestStore().Users()

	u := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	dup := &models.User{Username: "alice2", Email: "alice@example.com"}
	assert.ErrorIs(t, users.Create(ctx, dup), models.ErrEmailTaken)

	got, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
