package repositories

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/models"
)

// MemoryStore keeps users and tasks in process. It backs the "memory"
// database driver for local runs and the service/handler tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[string]models.Task
	users  map[string]models.User
	resets map[string]models.PasswordReset // by id
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[string]models.Task),
		users:  make(map[string]models.User),
		resets: make(map[string]models.PasswordReset),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Tasks and Users expose the store through the repository interfaces.
func (s *MemoryStore) Tasks() TaskRepository { return memoryTasks{s} }
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

func (s *MemoryStore) PasswordResets() PasswordResetRepository { return memoryResets{s} }

type memoryTasks struct{ s *MemoryStore }

func (r memoryTasks) Create(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r memoryTasks) FindByID(_ context.Context, ownerID, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok || t.Owner != ownerID {
		return nil, models.ErrTaskNotFound
	}
	out := cloneTask(t)
	return &out, nil
}

func (r memoryTasks) List(_ context.Context, ownerID string, q models.TaskQuery) ([]models.Task, int64, error) {
	r.s.mu.RLock()
	matched := make([]models.Task, 0)
	for _, t := range r.s.tasks {
		if matchesTask(t, ownerID, q) {
			matched = append(matched, cloneTask(t))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b models.Task) int {
		c := compareTasks(a, b, q.SortBy)
		if q.Descending {
			return -c
		}
		return c
	})

	total := int64(len(matched))
	start := min(q.Skip(), len(matched))
	end := min(start+q.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r memoryTasks) Update(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tasks[task.ID]
	if !ok || cur.Owner != task.Owner {
		return models.ErrTaskNotFound
	}
	cur.Title = task.Title
	cur.Description = task.Description
	cur.Status = task.Status
	cur.Priority = task.Priority
	cur.DueDate = task.DueDate
	cur.UpdatedAt = r.s.now()
	r.s.tasks[cur.ID] = cloneTask(cur)
	*task = cloneTask(cur)
	return nil
}

func (r memoryTasks) Delete(_ context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.Owner != ownerID {
		return models.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r memoryTasks) Count(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, t := range r.s.tasks {
		if t.Owner == ownerID {
			n++
		}
	}
	return n, nil
}

func (r memoryTasks) CountByStatus(_ context.Context, ownerID string) ([]models.GroupCount, error) {
	return r.countBy(ownerID, func(t models.Task) string { return string(t.Status) }), nil
}

func (r memoryTasks) CountByPriority(_ context.Context, ownerID string) ([]models.GroupCount, error) {
	return r.countBy(ownerID, func(t models.Task) string { return string(t.Priority) }), nil
}

func (r memoryTasks) countBy(ownerID string, key func(models.Task) string) []models.GroupCount {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[string]int64{}
	for _, t := range r.s.tasks {
		if t.Owner == ownerID {
			counts[key(t)]++
		}
	}
	out := make([]models.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.GroupCount{Key: k, Count: n})
	}
	return out
}

func matchesTask(t models.Task, ownerID string, q models.TaskQuery) bool {
	if t.Owner != ownerID {
		return false
	}
	if q.Status != nil && t.Status != *q.Status {
		return false
	}
	if q.Priority != nil && t.Priority != *q.Priority {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// compareTasks orders ascending by field, then by id. A missing due date
// sorts before any date, as in the document store.
func compareTasks(a, b models.Task, field models.TaskSortField) int {
	var c int
	switch field {
	case models.SortByUpdatedAt:
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	case models.SortByDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
		case a.DueDate == nil:
			c = -1
		case b.DueDate == nil:
			c = 1
		default:
			c = a.DueDate.Compare(*b.DueDate)
		}
	case models.SortByTitle:
		c = cmp.Compare(a.Title, b.Title)
	case models.SortByStatus:
		c = cmp.Compare(a.Status, b.Status)
	case models.SortByPriority:
		c = cmp.Compare(a.Priority, b.Priority)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func cloneTask(t models.Task) models.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return models.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	r.s.users[id] = u
	return nil
}

type memoryResets struct{ s *MemoryStore }

func (r memoryResets) Create(_ context.Context, pr *models.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr.ID = uuid.NewString()
	pr.CreatedAt = r.s.now()
	r.s.resets[pr.ID] = *pr
	return nil
}

func (r memoryResets) GetByTokenHash(_ context.Context, tokenHash string) (*models.PasswordReset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, pr := range r.s.resets {
		if pr.TokenHash == tokenHash {
			return &pr, nil
		}
	}
	return nil, models.ErrResetTokenInvalid
}

func (r memoryResets) MarkUsed(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr, ok := r.s.resets[id]
	if !ok || pr.UsedAt != nil {
		return models.ErrResetTokenInvalid
	}
	pr.UsedAt = &at
	r.s.resets[id] = pr
	return nil
}
