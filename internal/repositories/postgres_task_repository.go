package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/models"
)

const taskColumns = `id, owner_id, title, description, status, priority, due_date, created_at, updated_at`

// sort fields to columns; anything else never reaches SQL. Text columns
// compare bytewise, like the other drivers.
var taskSortColumns = map[models.TaskSortField]string{
	models.SortByCreatedAt: "created_at",
	models.SortByUpdatedAt: "updated_at",
	models.SortByDueDate:   "due_date",
	models.SortByTitle:     `title COLLATE "C"`,
	models.SortByStatus:    `status COLLATE "C"`,
	models.SortByPriority:  `priority COLLATE "C"`,
}

type pgTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t   models.Task
		due sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.Owner, &t.Title, &t.Description, &t.Status, &t.Priority,
		&due, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	return &t, nil
}

func (r *pgTaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Owner, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTaskNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepository) List(ctx context.Context, ownerID string, q models.TaskQuery) ([]models.Task, int64, error) {
	where, args := buildTaskWhere(ownerID, q)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query, pageArgs := buildTaskListQuery(where, args, q)
	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	query := `
		UPDATE tasks SET
			title=$1, description=$2, status=$3, priority=$4, due_date=$5, updated_at=$6
		WHERE id=$7 AND owner_id=$8
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.UpdatedAt,
		task.ID, task.Owner,
	).Scan(&task.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

func (r *pgTaskRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id = $1`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *pgTaskRepository) CountByStatus(ctx context.Context, ownerID string) ([]models.GroupCount, error) {
	return r.countBy(ctx, ownerID, "status")
}

func (r *pgTaskRepository) CountByPriority(ctx context.Context, ownerID string) ([]models.GroupCount, error) {
	return r.countBy(ctx, ownerID, "priority")
}

// column is always one of the two literals above.
func (r *pgTaskRepository) countBy(ctx context.Context, ownerID, column string) ([]models.GroupCount, error) {
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) FROM tasks WHERE owner_id = $1 GROUP BY %[1]s`, column)
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count tasks by %s: %w", column, err)
	}
	defer rows.Close()

	var out []models.GroupCount
	for rows.Next() {
		var gc models.GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		out = append(out, gc)
	}
	return out, rows.Err()
}

// buildTaskWhere renders the owner scope and filters, ANDed, with
// positional args starting at $1.
func buildTaskWhere(ownerID string, q models.TaskQuery) (string, []interface{}) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	argID := 2

	if q.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, string(*q.Status))
		argID++
	}
	if q.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argID))
		args = append(args, string(*q.Priority))
		argID++
	}
	if q.Search != "" {
		conditions = append(conditions,
			fmt.Sprintf(`(title ILIKE $%[1]d ESCAPE '\' OR description ILIKE $%[1]d ESCAPE '\')`, argID))
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildTaskListQuery appends ordering and the page window to where.
func buildTaskListQuery(where string, args []interface{}, q models.TaskQuery) (string, []interface{}) {
	column, ok := taskSortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	dir, nulls := "ASC", " NULLS FIRST"
	if q.Descending {
		dir, nulls = "DESC", " NULLS LAST"
	}
	if column != "due_date" {
		nulls = ""
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY %s %s%s, id COLLATE "C" %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, column, dir, nulls, dir, n+1, n+2)

	out := make([]interface{}, 0, n+2)
	out = append(out, args...)
	out = append(out, q.Limit, q.Skip())
	return query, out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
