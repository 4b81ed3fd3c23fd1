package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taskforge/backend/core"
	"github.com/taskforge/backend/core/task"
)

type taskRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Status      string      `db:"status"`
	Priority    string      `db:"priority"`
	DueDate     null.Time   `db:"due_date"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r taskRow) task() task.Task {
	return task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      task.ParseStatus(r.Status),
		Priority:    task.ParsePriority(r.Priority),
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func newTaskRow(t task.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sql.DB) *taskRepository {
	return &taskRepository{db: sqlx.NewDb(db, "postgres")}
}

// trapNoRowsErr maps psql "no rows" err to task.ErrNotFound
func (repo taskRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return task.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo taskRepository) tasks(rows []taskRow) []task.Task {
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks
}

func orderBy(orderings []core.DBOrdering) string {
	if len(orderings) == 0 {
		return ""
	}
	orderList := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.ID = uuid.New().String()
	row := newTaskRow(t)
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO task (id, title, description, status, priority, due_date, created_at, updated_at)
		 VALUES (:id, :title, :description, :status, :priority, :due_date, :created_at, :updated_at)`, row)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return row.task(), nil
}

func (repo taskRepository) QueryAllTasks(ctx context.Context, orderings ...core.DBOrdering) ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM task"+orderBy(orderings)); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	return repo.tasks(rows), nil
}

func (repo taskRepository) RecentTasks(ctx context.Context, limit int) ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM task ORDER BY created_at DESC LIMIT $1", limit); err != nil {
		return nil, errors.Wrap(err, "querying recent tasks")
	}
	return repo.tasks(rows), nil
}

func (repo taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM task WHERE id = $1", id); err != nil {
		return task.Task{}, repo.trapNoRowsErr(err, "finding task by ID")
	}
	return row.task(), nil
}

func (repo taskRepository) FilterTasks(ctx context.Context, filter task.QueryFilter, orderings ...core.DBOrdering) ([]task.Task, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(task.ParseStatus(filter.Status))))
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = "+arg(string(task.ParsePriority(filter.Priority))))
	}
	if !filter.DueFrom.IsZero() {
		conds = append(conds, "due_date >= "+arg(filter.DueFrom.UTC()))
	}
	if !filter.DueTo.IsZero() {
		conds = append(conds, "due_date <= "+arg(filter.DueTo.UTC()))
	}

	q := "SELECT * FROM task"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(orderings)

	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering tasks")
	}
	return repo.tasks(rows), nil
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	orig, err := repo.GetTaskByID(ctx, t.ID)
	if err != nil {
		return task.Task{}, err
	}
	merged := mergeTask(orig, t)

	row := newTaskRow(merged)
	if _, err = repo.db.NamedExecContext(ctx,
		`UPDATE task
		 SET title = :title, description = :description, status = :status,
		     priority = :priority, due_date = :due_date, updated_at = :updated_at
		 WHERE id = :id`, row); err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	return merged, nil
}

// mergeTask applies the set fields of upd onto orig.
func mergeTask(orig, upd task.Task) task.Task {
	if upd.Title != "" {
		orig.Title = upd.Title
	}
	if upd.Description.Valid {
		orig.Description = upd.Description
	}
	if upd.Status != "" {
		orig.Status = upd.Status
	}
	if upd.Priority != "" {
		orig.Priority = upd.Priority
	}
	if upd.DueDate.Valid {
		orig.DueDate = upd.DueDate
	}
	if upd.UpdatedAt.Valid {
		orig.UpdatedAt = upd.UpdatedAt
	}
	return orig
}

func (repo taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In("DELETE FROM task WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return nil
}
