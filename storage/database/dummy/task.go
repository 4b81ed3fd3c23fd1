package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/taskforge/backend/core"
	"github.com/taskforge/backend/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tasks = append(tasks, *t)
	}
	return tasks
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) QueryAllTasks(_ context.Context, orderings ...core.DBOrdering) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.query()
	sortTasks(tasks, orderings)
	return tasks, nil
}

func (repo *taskRepository) RecentTasks(_ context.Context, limit int) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.query()
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) FilterTasks(_ context.Context, filter task.QueryFilter, orderings ...core.DBOrdering) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.query()

	// tasks with search keyword matching Title or Description ?
	if filter.Search != "" {
		var filtered []task.Task
		kw := strings.ToLower(filter.Search)
		for _, t := range tasks {
			if strings.Contains(strings.ToLower(t.Title), kw) ||
				strings.Contains(strings.ToLower(t.Description.String), kw) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if tasks != nil && filter.Status != "" {
		var filtered []task.Task
		status := task.ParseStatus(filter.Status)
		for _, t := range tasks {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if tasks != nil && filter.Priority != "" {
		var filtered []task.Task
		priority := task.ParsePriority(filter.Priority)
		for _, t := range tasks {
			if t.Priority == priority {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if tasks != nil && !filter.DueFrom.IsZero() {
		var filtered []task.Task
		timeUTC := filter.DueFrom.UTC()
		for _, t := range tasks {
			if t.DueDate.Valid && !t.DueDate.Time.Before(timeUTC) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if tasks != nil && !filter.DueTo.IsZero() {
		var filtered []task.Task
		timeUTC := filter.DueTo.UTC()
		for _, t := range tasks {
			if t.DueDate.Valid && !t.DueDate.Time.After(timeUTC) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	sortTasks(tasks, orderings)
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origTask, ok := repo.db.table[t.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	if t.Title != "" {
		origTask.Title = t.Title
	}
	if t.Description.Valid {
		origTask.Description = t.Description
	}
	if t.Status != "" {
		origTask.Status = t.Status
	}
	if t.Priority != "" {
		origTask.Priority = t.Priority
	}
	if t.DueDate.Valid {
		origTask.DueDate = t.DueDate
	}
	if t.UpdatedAt.Valid {
		origTask.UpdatedAt = t.UpdatedAt
	}

	repo.db.table[t.ID] = origTask
	return *origTask, nil
}

func (repo *taskRepository) DeleteTasksByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func sortTasks(tasks []task.Task, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		sort.SliceStable(tasks, func(a, b int) bool {
			t1, t2 := tasks[a], tasks[b]
			if !ord.Ascending {
				t1, t2 = t2, t1
			}
			switch ord.Field {
			case "due_date":
				// nulls last
				if !t2.DueDate.Valid {
					return t1.DueDate.Valid
				}
				if !t1.DueDate.Valid {
					return false
				}
				return t1.DueDate.Time.Before(t2.DueDate.Time)
			case "created_at":
				return t1.CreatedAt.Before(t2.CreatedAt)
			case "title":
				return t1.Title < t2.Title
			}
			return false
		})
	}
}
