package task

import (
	"context"
	"errors"
	"time"

	"github.com/taskforge/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		QueryAllTasks(ctx context.Context, orderings ...core.DBOrdering) ([]Task, error)
		// RecentTasks returns at most `limit` tasks, newest first.
		RecentTasks(ctx context.Context, limit int) ([]Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		// FilterTasks applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Task.Title or Task.Description.
		FilterTasks(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nt NewTask) (Task, error)
		Query(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Task, error)
		Recent(ctx context.Context, limit int) ([]Task, error)
		GetByID(ctx context.Context, id string) (Task, error)
		Update(ctx context.Context, id string, ut UpdateTask) (Task, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nt NewTask) (Task, error) {
	now := time.Now().UTC()
	t := Task{
		Title:       nt.Title,
		Description: nt.Description,
		Status:      StatusPending,
		Priority:    PriorityMedium,
		DueDate:     nt.DueDate,
		CreatedAt:   now,
	}
	if nt.Status != "" {
		t.Status = ParseStatus(nt.Status)
	}
	if nt.Priority != "" {
		t.Priority = ParsePriority(nt.Priority)
	}
	return svc.repo.CreateTask(ctx, t)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, orderings ...core.DBOrdering) ([]Task, error) {
	if len(orderings) == 0 {
		// the task list view is due-date driven
		orderings = []core.DBOrdering{{Field: "due_date", Ascending: true}}
	}
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllTasks(ctx, orderings...)
	}
	return svc.repo.FilterTasks(ctx, *filter, orderings...)
}

func (svc *service) Recent(ctx context.Context, limit int) ([]Task, error) {
	return svc.repo.RecentTasks(ctx, limit)
}

func (svc *service) GetByID(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTask) (Task, error) {
	t := Task{
		ID:          id,
		Title:       ut.Title,
		Description: ut.Description,
		DueDate:     ut.DueDate,
	}
	if ut.Status != "" {
		t.Status = ParseStatus(ut.Status)
	}
	if ut.Priority != "" {
		t.Priority = ParsePriority(ut.Priority)
	}
	t.UpdatedAt.SetValid(time.Now().UTC())
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTasksByID(ctx, ids...)
}
