package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taskforge/backend/core/report"
	"github.com/taskforge/backend/core/task"
	"github.com/taskforge/backend/core/user"
)

// recentLimit is how many newest tasks/users the dashboard shows.
var recentLimit = 5

type reportApi struct {
	taskSvc task.Service
	userSvc user.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{
		taskSvc: deps.TaskSvc,
		userSvc: deps.UserSvc,
	}

	g.GET("/dashboard", api.dashboard, jwt)
	g.GET("/analytics", api.analytics, jwt)
}

// Handlers

func (api *reportApi) dashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	tasks, err := api.taskSvc.Query(rctx, nil)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	users, err := api.userSvc.Query(rctx, nil)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	recentTasks, err := api.taskSvc.Recent(rctx, recentLimit)
	if err != nil {
		return errors.Wrap(err, "querying recent tasks")
	}
	recentUsers, err := api.userSvc.Recent(rctx, recentLimit)
	if err != nil {
		return errors.Wrap(err, "querying recent users")
	}

	now := time.Now()
	stats := report.NewTaskStats(tasks, now)

	return ctx.JSON(http.StatusOK, DashboardResponse{
		TotalUsers:     len(users),
		TaskStats:      stats,
		CompletionRate: stats.CompletionRate(),
		RecentTasks:    recentTasks,
		RecentUsers:    recentUsers,
		TaskTrend:      report.DailyTaskTrends(tasks, report.DefaultActivityDays, now),
	})
}

func (api *reportApi) analytics(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	tasks, err := api.taskSvc.Query(rctx, nil)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	users, err := api.userSvc.Query(rctx, nil)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	return ctx.JSON(http.StatusOK, report.NewOverview(tasks, users, time.Now()))
}

type DashboardResponse struct {
	TotalUsers     int               `json:"total_users"`
	TaskStats      report.TaskStats  `json:"task_stats"`
	CompletionRate int               `json:"completion_rate"`
	RecentTasks    []task.Task       `json:"recent_tasks"`
	RecentUsers    []user.User       `json:"recent_users"`
	TaskTrend      []report.DayTrend `json:"task_trend"`
}
