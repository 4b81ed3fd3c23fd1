package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/taskforge/backend/apps/api/echo"
	"github.com/taskforge/backend/core/report"
	"github.com/taskforge/backend/core/task"
	"github.com/taskforge/backend/core/user"
	testutil "github.com/taskforge/backend/tests"
)

func Test_reportApi_dashboard(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()
	due := now.Add(24 * time.Hour)
	overdue := now.Add(-24 * time.Hour)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.test", "", user.RoleUser, true)
	testutil.CreateUser(t, usrRepo, "Old Timer", "old@test.test", "", user.RoleUser, true, now.AddDate(0, -2, 0))
	token := getToken(t, usr)

	testutil.CreateTask(t, taskRepo, "Done today", task.StatusCompleted, task.PriorityLow, due, now)
	testutil.CreateTask(t, taskRepo, "Doing", task.StatusInProgress, task.PriorityMedium, due, now)
	testutil.CreateTask(t, taskRepo, "Waiting", task.StatusPending, task.PriorityHigh, due, now)
	testutil.CreateTask(t, taskRepo, "Late", task.StatusPending, task.PriorityHigh, overdue, now)

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/dashboard")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData echoapi.DashboardResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}

		if respData.TotalUsers != 2 {
			t.Errorf("failed! totalUsers = %d; want 2", respData.TotalUsers)
		}
		wantStats := report.TaskStats{Completed: 1, Pending: 2, InProgress: 1, Overdue: 1, Total: 4}
		if respData.TaskStats != wantStats {
			t.Errorf("failed! taskStats = %+v; want %+v", respData.TaskStats, wantStats)
		}
		if respData.CompletionRate != 25 {
			t.Errorf("failed! completionRate = %d; want 25", respData.CompletionRate)
		}
		if len(respData.RecentTasks) != 4 {
			t.Errorf("failed! recentTasks = %d; want 4", len(respData.RecentTasks))
		}
		if len(respData.RecentUsers) != 2 {
			t.Errorf("failed! recentUsers = %d; want 2", len(respData.RecentUsers))
		}
		if len(respData.TaskTrend) != report.DefaultActivityDays {
			t.Fatalf("failed! taskTrend points = %d; want %d", len(respData.TaskTrend), report.DefaultActivityDays)
		}
		today := respData.TaskTrend[len(respData.TaskTrend)-1]
		if today.Created != 4 {
			t.Errorf("failed! today.created = %d; want 4", today.Created)
		}
	})
}

func Test_reportApi_dashboard_recentLimit(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.test", "", user.RoleUser, true)
	token := getToken(t, usr)

	now := time.Now().UTC()
	var newest task.Task
	for i := 0; i < 7; i++ {
		newest = testutil.CreateTask(t, taskRepo, "Chore", task.StatusPending, task.PriorityLow, time.Time{}, now.Add(time.Duration(i)*time.Minute))
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", token)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var respData echoapi.DashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	if len(respData.RecentTasks) != 5 {
		t.Fatalf("failed! recentTasks = %d; want 5", len(respData.RecentTasks))
	}
	// newest first
	if respData.RecentTasks[0].ID != newest.ID {
		t.Errorf("failed! recentTasks[0] = %s; want %s", respData.RecentTasks[0].ID, newest.ID)
	}
}

func Test_reportApi_analytics(t *testing.T) {
	app := setup(t)

	now := time.Now().UTC()

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.test", "", user.RoleUser, true)
	testutil.CreateUser(t, usrRepo, "Dormant", "dormant@test.test", "", user.RoleUser, true, now.AddDate(0, -3, 0))
	token := getToken(t, usr)

	testutil.CreateTask(t, taskRepo, "High 1", task.StatusPending, task.PriorityHigh, time.Time{}, now)
	testutil.CreateTask(t, taskRepo, "High 2", task.StatusInProgress, task.PriorityHigh, time.Time{}, now)
	testutil.CreateTask(t, taskRepo, "Low", task.StatusCompleted, task.PriorityLow, time.Time{}, now)

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/analytics")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Analytics", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var respData report.Overview
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}

		wantStats := report.TaskStats{Completed: 1, Pending: 1, InProgress: 1, Total: 3}
		if respData.TaskStats != wantStats {
			t.Errorf("failed! taskStats = %+v; want %+v", respData.TaskStats, wantStats)
		}
		wantUserStats := report.UserStats{TotalUsers: 2, NewUsersThisMonth: 1}
		if respData.UserStats != wantUserStats {
			t.Errorf("failed! userStats = %+v; want %+v", respData.UserStats, wantUserStats)
		}
		if len(respData.TaskTrends) != report.DefaultTrendMonths {
			t.Errorf("failed! taskTrends points = %d; want %d", len(respData.TaskTrends), report.DefaultTrendMonths)
		}
		if len(respData.UserActivity) != report.DefaultActivityDays {
			t.Errorf("failed! userActivity points = %d; want %d", len(respData.UserActivity), report.DefaultActivityDays)
		}
		// zero-count buckets are omitted, high first
		wantDist := []report.PrioritySlice{{Name: "High", Value: 2}, {Name: "Low", Value: 1}}
		if len(respData.PriorityDistribution) != len(wantDist) {
			t.Fatalf("failed! priorityDistribution = %+v; want %+v", respData.PriorityDistribution, wantDist)
		}
		for i, want := range wantDist {
			if respData.PriorityDistribution[i] != want {
				t.Errorf("failed! priorityDistribution[%d] = %+v; want %+v", i, respData.PriorityDistribution[i], want)
			}
		}
		thisMonth := respData.TaskTrends[len(respData.TaskTrends)-1]
		if thisMonth.Created != 3 {
			t.Errorf("failed! thisMonth.created = %d; want 3", thisMonth.Created)
		}
	})
}
