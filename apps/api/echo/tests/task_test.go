package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/taskforge/backend/core/task"
	"github.com/taskforge/backend/core/user"
	testutil "github.com/taskforge/backend/tests"
)

func Test_taskApi_query(t *testing.T) {
	app := setup(t)

	path := func(search, status, priority, ordering string, dueFrom, dueTo time.Time) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if status != "" {
			v.Add("status", status)
		}
		if priority != "" {
			v.Add("priority", priority)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if !dueFrom.IsZero() {
			v.Add("due_from", dueFrom.Format(time.RFC3339))
		}
		if !dueTo.IsZero() {
			v.Add("due_to", dueTo.Format(time.RFC3339))
		}
		return "/v1/tasks?" + v.Encode()
	}

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.test", "", user.RoleAdmin, true)
	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.test", "", user.RoleUser, true)
	adminToken := getToken(t, admin)

	now := time.Now().UTC().Truncate(time.Second)
	d1 := now.Add(24 * time.Hour)
	d2 := now.Add(48 * time.Hour)
	d3 := now.Add(72 * time.Hour)

	task1 := testutil.CreateTask(t, taskRepo, "Prepare launch", task.StatusPending, task.PriorityHigh, d2, now)
	task2 := testutil.CreateTask(t, taskRepo, "Write release notes", task.StatusInProgress, task.PriorityMedium, d1, now.Add(time.Minute))
	task3 := testutil.CreateTask(t, taskRepo, "Archive old reports", task.StatusCompleted, task.PriorityLow, d3, now.Add(2*time.Minute))
	task4 := testutil.CreateTask(t, taskRepo, "Triage inbox", task.StatusPending, task.PriorityLow, time.Time{}, now.Add(3*time.Minute))

	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/tasks", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/tasks", token: getToken(t, usr), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errPermDenied),
		},
		{name: "Get all", path: "/v1/tasks", token: adminToken, wantData: marchallList(t, task2, task1, task3, task4)},
		// filtering
		{name: "search (unknown)", path: path("lol", "", "", "", time.Time{}, time.Time{}), token: adminToken, wantData: empty},
		{name: "search by title", path: path("launch", "", "", "", time.Time{}, time.Time{}), token: adminToken, wantData: marchallList(t, task1)},
		{name: "status=pending", path: path("", "pending", "", "", time.Time{}, time.Time{}), token: adminToken, wantData: marchallList(t, task1, task4)},
		{name: "status accepts camel spelling", path: path("", "inProgress", "", "", time.Time{}, time.Time{}), token: adminToken, wantData: marchallList(t, task2)},
		{name: "priority=low", path: path("", "", "low", "", time.Time{}, time.Time{}), token: adminToken, wantData: marchallList(t, task3, task4)},
		{
			name: "status & priority", path: path("", "pending", "low", "", time.Time{}, time.Time{}), token: adminToken,
			wantData: marchallList(t, task4),
		},
		{
			name: "due_from", path: path("", "", "", "", d2, time.Time{}), token: adminToken,
			wantData: marchallList(t, task1, task3),
		},
		{
			name: "due_from - due_to", path: path("", "", "", "", d1, d2), token: adminToken,
			wantData: marchallList(t, task2, task1),
		},
		// ordering
		{
			name: "default ordering is due_date, nulls last", path: "/v1/tasks", token: adminToken,
			wantData: marchallList(t, task2, task1, task3, task4),
		},
		{
			name: "order by -created_at", path: path("", "", "", "-created_at", time.Time{}, time.Time{}), token: adminToken,
			wantData: marchallList(t, task4, task3, task2, task1),
		},
		{
			name: "order by title", path: path("", "", "", "title", time.Time{}, time.Time{}), token: adminToken,
			wantData: marchallList(t, task3, task1, task4, task2),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_taskApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.test", "", user.RoleAdmin, true)
	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.test", "", user.RoleUser, true)
	adminToken := getToken(t, admin)

	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, usr), wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)},
		{
			name: "required fields", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "invalid status", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, task.NewTask{Title: "Lol", Status: "paused"}),
			wantData: marchallObj(t, map[string]string{"status": "invalid status"}),
		},
		{
			name: "invalid priority", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, task.NewTask{Title: "Lol", Priority: "urgent"}),
			wantData: marchallObj(t, map[string]string{"priority": "invalid priority"}),
		},
		{
			name: "created with defaults", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, task.NewTask{Title: "Plan sprint"}),
		},
		{
			name: "created", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, task.NewTask{
				Title:       "Ship v2",
				Description: null.StringFrom("Cut the release and publish."),
				Status:      "inProgress",
				Priority:    "high",
				DueDate:     null.TimeFrom(due),
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/tasks"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData task.Task
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.ID == "" {
					t.Error("failed! no ID assigned")
				}
				switch tt.name {
				case "created with defaults":
					if respData.Status != task.StatusPending {
						t.Errorf("failed! status = %s; want default %s", respData.Status, task.StatusPending)
					}
					if respData.Priority != task.PriorityMedium {
						t.Errorf("failed! priority = %s; want default %s", respData.Priority, task.PriorityMedium)
					}
				case "created":
					if respData.Status != task.StatusInProgress {
						t.Errorf("failed! status = %s; want %s", respData.Status, task.StatusInProgress)
					}
					if respData.Priority != task.PriorityHigh {
						t.Errorf("failed! priority = %s; want %s", respData.Priority, task.PriorityHigh)
					}
					if !respData.DueDate.Valid || !respData.DueDate.Time.Equal(due) {
						t.Errorf("failed! dueDate = %v; want %v", respData.DueDate, due)
					}
				}

				if _, err := taskRepo.GetTaskByID(req.Context(), respData.ID); err != nil {
					t.Errorf("failed! task not persisted; err %v", err)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_taskApi_detail(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.test", "", user.RoleAdmin, true)
	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.test", "", user.RoleUser, true)
	adminToken := getToken(t, admin)

	due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	tsk := testutil.CreateTask(t, taskRepo, "Prepare launch", task.StatusPending, task.PriorityHigh, due)
	toDelete := testutil.CreateTask(t, taskRepo, "Old chore", task.StatusCompleted, task.PriorityLow, time.Time{})

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/tasks/" + tsk.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", method: http.MethodGet, path: "/v1/tasks/" + tsk.ID, token: getToken(t, usr),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied),
		},
		{
			name: "retrieve: unknown ID", method: http.MethodGet, path: "/v1/tasks/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{name: "retrieve", method: http.MethodGet, path: "/v1/tasks/" + tsk.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, tsk)},
		{
			name: "update: unknown ID", method: http.MethodPut, path: "/v1/tasks/lol", token: adminToken,
			body:     marchallObj(t, task.UpdateTask{Status: "completed"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "update: invalid status", method: http.MethodPut, path: "/v1/tasks/" + tsk.ID, token: adminToken,
			body:     marchallObj(t, task.UpdateTask{Status: "paused"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "invalid status"}),
		},
		{
			name: "update: status transition", method: http.MethodPut, path: "/v1/tasks/" + tsk.ID, token: adminToken,
			body: marchallObj(t, task.UpdateTask{Status: "completed"}), wantCode: http.StatusOK,
		},
		{
			name: "destroy: unknown ID", method: http.MethodDelete, path: "/v1/tasks/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{name: "destroy", method: http.MethodDelete, path: "/v1/tasks/" + toDelete.ID, token: adminToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			switch tt.name {
			case "update: status transition":
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData task.Task
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Status != task.StatusCompleted {
					t.Errorf("failed! status = %s; want %s", respData.Status, task.StatusCompleted)
				}
				// untouched fields survive the partial update
				if respData.Title != tsk.Title {
					t.Errorf("failed! title = %s; want %s", respData.Title, tsk.Title)
				}
				if !respData.UpdatedAt.Valid {
					t.Error("failed! updatedAt not stamped")
				}
			case "destroy":
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				if _, err := taskRepo.GetTaskByID(req.Context(), toDelete.ID); err != task.ErrNotFound {
					t.Errorf("failed! task still exists; err %v", err)
				}
			default:
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_taskApi_destroyMultiple(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.test", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	task1 := testutil.CreateTask(t, taskRepo, "Chore 1", task.StatusPending, task.PriorityLow, time.Time{})
	task2 := testutil.CreateTask(t, taskRepo, "Chore 2", task.StatusPending, task.PriorityLow, time.Time{})
	keeper := testutil.CreateTask(t, taskRepo, "Keeper", task.StatusPending, task.PriorityHigh, time.Time{})

	v := make(url.Values)
	v.Add("id", task1.ID)
	v.Add("id", task2.ID)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/tasks?"+v.Encode(), adminToken)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	for _, id := range []string{task1.ID, task2.ID} {
		if _, err := taskRepo.GetTaskByID(req.Context(), id); err != task.ErrNotFound {
			t.Errorf("failed! task %s still exists; err %v", id, err)
		}
	}
	if _, err := taskRepo.GetTaskByID(req.Context(), keeper.ID); err != nil {
		t.Errorf("failed! keeper task deleted; err %v", err)
	}
}
