package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/taskforge/backend/core"
	"github.com/taskforge/backend/core/task"
	"github.com/taskforge/backend/core/user"
)

// NewConfig returns an app config suitable for tests.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:                     false,
		TestMode:                  true,
		Env:                       "TEST",
		Build:                     "test",
		AppName:                   "TaskForge",
		SecretKey:                 "s3cr3t-t3st-k3y",
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           time.Second,
		},
	}
}

// Logger is a no-op core.Logger.
type Logger struct{}

var _ core.Logger = (*Logger)(nil)

func (Logger) Enable(bool)                  {}
func (Logger) Debug(string, ...interface{}) {}
func (Logger) Info(string, ...interface{})  {}
func (Logger) Warn(string, ...interface{})  {}
func (Logger) Error(string, ...interface{}) {}
func (Logger) Fatal(string, ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if name != "" {
		usr.DisplayName.SetValid(name)
	}
	if usr.Role == "" {
		usr.Role = user.RoleUser
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTask(
	t *testing.T,
	repo task.Repository,
	title string,
	status task.Status,
	priority task.Priority,
	dueDate time.Time,
	createdAt ...time.Time,
) task.Task {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	tsk := task.Task{
		Title:     title,
		Status:    status,
		Priority:  priority,
		CreatedAt: tstamp,
	}
	if !dueDate.IsZero() {
		tsk.DueDate.SetValid(dueDate.UTC())
	}
	tsk, err := repo.CreateTask(context.Background(), tsk)
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}
