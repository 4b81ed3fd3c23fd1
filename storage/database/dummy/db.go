package dummydb

import (
	"sync"

	"github.com/taskforge/backend/core/task"
	"github.com/taskforge/backend/core/user"
)

type (
	DB struct {
		user *userTable
		task *taskTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*task.Task
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		task: &taskTable{table: make(map[string]*task.Task)},
	}
	return db, nil
}
