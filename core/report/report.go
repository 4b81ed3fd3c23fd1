// Package report derives dashboard metrics and trend series from in-memory
// task and user snapshots. Every function is pure: deterministic given its
// inputs and a reference instant, no I/O, inputs never mutated.
package report

import (
	"math"
	"time"

	"github.com/taskforge/backend/core/task"
	"github.com/taskforge/backend/core/user"
)

// Default chart windows.
const (
	DefaultTrendMonths  = 6
	DefaultActivityDays = 7
)

// activeUserWindow is how far back LastActivity may be for a user to still
// count as active.
const activeUserWindow = 30 * 24 * time.Hour

var (
	monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	dayNames   = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// TaskStats tallies a task snapshot by status. Every task counts toward Total
// exactly once and toward at most one status bucket; tasks with an
// unrecognized status only count toward Total. Overdue is independent of the
// status buckets: any non-completed task whose due date has passed.
type TaskStats struct {
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Overdue    int `json:"overdue"`
	Total      int `json:"total"`
}

func NewTaskStats(tasks []task.Task, now time.Time) TaskStats {
	var stats TaskStats
	for i := range tasks {
		t := &tasks[i]
		stats.Total++
		switch t.Status {
		case task.StatusCompleted:
			stats.Completed++
		case task.StatusPending:
			stats.Pending++
		case task.StatusInProgress:
			stats.InProgress++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// CompletionRate is the percentage of tasks completed, rounded to the nearest
// integer; 0 when the snapshot is empty.
func (s TaskStats) CompletionRate() int {
	return Percentage(s.Completed, s.Total)
}

// StatusPercentage is the share of the given bucket count against the total.
func (s TaskStats) StatusPercentage(count int) int {
	return Percentage(count, s.Total)
}

// Percentage returns round(count/total*100); 0 when total is 0.
func Percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// PrioritySlice is one entry of the priority histogram.
type PrioritySlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PriorityDistribution counts tasks per priority, high to low. Buckets with a
// zero count are omitted so pie charts never render empty slices; tasks with
// an unrecognized priority are not counted.
func PriorityDistribution(tasks []task.Task) []PrioritySlice {
	counts := make(map[task.Priority]int, 3)
	for i := range tasks {
		counts[tasks[i].Priority]++
	}

	dist := make([]PrioritySlice, 0, 3)
	for _, p := range []struct {
		priority task.Priority
		name     string
	}{
		{task.PriorityHigh, "High"},
		{task.PriorityMedium, "Medium"},
		{task.PriorityLow, "Low"},
	} {
		if n := counts[p.priority]; n > 0 {
			dist = append(dist, PrioritySlice{Name: p.name, Value: n})
		}
	}
	return dist
}

// MonthTrend is one month of the task trend series.
type MonthTrend struct {
	Month     string `json:"month"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// MonthlyTaskTrends produces one point per trailing calendar month, ending at
// now's month. Created counts tasks whose CreatedAt falls in the month;
// Completed counts completed tasks whose UpdatedAt falls in the month. Month
// bounds are calendar-aligned in now's location, so each task lands in at
// most one created bucket and at most one completed bucket.
func MonthlyTaskTrends(tasks []task.Task, months int, now time.Time) []MonthTrend {
	trends := make([]MonthTrend, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, 0)

		trend := MonthTrend{Month: monthNames[start.Month()-1]}
		for j := range tasks {
			t := &tasks[j]
			if inRange(t.CreatedAt, start, end) {
				trend.Created++
			}
			if t.IsCompleted() && t.UpdatedAt.Valid && inRange(t.UpdatedAt.Time, start, end) {
				trend.Completed++
			}
		}
		trends = append(trends, trend)
	}
	return trends
}

// DayTrend is one day of the daily task trend series.
type DayTrend struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// DailyTaskTrends is the daily counterpart of MonthlyTaskTrends, used by the
// dashboard's short-range chart. Dates are ISO (yyyy-mm-dd) in now's location.
func DailyTaskTrends(tasks []task.Task, days int, now time.Time) []DayTrend {
	trends := make([]DayTrend, 0, days)
	for i := days - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), now.Day()-i, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)

		trend := DayTrend{Date: start.Format("2006-01-02")}
		for j := range tasks {
			t := &tasks[j]
			if inRange(t.CreatedAt, start, end) {
				trend.Created++
			}
			if t.IsCompleted() && t.UpdatedAt.Valid && inRange(t.UpdatedAt.Time, start, end) {
				trend.Completed++
			}
		}
		trends = append(trends, trend)
	}
	return trends
}

// DayActivity is one day of the user activity series.
type DayActivity struct {
	Day    string `json:"day"`
	Active int    `json:"active"`
}

// DailyUserActivity produces one point per trailing calendar day, ending
// today, counting users whose LastActivity falls within the day's local
// bounds. A user's single LastActivity lands in at most one bucket.
func DailyUserActivity(users []user.User, days int, now time.Time) []DayActivity {
	activity := make([]DayActivity, 0, days)
	for i := days - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), now.Day()-i, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)

		point := DayActivity{Day: dayNames[start.Weekday()]}
		for j := range users {
			u := &users[j]
			if u.LastActivity.Valid && inRange(u.LastActivity.Time, start, end) {
				point.Active++
			}
		}
		activity = append(activity, point)
	}
	return activity
}

// IsActiveUser reports whether the user has activity within the trailing
// 30-day window. Users without a LastActivity are never active.
func IsActiveUser(usr user.User, now time.Time) bool {
	return usr.LastActivity.Valid && usr.LastActivity.Time.After(now.Add(-activeUserWindow))
}

// IsNewThisMonth reports whether the user was created within now's calendar
// month and year.
func IsNewThisMonth(usr user.User, now time.Time) bool {
	return usr.CreatedAt.Month() == now.Month() && usr.CreatedAt.Year() == now.Year()
}

// UserStats tallies a user snapshot.
type UserStats struct {
	TotalUsers        int `json:"total_users"`
	ActiveUsers       int `json:"active_users"`
	NewUsersThisMonth int `json:"new_users_this_month"`
}

func NewUserStats(users []user.User, now time.Time) UserStats {
	stats := UserStats{TotalUsers: len(users)}
	for i := range users {
		if IsActiveUser(users[i], now) {
			stats.ActiveUsers++
		}
		if IsNewThisMonth(users[i], now) {
			stats.NewUsersThisMonth++
		}
	}
	return stats
}

// Overview is the full analytics record driving the analytics view.
type Overview struct {
	TaskStats            TaskStats       `json:"task_stats"`
	UserStats            UserStats       `json:"user_stats"`
	TaskTrends           []MonthTrend    `json:"task_trends"`
	PriorityDistribution []PrioritySlice `json:"priority_distribution"`
	UserActivity         []DayActivity   `json:"user_activity"`
}

func NewOverview(tasks []task.Task, users []user.User, now time.Time) Overview {
	return Overview{
		TaskStats:            NewTaskStats(tasks, now),
		UserStats:            NewUserStats(users, now),
		TaskTrends:           MonthlyTaskTrends(tasks, DefaultTrendMonths, now),
		PriorityDistribution: PriorityDistribution(tasks),
		UserActivity:         DailyUserActivity(users, DefaultActivityDays, now),
	}
}

// inRange reports start <= t < end.
func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
