package stats

import (
	"math"
	"sort"
	"time"

	"taskapi/internal/models"
)

// recentLimit caps the serialized recent-task list in the report.
const recentLimit = 5

// Report aggregates counts and rates over a filtered task set.
type Report struct {
	TotalTasks     int           `json:"total_tasks"`
	CompletedTasks int           `json:"completed_tasks"`
	PendingTasks   int           `json:"pending_tasks"`
	CompletionRate float64       `json:"completion_rate"`
	TasksToday     int           `json:"tasks_today"`
	TasksThisWeek  int           `json:"tasks_this_week"`
	TasksThisMonth int           `json:"tasks_this_month"`
	CompletedToday int           `json:"completed_today"`
	RecentTasks    []models.Task `json:"recent_tasks"`
}

// Compute builds a report over the given tasks relative to now. The week and
// month windows roll back from now's calendar date rather than aligning to
// calendar boundaries. Every count is its own pass over the set; none is
// derived from another.
//
// CompletedToday counts completed tasks CREATED today. The model carries no
// completion timestamp, so "completed today" cannot be measured literally.
func Compute(tasks []models.Task, now time.Time) Report {
	today := dateOf(now, now.Location())
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	createdOn := func(t models.Task) time.Time {
		return dateOf(t.CreatedAt, now.Location())
	}

	total := len(tasks)
	completed := countWhere(tasks, func(t models.Task) bool {
		return t.Status == models.StatusCompleted
	})
	pending := countWhere(tasks, func(t models.Task) bool {
		return t.Status == models.StatusPending
	})

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(completed)/float64(total)*1000) / 10
	}

	return Report{
		TotalTasks:     total,
		CompletedTasks: completed,
		PendingTasks:   pending,
		CompletionRate: rate,
		TasksToday: countWhere(tasks, func(t models.Task) bool {
			return createdOn(t).Equal(today)
		}),
		TasksThisWeek: countWhere(tasks, func(t models.Task) bool {
			return !createdOn(t).Before(weekAgo)
		}),
		TasksThisMonth: countWhere(tasks, func(t models.Task) bool {
			return !createdOn(t).Before(monthAgo)
		}),
		CompletedToday: countWhere(tasks, func(t models.Task) bool {
			return t.Status == models.StatusCompleted && createdOn(t).Equal(today)
		}),
		RecentTasks: mostRecent(tasks),
	}
}

func countWhere(tasks []models.Task, pred func(models.Task) bool) int {
	n := 0
	for _, t := range tasks {
		if pred(t) {
			n++
		}
	}
	return n
}

// mostRecent returns up to recentLimit tasks ordered newest first, regardless
// of the ordering the caller requested for the listing itself.
func mostRecent(tasks []models.Task) []models.Task {
	recent := make([]models.Task, len(tasks))
	copy(recent, tasks)
	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].ID > recent[j].ID
		}
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return recent
}

// dateOf truncates a timestamp to its calendar date in the given location.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
