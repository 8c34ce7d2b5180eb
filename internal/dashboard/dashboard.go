package dashboard

import (
	"math"
	"sort"
	"time"

	"taskdeck/internal/domain/models"
)

const (
	upcomingLimit = 5
	titleLimit    = 50
)

var dueDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"}

// Snapshot is the dashboard payload: aggregate stats plus the recent and
// upcoming task views. It is produced from scratch by Aggregate and kept in
// sync after single-task mutations by Add, Update and Delete.
type Snapshot struct {
	Stats         models.DashboardStats `json:"stats"`
	RecentTasks   []models.TaskView     `json:"recentTasks"`
	UpcomingTasks []models.TaskView     `json:"upcomingTasks"`
}

// Aggregate computes the full dashboard snapshot for a task list.
//
// Every task lands in exactly one of the three status buckets: completed and
// in-progress match their canonical spellings, everything else counts as
// pending. That keeps completed+pending+inProgress == total even for stale
// status strings such as the legacy "Pending".
func Aggregate(tasks []models.Task, now time.Time) Snapshot {
	stats := models.DashboardStats{TotalTasks: len(tasks)}
	for _, t := range tasks {
		bumpBucket(&stats, t.Status, 1)
		if isOverdue(t.DueDate, t.Status, now) {
			stats.OverdueTasks++
		}
	}
	stats.CompletionRate = completionRate(stats.CompletedTasks, stats.TotalTasks)

	recent := make([]models.Task, len(tasks))
	copy(recent, tasks)
	sort.SliceStable(recent, func(i, j int) bool {
		return creationInstant(recent[i]).After(creationInstant(recent[j]))
	})

	upcoming := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != models.StatusCompleted && t.DueDate != "" {
			upcoming = append(upcoming, t)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return dueBefore(upcoming[i].DueDate, upcoming[j].DueDate)
	})
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	return Snapshot{
		Stats:         stats,
		RecentTasks:   projectAll(recent),
		UpcomingTasks: projectAll(upcoming),
	}
}

// Add reconciles the snapshot after a task was created.
func (s *Snapshot) Add(task models.Task, now time.Time) {
	view := View(task)
	s.RecentTasks = append([]models.TaskView{view}, s.RecentTasks...)

	if task.DueDate != "" && task.Status != models.StatusCompleted {
		s.UpcomingTasks = append(s.UpcomingTasks, view)
		s.sortUpcoming()
		if len(s.UpcomingTasks) > upcomingLimit {
			s.UpcomingTasks = s.UpcomingTasks[:upcomingLimit]
		}
	}

	s.Stats.TotalTasks++
	bumpBucket(&s.Stats, task.Status, 1)
	if isOverdue(task.DueDate, task.Status, now) {
		s.Stats.OverdueTasks++
	}
	s.refreshRate()
}

// Update reconciles the snapshot after a task was edited. The status buckets
// and the overdue count shift by the delta between the previous and the new
// state of the task; upcoming membership is re-evaluated so a task that was
// completed or lost its due date drops out of the list.
func (s *Snapshot) Update(task models.Task, now time.Time) {
	prev, found := s.find(task.ID)
	view := View(task)

	for i := range s.RecentTasks {
		if s.RecentTasks[i].ID == task.ID {
			s.RecentTasks[i] = view
		}
	}

	s.UpcomingTasks = removeByID(s.UpcomingTasks, task.ID)
	if task.DueDate != "" && task.Status != models.StatusCompleted {
		s.UpcomingTasks = append(s.UpcomingTasks, view)
		s.sortUpcoming()
		if len(s.UpcomingTasks) > upcomingLimit {
			s.UpcomingTasks = s.UpcomingTasks[:upcomingLimit]
		}
	}

	if found {
		if !sameBucket(prev.Status, task.Status) {
			bumpBucket(&s.Stats, prev.Status, -1)
			bumpBucket(&s.Stats, task.Status, 1)
		}
		wasOverdue := isOverdue(prev.DueDate, prev.Status, now)
		nowOverdue := isOverdue(task.DueDate, task.Status, now)
		if wasOverdue && !nowOverdue {
			s.Stats.OverdueTasks--
		} else if !wasOverdue && nowOverdue {
			s.Stats.OverdueTasks++
		}
	}
	s.refreshRate()
}

// Delete reconciles the snapshot after a task was removed.
func (s *Snapshot) Delete(task models.Task, now time.Time) {
	s.RecentTasks = removeByID(s.RecentTasks, task.ID)
	s.UpcomingTasks = removeByID(s.UpcomingTasks, task.ID)

	s.Stats.TotalTasks--
	bumpBucket(&s.Stats, task.Status, -1)
	if isOverdue(task.DueDate, task.Status, now) {
		s.Stats.OverdueTasks--
	}
	s.refreshRate()
}

// View projects a task for the dashboard: title truncated to the first 50
// characters of the description, legacy status spelling normalized, priority
// defaulted to low.
func View(t models.Task) models.TaskView {
	priority := t.Priority
	if priority == "" {
		priority = "low"
	}
	createdAt := ""
	if !t.CreatedAt.IsZero() {
		createdAt = t.CreatedAt.Format(time.RFC3339)
	}
	return models.TaskView{
		ID:          t.ID,
		Title:       truncate(t.Description, titleLimit),
		Description: t.Description,
		Status:      models.NormalizeStatus(t.Status),
		Priority:    priority,
		DueDate:     t.DueDate,
		CreatedAt:   createdAt,
	}
}

func (s *Snapshot) find(id string) (models.TaskView, bool) {
	for _, v := range s.RecentTasks {
		if v.ID == id {
			return v, true
		}
	}
	for _, v := range s.UpcomingTasks {
		if v.ID == id {
			return v, true
		}
	}
	return models.TaskView{}, false
}

func (s *Snapshot) sortUpcoming() {
	sort.SliceStable(s.UpcomingTasks, func(i, j int) bool {
		return dueBefore(s.UpcomingTasks[i].DueDate, s.UpcomingTasks[j].DueDate)
	})
}

func (s *Snapshot) refreshRate() {
	s.Stats.CompletionRate = completionRate(s.Stats.CompletedTasks, s.Stats.TotalTasks)
}

// creationInstant is the instant used to order the recent list: the creation
// time, falling back to the update time, then the zero instant.
func creationInstant(t models.Task) time.Time {
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

func projectAll(tasks []models.Task) []models.TaskView {
	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, View(t))
	}
	return views
}

func removeByID(views []models.TaskView, id string) []models.TaskView {
	kept := views[:0]
	for _, v := range views {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	return kept
}

func bumpBucket(stats *models.DashboardStats, status string, delta int) {
	switch status {
	case models.StatusCompleted:
		stats.CompletedTasks += delta
	case models.StatusInProgress:
		stats.InProgressTasks += delta
	default:
		stats.PendingTasks += delta
	}
}

func sameBucket(a, b string) bool {
	if a == models.StatusCompleted || a == models.StatusInProgress {
		return a == b
	}
	return models.IsPending(b)
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// isOverdue reports whether a non-completed task's due date lies strictly in
// the past. Empty and unparseable due dates are never overdue.
func isOverdue(dueDate, status string, now time.Time) bool {
	if dueDate == "" || status == models.StatusCompleted {
		return false
	}
	due, ok := parseDueDate(dueDate)
	return ok && due.Before(now)
}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// dueBefore orders due-date strings ascending; unparseable dates sort after
// every parseable one so they end up at the back of the upcoming list.
func dueBefore(a, b string) bool {
	da, oka := parseDueDate(a)
	db, okb := parseDueDate(b)
	if oka && okb {
		return da.Before(db)
	}
	return oka && !okb
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
