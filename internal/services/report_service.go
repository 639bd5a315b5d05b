package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
)

var ErrInvalidReportRange = errors.New("report range start must be before its end")

// ReportFilter narrows a report to a department and a creation window
// [From, To).
type ReportFilter struct {
	Department *models.Department
	From       *time.Time
	To         *time.Time
}

// ReportSummary aggregates task statistics for the reports page.
type ReportSummary struct {
	GeneratedAt    time.Time                   `json:"generatedAt"`
	TotalTasks     int                         `json:"totalTasks"`
	CompletedTasks int                         `json:"completedTasks"`
	CompletionRate int                         `json:"completionRate"`
	OverdueTasks   int                         `json:"overdueTasks"`
	ArchivedTasks  int                         `json:"archivedTasks"`
	ByStatus       map[models.TaskStatus]int   `json:"byStatus"`
	ByDepartment   map[models.Department]int   `json:"byDepartment"`
	ByPriority     map[models.TaskPriority]int `json:"byPriority"`
	Employees      []EmployeeStats             `json:"employees"`
}

// EmployeeStats summarises the tasks assigned to one user.
type EmployeeStats struct {
	UserID          uint64             `json:"userId"`
	Name            string             `json:"name"`
	Username        string             `json:"username"`
	Department      *models.Department `json:"department"`
	TotalTasks      int                `json:"totalTasks"`
	CompletedTasks  int                `json:"completedTasks"`
	InProgressTasks int                `json:"inProgressTasks"`
	TodoTasks       int                `json:"todoTasks"`
	CompletionRate  int                `json:"completionRate"`
	AvgRating       float64            `json:"avgRating"`
}

// ReportService builds task reports.
type ReportService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewReportService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *ReportService {
	return &ReportService{taskRepo: taskRepo, userRepo: userRepo, now: time.Now}
}

// Summary computes statistics over non-archived tasks; archived tasks are
// only counted.
func (s *ReportService) Summary(ctx context.Context, filter ReportFilter) (*ReportSummary, error) {
	if filter.Department != nil && !filter.Department.Valid() {
		return nil, ErrInvalidDepartment
	}

	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, ErrInvalidReportRange
	}

	tasks, err := s.taskRepo.ListForReport(ctx, repository.TaskFilter{
		Department:  filter.Department,
		CreatedFrom: filter.From,
		CreatedTo:   filter.To,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	now := s.now()
	summary := &ReportSummary{
		GeneratedAt:  now,
		ByStatus:     make(map[models.TaskStatus]int, len(models.TaskStatuses)),
		ByDepartment: make(map[models.Department]int, len(models.Departments)),
		ByPriority:   make(map[models.TaskPriority]int, len(models.TaskPriorities)),
	}
	for _, st := range models.TaskStatuses {
		summary.ByStatus[st] = 0
	}
	for _, d := range models.Departments {
		summary.ByDepartment[d] = 0
	}
	for _, p := range models.TaskPriorities {
		summary.ByPriority[p] = 0
	}

	byAssignee := make(map[uint64][]models.Task)
	for _, t := range tasks {
		if t.IsArchived {
			summary.ArchivedTasks++
			continue
		}

		summary.TotalTasks++
		summary.ByStatus[t.Status]++
		summary.ByDepartment[t.Department]++
		summary.ByPriority[t.Priority]++

		if t.Status == models.TaskStatusDone {
			summary.CompletedTasks++
		} else if t.DueDate != nil && t.DueDate.Before(now) {
			summary.OverdueTasks++
		}

		if t.AssigneeID != nil {
			byAssignee[*t.AssigneeID] = append(byAssignee[*t.AssigneeID], t)
		}
	}
	summary.CompletionRate = percent(summary.CompletedTasks, summary.TotalTasks)

	summary.Employees = make([]EmployeeStats, 0, len(users))
	for _, u := range users {
		if !u.IsActive {
			continue
		}
		summary.Employees = append(summary.Employees, employeeStats(u, byAssignee[u.ID]))
	}

	return summary, nil
}

func employeeStats(user models.User, tasks []models.Task) EmployeeStats {
	stats := EmployeeStats{
		UserID:     user.ID,
		Name:       user.Name,
		Username:   user.Username,
		Department: user.Department,
		TotalTasks: len(tasks),
	}

	var ratingSum float64
	rated := 0
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusDone:
			stats.CompletedTasks++
		case models.TaskStatusInProgress:
			stats.InProgressTasks++
		case models.TaskStatusTodo:
			stats.TodoTasks++
		}
		if len(t.Ratings) > 0 {
			ratingSum += AverageRating(t.Ratings)
			rated++
		}
	}

	stats.CompletionRate = percent(stats.CompletedTasks, stats.TotalTasks)
	if rated > 0 {
		stats.AvgRating = math.Round(ratingSum/float64(rated)*10) / 10
	}
	return stats
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// ExportXLSX renders the summary as a workbook with a Summary and an
// Employees sheet.
func (s *ReportService) ExportXLSX(ctx context.Context, filter ReportFilter) ([]byte, error) {
	summary, err := s.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet, employeeSheet = "Summary", "Employees"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(employeeSheet); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Generated at", summary.GeneratedAt.Format(time.RFC3339)},
		{"Total tasks", summary.TotalTasks},
		{"Completed tasks", summary.CompletedTasks},
		{"Completion rate (%)", summary.CompletionRate},
		{"Overdue tasks", summary.OverdueTasks},
		{"Archived tasks", summary.ArchivedTasks},
	}
	if filter.From != nil {
		rows = append(rows, []interface{}{"Created from", filter.From.Format("2006-01-02")})
	}
	if filter.To != nil {
		rows = append(rows, []interface{}{"Created before", filter.To.Format("2006-01-02")})
	}
	for _, st := range models.TaskStatuses {
		rows = append(rows, []interface{}{"Status: " + st.Label(), summary.ByStatus[st]})
	}
	for _, d := range models.Departments {
		rows = append(rows, []interface{}{"Department: " + string(d), summary.ByDepartment[d]})
	}
	for _, p := range models.TaskPriorities {
		rows = append(rows, []interface{}{"Priority: " + string(p), summary.ByPriority[p]})
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return nil, err
	}

	employeeRows := [][]interface{}{
		{"Name", "Username", "Department", "Total", "Done", "In progress", "To do", "Completion (%)", "Avg rating"},
	}
	for _, e := range summary.Employees {
		department := ""
		if e.Department != nil {
			department = string(*e.Department)
		}
		employeeRows = append(employeeRows, []interface{}{
			e.Name, e.Username, department, e.TotalTasks, e.CompletedTasks,
			e.InProgressTasks, e.TodoTasks, e.CompletionRate, e.AvgRating,
		})
	}
	if err := writeRows(f, employeeSheet, employeeRows); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(employeeSheet, "A", "C", 20); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
