package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/spreadsheet"
)

// reportCap bounds the created titles and messages echoed back in an ImportReport.
const reportCap = 10

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Message      string   `json:"message"`
	TotalRows    int      `json:"total_rows"`
	TasksCreated int      `json:"tasks_created"`
	CreatedTasks []string `json:"created_tasks"`
	ErrorsCount  int      `json:"errors_count"`
	Errors       []string `json:"errors"`
}

// ImportService turns uploaded spreadsheets into tasks.
type ImportService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewImportService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *ImportService {
	return &ImportService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

// Import parses the file and creates one task per usable row. Bad rows are reported, not raised;
// the usable rows are committed together or not at all.
func (s *ImportService) Import(ctx context.Context, user *model.User, filename string, r io.Reader) (*ImportReport, error) {
	if !spreadsheet.Supported(filename) {
		return nil, invalid("file must be a spreadsheet (.xlsx, .xlsm or .csv)")
	}
	table, err := spreadsheet.Read(filename, r)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			return nil, invalid("file must be a spreadsheet (.xlsx, .xlsm or .csv)")
		}
		return nil, invalid("could not read file: %v", err)
	}
	if len(table.Rows) == 0 {
		return nil, invalid("file contains no rows")
	}
	if !table.HasColumn("title") {
		return nil, invalid("file must have a 'title' column")
	}

	categories, err := s.categoryIndex(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	var (
		tasks    []model.Task
		messages []string
	)
	for _, row := range table.Rows {
		task, warnings, err := buildTask(row, user.ID, categories)
		for _, w := range warnings {
			messages = append(messages, fmt.Sprintf("Row %d: %s", row.Line, w))
		}
		if err != nil {
			messages = append(messages, fmt.Sprintf("Row %d: %v", row.Line, err))
			continue
		}
		tasks = append(tasks, task)
	}

	if err := s.taskRepo.CreateBatch(ctx, tasks); err != nil {
		return nil, internal("import failed, no tasks were created", err)
	}
	log.Printf("[info] import user=%d rows=%d created=%d messages=%d", user.ID, len(table.Rows), len(tasks), len(messages))

	report := &ImportReport{
		Message:      fmt.Sprintf("Imported %d of %d rows", len(tasks), len(table.Rows)),
		TotalRows:    len(table.Rows),
		TasksCreated: len(tasks),
		CreatedTasks: []string{},
		ErrorsCount:  len(messages),
		Errors:       capped(messages),
	}
	for i := 0; i < len(tasks) && i < reportCap; i++ {
		report.CreatedTasks = append(report.CreatedTasks, tasks[i].Title)
	}
	return report, nil
}

// Template returns the xlsx skeleton users fill in for Import.
func (s *ImportService) Template() ([]byte, error) {
	data, err := spreadsheet.Template()
	if err != nil {
		return nil, internal("could not build template", err)
	}
	return data, nil
}

func (s *ImportService) categoryIndex(ctx context.Context, userID uint) (map[string]uint, error) {
	categories, err := s.categoryRepo.ListByUser(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}
	index := make(map[string]uint, len(categories))
	for _, c := range categories {
		index[strings.ToLower(c.Name)] = c.ID
	}
	return index, nil
}

// buildTask converts one row. Recoverable problems come back as warnings; a non-nil error drops the row.
func buildTask(row spreadsheet.Row, userID uint, categories map[string]uint) (model.Task, []string, error) {
	var warnings []string

	title := row.Get("title")
	if title == "" {
		return model.Task{}, nil, errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > 200 {
		return model.Task{}, nil, errors.New("title must be at most 200 characters")
	}

	task := model.Task{UserID: userID, Title: title, Priority: model.PriorityMedium}

	if desc := row.Get("description"); desc != "" {
		task.Description = &desc
	}

	if raw := row.Get("priority"); raw != "" {
		if p, ok := model.ParsePriority(raw); ok {
			task.Priority = p
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid priority %q, using medium", raw))
		}
	}

	if raw := row.Get("due_date"); raw != "" {
		if t, ok := spreadsheet.ParseDate(raw); ok {
			d := model.NewDate(t)
			task.DueDate = &d
		} else {
			warnings = append(warnings, fmt.Sprintf("invalid due date %q, ignored", raw))
		}
	}

	if name := row.Get("category"); name != "" {
		if id, ok := categories[strings.ToLower(name)]; ok {
			task.CategoryID = &id
		} else {
			warnings = append(warnings, fmt.Sprintf("category %q not found, task created without category", name))
		}
	}

	return task, warnings, nil
}

func capped(messages []string) []string {
	if len(messages) > reportCap {
		return messages[:reportCap]
	}
	if messages == nil {
		return []string{}
	}
	return messages
}
