package service

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description *string
	Priority    model.Priority
	DueDate     *model.Date
	CategoryID  *uint
}

// TaskPatch lists the fields to change. Unset fields are left untouched; a null Description,
// DueDate or CategoryID clears the field.
type TaskPatch struct {
	Title       model.Optional[string]
	Description model.Optional[string]
	Priority    model.Optional[model.Priority]
	DueDate     model.Optional[model.Date]
	CategoryID  model.Optional[uint]
	IsCompleted model.Optional[bool]
}

// TaskStats summarizes a user's tasks.
type TaskStats struct {
	Total      int64             `json:"total"`
	Completed  int64             `json:"completed"`
	Pending    int64             `json:"pending"`
	Overdue    int64             `json:"overdue"`
	ByPriority PriorityBreakdown `json:"by_priority"`
}

// PriorityBreakdown counts pending tasks per priority.
type PriorityBreakdown struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	statsRepo    *repository.StatsRepository
	now          func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, statsRepo *repository.StatsRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo, statsRepo: statsRepo, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, user *model.User, filter repository.TaskFilter, skip, limit int) ([]model.Task, error) {
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, invalid("priority must be one of low, medium, high")
	}
	return s.taskRepo.List(ctx, user.ID, filter, skip, limit)
}

// Create stores a new, not yet completed task owned by user.
func (s *TaskService) Create(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, invalid("priority must be one of low, medium, high")
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, user.ID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	task := model.Task{
		UserID:      user.ID,
		CategoryID:  input.CategoryID,
		Title:       title,
		Description: input.Description,
		Priority:    priority,
		DueDate:     input.DueDate,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	log.Printf("[info] task created id=%d user=%d", task.ID, user.ID)
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, user *model.User, id uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, lookup(err, "task")
	}
	return task, nil
}

// Update applies patch to the task. Flipping IsCompleted stamps or clears CompletedAt;
// setting it to its current value leaves CompletedAt alone.
func (s *TaskService) Update(ctx context.Context, user *model.User, id uint, patch TaskPatch) (*model.Task, error) {
	task, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if patch.Title.Set {
		title := strings.TrimSpace(patch.Title.Value)
		if patch.Title.Null {
			title = ""
		}
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if patch.Description.Set {
		task.Description = patch.Description.Ptr()
	}
	if patch.Priority.Set {
		if patch.Priority.Null || !patch.Priority.Value.Valid() {
			return nil, invalid("priority must be one of low, medium, high")
		}
		task.Priority = patch.Priority.Value
	}
	if patch.DueDate.Set {
		task.DueDate = patch.DueDate.Ptr()
	}
	if patch.CategoryID.Set {
		if !patch.CategoryID.Null {
			if err := s.ensureCategory(ctx, user.ID, patch.CategoryID.Value); err != nil {
				return nil, err
			}
		}
		task.CategoryID = patch.CategoryID.Ptr()
	}
	if patch.IsCompleted.Set {
		if patch.IsCompleted.Null {
			return nil, invalid("is_completed must be true or false")
		}
		if patch.IsCompleted.Value != task.IsCompleted {
			task.SetCompleted(patch.IsCompleted.Value, s.now().UTC())
		}
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks the task done and restamps CompletedAt even if it already was.
func (s *TaskService) Complete(ctx context.Context, user *model.User, id uint) (*model.Task, error) {
	return s.setCompleted(ctx, user, id, true)
}

// Incomplete marks the task pending and clears CompletedAt.
func (s *TaskService) Incomplete(ctx context.Context, user *model.User, id uint) (*model.Task, error) {
	return s.setCompleted(ctx, user, id, false)
}

func (s *TaskService) setCompleted(ctx context.Context, user *model.User, id uint, done bool) (*model.Task, error) {
	task, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	task.SetCompleted(done, s.now().UTC())
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	log.Printf("[info] task completion set id=%d user=%d done=%t", task.ID, user.ID, done)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, user *model.User, id uint) error {
	if err := s.taskRepo.Delete(ctx, user.ID, id); err != nil {
		return lookup(err, "task")
	}
	log.Printf("[info] task deleted id=%d user=%d", id, user.ID)
	return nil
}

// Stats counts the user's tasks. Overdue means pending with a due date before today.
func (s *TaskService) Stats(ctx context.Context, user *model.User) (*TaskStats, error) {
	counts, err := s.statsRepo.Counts(ctx, user.ID, model.Today(s.now()))
	if err != nil {
		return nil, err
	}
	return &TaskStats{
		Total:     counts.Total,
		Completed: counts.Completed,
		Pending:   counts.Total - counts.Completed,
		Overdue:   counts.Overdue,
		ByPriority: PriorityBreakdown{
			High:   counts.ByPriority[model.PriorityHigh],
			Medium: counts.ByPriority[model.PriorityMedium],
			Low:    counts.ByPriority[model.PriorityLow],
		},
	}, nil
}

func (s *TaskService) ensureCategory(ctx context.Context, userID, categoryID uint) error {
	if _, err := s.categoryRepo.FindByID(ctx, userID, categoryID); err != nil {
		return lookup(err, "category")
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > 200 {
		return invalid("title must be between 1 and 200 characters")
	}
	return nil
}
