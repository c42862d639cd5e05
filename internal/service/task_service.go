package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/repository"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type TaskService struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

type CreateTaskInput struct {
	Title       string
	Description string
	DueTime     time.Time
	Priority    domain.TaskPriority
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueTime     *time.Time
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
}

// TaskPage is one page of a filtered listing. Stats always covers the
// owner's entire task set regardless of the status filter, so the dashboard
// summary stays stable while filtering.
type TaskPage struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Size       int               `json:"size"`
	TotalPages int64             `json:"totalPages"`
	Total      int64             `json:"total"`
	Stats      domain.TaskCounts `json:"stats"`
	Tasks      []*domain.Task    `json:"tasks"`
}

type SearchPage struct {
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Size  int            `json:"size"`
	Total int64          `json:"total"`
	Tasks []*domain.Task `json:"tasks"`
}

func (s *TaskService) Create(ctx context.Context, creatorID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	// Date-only comparison: a due time of today at 00:01 is accepted even at
	// 23:59, only a due date on an earlier calendar day is rejected.
	if dueDateBeforeToday(input.DueTime, time.Now()) {
		return nil, domain.ErrDueTimeInPast
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TaskPriorityNormal
	}

	task := &domain.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		DueTime:     input.DueTime,
		Status:      domain.TaskStatusPending,
		Priority:    priority,
		CreatorID:   creatorID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, creatorID uuid.UUID, page, limit int, status *domain.TaskStatus) (*TaskPage, error) {
	page, limit = clampPage(page, limit)
	offset := (page - 1) * limit

	tasks, total, err := s.taskRepo.ListByCreator(ctx, creatorID, status, limit, offset)
	if err != nil {
		return nil, err
	}

	stats, err := s.taskRepo.CountByStatus(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return &TaskPage{
		Page:       page,
		Limit:      limit,
		Size:       len(tasks),
		TotalPages: totalPages,
		Total:      total,
		Stats:      stats,
		Tasks:      tasks,
	}, nil
}

func (s *TaskService) Get(ctx context.Context, creatorID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetOwned(ctx, taskID, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, creatorID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.taskRepo.GetOwned(ctx, taskID, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueTime != nil {
		// Same date-only rule as Create: rescheduling must not land the task
		// on an earlier calendar day than today.
		if dueDateBeforeToday(*input.DueTime, time.Now()) {
			return nil, domain.ErrDueTimeInPast
		}
		task.DueTime = *input.DueTime
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, creatorID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetOwned(ctx, taskID, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Search(ctx context.Context, creatorID uuid.UUID, query string, page, limit int) (*SearchPage, error) {
	page, limit = clampPage(page, limit)
	offset := (page - 1) * limit

	tasks, total, err := s.taskRepo.SearchByTitle(ctx, creatorID, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return &SearchPage{
		Page:  page,
		Limit: limit,
		Size:  len(tasks),
		Total: total,
		Tasks: tasks,
	}, nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func dueDateBeforeToday(due, now time.Time) bool {
	due = due.In(now.Location())
	dueDate := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dueDate.Before(today)
}
