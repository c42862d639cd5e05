package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskmaster/taskmaster/internal/domain"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetOwned(ctx context.Context, id, creatorID uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		First(&task, "id = ? AND creator_id = ?", id, creatorID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, status *domain.TaskStatus, limit, offset int) ([]*domain.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Task{}).Where("creator_id = ?", creatorID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []*domain.Task
	err := q.Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *taskRepository) SearchByTitle(ctx context.Context, creatorID uuid.UUID, query string, limit, offset int) ([]*domain.Task, int64, error) {
	pattern := "%" + query + "%"
	q := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("creator_id = ?", creatorID).
		Where("title ILIKE ?", pattern)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []*domain.Task
	err := q.Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, creatorID uuid.UUID) (domain.TaskCounts, error) {
	var rows []struct {
		Status domain.TaskStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("status, COUNT(*) AS count").
		Where("creator_id = ?", creatorID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.TaskCounts{}, err
	}

	var counts domain.TaskCounts
	for _, row := range rows {
		switch row.Status {
		case domain.TaskStatusPending:
			counts.Pending = row.Count
		case domain.TaskStatusCompleted:
			counts.Completed = row.Count
		case domain.TaskStatusOverdue:
			counts.Overdue = row.Count
		case domain.TaskStatusCancelled:
			counts.Cancelled = row.Count
		}
		counts.Total += row.Count
	}
	return counts, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id).Error
}

func (r *taskRepository) DeleteByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "creator_id = ?", creatorID)
	return result.RowsAffected, result.Error
}

func (r *taskRepository) FindDuePending(ctx context.Context, before time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Where("due_time < ? AND status = ?", before, domain.TaskStatusPending).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ?", id).
		Update("status", status).Error
}
