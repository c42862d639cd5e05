package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskmaster/taskmaster/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error

	// GetOwned folds the ownership check into the lookup: a task owned by
	// someone else is reported as not found.
	GetOwned(ctx context.Context, id, creatorID uuid.UUID) (*domain.Task, error)

	// ListByCreator returns one page of the owner's tasks ordered by most
	// recently updated, optionally restricted to a single status, plus the
	// total matching count.
	ListByCreator(ctx context.Context, creatorID uuid.UUID, status *domain.TaskStatus, limit, offset int) ([]*domain.Task, int64, error)

	// SearchByTitle is a case-insensitive substring match on title, scoped
	// to the owner.
	SearchByTitle(ctx context.Context, creatorID uuid.UUID, query string, limit, offset int) ([]*domain.Task, int64, error)

	CountByStatus(ctx context.Context, creatorID uuid.UUID) (domain.TaskCounts, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)

	// FindDuePending returns tasks across all owners that are past due and
	// still pending, for the overdue sweep.
	FindDuePending(ctx context.Context, before time.Time) ([]*domain.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error
}

type Repositories struct {
	User UserRepository
	Task TaskRepository
}
