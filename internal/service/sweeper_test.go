package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/repository/postgres"
	"github.com/taskmaster/taskmaster/internal/service"
	"github.com/taskmaster/taskmaster/internal/testutil"
)

func TestSweeperService_Sweep(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	sweeper := service.NewSweeperService(repos.Task, time.Hour)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	pastDue := testutil.NewTaskBuilder(user.ID).
		WithDueTime(time.Now().Add(-time.Hour)).
		WithStatus(domain.TaskStatusPending).
		Build(t, testDB.DB)
	futureDue := testutil.NewTaskBuilder(user.ID).
		WithDueTime(time.Now().Add(time.Hour)).
		WithStatus(domain.TaskStatusPending).
		Build(t, testDB.DB)
	cancelled := testutil.NewTaskBuilder(user.ID).
		WithDueTime(time.Now().Add(-time.Hour)).
		WithStatus(domain.TaskStatusCancelled).
		Build(t, testDB.DB)
	completed := testutil.NewTaskBuilder(user.ID).
		WithDueTime(time.Now().Add(-time.Hour)).
		WithStatus(domain.TaskStatusCompleted).
		Build(t, testDB.DB)

	sweeper.Sweep(ctx)

	status := func(id uuid.UUID) domain.TaskStatus {
		task, err := repos.Task.GetOwned(ctx, id, user.ID)
		require.NoError(t, err)
		return task.Status
	}

	assert.Equal(t, domain.TaskStatusOverdue, status(pastDue.ID),
		"past-due pending task flips to overdue")
	assert.Equal(t, domain.TaskStatusPending, status(futureDue.ID))
	assert.Equal(t, domain.TaskStatusCancelled, status(cancelled.ID))
	assert.Equal(t, domain.TaskStatusCompleted, status(completed.ID))

	// A second sweep finds nothing left to flip and changes nothing
	sweeper.Sweep(ctx)
	assert.Equal(t, domain.TaskStatusOverdue, status(pastDue.ID))
	assert.Equal(t, domain.TaskStatusPending, status(futureDue.ID))
}

func TestSweeperService_StartStop(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	sweeper := service.NewSweeperService(repos.Task, 50*time.Millisecond)

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	task := testutil.NewTaskBuilder(user.ID).
		WithDueTime(time.Now().Add(-time.Minute)).
		WithStatus(domain.TaskStatusPending).
		Build(t, testDB.DB)

	sweeper.Start()
	defer sweeper.Stop()

	// The first sweep runs on startup, before the first tick
	require.Eventually(t, func() bool {
		got, err := repos.Task.GetOwned(context.Background(), task.ID, user.ID)
		return err == nil && got.Status == domain.TaskStatusOverdue
	}, 5*time.Second, 20*time.Millisecond)
}
