package service

import (
	"github.com/taskmaster/taskmaster/internal/config"
	"github.com/taskmaster/taskmaster/internal/redis"
	"github.com/taskmaster/taskmaster/internal/repository"
)

// Notifier delivers the transactional emails. Delivery is best-effort
// relative to the request path; a failure never rolls back the operation
// that triggered it.
type Notifier interface {
	SendWelcome(to, name string) error
	SendGoodbye(to, name string) error
	SendOTP(to, name, code string) error
	SendPasswordChanged(to, name string) error
}

type Services struct {
	Auth    *AuthService
	Task    *TaskService
	Sweeper *SweeperService
}

func NewServices(repos *repository.Repositories, tokens *redis.TokenStore, otps *redis.OTPStore, notifier Notifier, cfg *config.Config) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User, repos.Task, tokens, otps, notifier, cfg),
		Task:    NewTaskService(repos.Task),
		Sweeper: NewSweeperService(repos.Task, cfg.SweepInterval),
	}
}
