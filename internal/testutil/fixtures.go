package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskmaster/taskmaster/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     fmt.Sprintf("Test User %s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

// WithName sets the name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:        uuid.New(),
		Name:      b.name,
		Email:     b.email,
		Password:  string(hashedPassword),
		Role:      domain.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndAuthenticate creates a user via the API and returns it with an access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	})

	resp, err := http.Post(ts.URL("/auth/create"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected registration status: %d", resp.StatusCode)
	}

	var result struct {
		User        *domain.User `json:"user"`
		AccessToken string       `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode registration response: %v", err)
	}

	return result.User, result.AccessToken
}

// TaskBuilder creates test tasks with a builder pattern
type TaskBuilder struct {
	title       string
	description string
	dueTime     time.Time
	status      domain.TaskStatus
	priority    domain.TaskPriority
	creatorID   uuid.UUID
}

// NewTaskBuilder creates a new TaskBuilder with default values
func NewTaskBuilder(creatorID uuid.UUID) *TaskBuilder {
	return &TaskBuilder{
		title:       fmt.Sprintf("task_%s", uuid.New().String()[:8]),
		description: "a test task",
		dueTime:     time.Now().Add(24 * time.Hour),
		status:      domain.TaskStatusPending,
		priority:    domain.TaskPriorityNormal,
		creatorID:   creatorID,
	}
}

// WithTitle sets the title
func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.title = title
	return b
}

// WithDueTime sets the due time
func (b *TaskBuilder) WithDueTime(dueTime time.Time) *TaskBuilder {
	b.dueTime = dueTime
	return b
}

// WithStatus sets the status
func (b *TaskBuilder) WithStatus(status domain.TaskStatus) *TaskBuilder {
	b.status = status
	return b
}

// WithPriority sets the priority
func (b *TaskBuilder) WithPriority(priority domain.TaskPriority) *TaskBuilder {
	b.priority = priority
	return b
}

// Build creates the task in the database
func (b *TaskBuilder) Build(t *testing.T, db *gorm.DB) *domain.Task {
	t.Helper()

	task := &domain.Task{
		ID:          uuid.New(),
		Title:       b.title,
		Description: b.description,
		DueTime:     b.dueTime,
		Status:      b.status,
		Priority:    b.priority,
		CreatorID:   b.creatorID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// DoJSON issues an authenticated JSON request against the test server.
func DoJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
