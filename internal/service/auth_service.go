package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskmaster/taskmaster/internal/config"
	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/redis"
	"github.com/taskmaster/taskmaster/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	tokens   *redis.TokenStore
	otps     *redis.OTPStore
	notifier Notifier
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, tokens *redis.TokenStore, otps *redis.OTPStore, notifier Notifier, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		tokens:   tokens,
		otps:     otps,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Claims is the JWT payload of a session token.
type Claims struct {
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateInput struct {
	Name        *string
	Email       *string
	OldPassword *string
	NewPassword *string
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashedPassword),
		Role:      domain.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	accessToken, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.notifyAsync("Register", func() error {
		return s.notifier.SendWelcome(user.Email, user.Name)
	})

	return &AuthResult{User: user, AccessToken: accessToken}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, domain.ErrWrongPassword
	}

	// A fresh session is issued without touching any prior sessions; multiple
	// concurrent sessions per user are allowed.
	accessToken, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, AccessToken: accessToken}, nil
}

// CurrentUser returns the user record together with per-status task counts
// for the dashboard summary.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, domain.TaskCounts, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.TaskCounts{}, domain.ErrUserNotFound
		}
		return nil, domain.TaskCounts{}, err
	}

	counts, err := s.taskRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, domain.TaskCounts{}, err
	}

	return user, counts, nil
}

func (s *AuthService) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if input.NewPassword != nil && input.OldPassword == nil {
		return nil, domain.ErrOldPasswordRequired
	}

	if input.OldPassword != nil {
		if user.Password == "" {
			return nil, domain.ErrPasswordNotSet
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*input.OldPassword)); err != nil {
			return nil, domain.ErrWrongPassword
		}
		if input.NewPassword != nil {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*input.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			user.Password = string(hashed)
		}
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, *input.Email)
		if err == nil && existing != nil {
			return nil, domain.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *input.Email
	}

	if input.Name != nil {
		user.Name = *input.Name
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and all owned tasks after re-verifying the
// password, and reports the number of tasks deleted.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}

	if user.Password == "" {
		return 0, domain.ErrPasswordNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return 0, domain.ErrWrongPassword
	}

	deleted, err := s.taskRepo.DeleteByCreator(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return 0, err
	}

	s.notifyAsync("DeleteAccount", func() error {
		return s.notifier.SendGoodbye(user.Email, user.Name)
	})

	return deleted, nil
}

// ForgotPassword issues a fresh OTP for the email, superseding any prior
// code, and mails it. The code itself never appears in the API response.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	code, err := s.otps.Issue(ctx, email)
	if err != nil {
		return err
	}

	// The OTP mail is the whole point of this endpoint, so it is sent on the
	// request path rather than fire-and-forget.
	return s.notifier.SendOTP(user.Email, user.Name, code)
}

func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	valid, err := s.otps.Verify(ctx, email, otp)
	if err != nil {
		return err
	}
	if !valid {
		return domain.ErrInvalidOTP
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// The OTP is consumed only once the password update has committed, so a
	// failure above leaves the code usable for a retry within its TTL.
	if err := s.otps.Consume(ctx, email); err != nil {
		log.Printf("ERROR [auth.ResetPassword] failed to consume OTP: %v", err)
	}

	s.notifyAsync("ResetPassword", func() error {
		return s.notifier.SendPasswordChanged(user.Email, user.Name)
	})

	return nil
}

// Logout revokes the active-session record for the token. Revoking an
// already-revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingToken
	}
	return s.tokens.Revoke(ctx, token)
}

// Authenticate verifies a bearer token end to end: signature and expiry
// claim, then the active-session record, then the record's user against the
// token's subject. Any failure means the session is unusable; callers
// collapse them all into a single unauthorized rejection.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	storedID, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if storedID != claims.ID {
		return nil, errors.New("session does not match token subject")
	}

	return claims, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	// The active-session record shares the token's TTL so both expire
	// together.
	if err := s.tokens.Store(ctx, signed, user.ID, s.cfg.SessionTTL); err != nil {
		return "", err
	}
	return signed, nil
}

func (s *AuthService) notifyAsync(op string, send func() error) {
	go func() {
		if err := send(); err != nil {
			log.Printf("ERROR [auth.%s] mail delivery failed: %v", op, err)
		}
	}()
}
