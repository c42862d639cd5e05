package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/repository"
	"github.com/taskmaster/taskmaster/internal/repository/postgres"
	"github.com/taskmaster/taskmaster/internal/service"
	"github.com/taskmaster/taskmaster/internal/testutil"
)

type authFixture struct {
	auth   *service.AuthService
	repos  *repository.Repositories
	db     *testutil.TestDB
	redis  *testutil.TestRedis
	mailer *testutil.RecorderMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	testRedis := testutil.NewTestRedis(t)
	mailer := testutil.NewRecorderMailer()
	cfg := testutil.TestConfig()
	repos := postgres.NewRepositories(testDB.DB)

	auth := service.NewAuthService(repos.User, repos.Task, testRedis.Tokens, testRedis.OTPs, mailer, cfg)

	return &authFixture{auth: auth, repos: repos, db: testDB, redis: testRedis, mailer: mailer}
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Name:     "New User",
				Email:    "new@example.com",
				Password: "password123",
			},
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Name:     "Another User",
				Email:    "taken@example.com",
				Password: "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, f.db.DB)
			},
			wantErr: domain.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.db.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			result, err := f.auth.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Email, result.User.Email)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEqual(t, tt.input.Password, result.User.Password,
				"plaintext password must never be stored")

			// The fresh token passes full validation
			claims, err := f.auth.Authenticate(ctx, result.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, result.User.ID, claims.ID)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, f.db.DB)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name:  "successful login",
			input: service.LoginInput{Email: user.Email, Password: rawPassword},
		},
		{
			name:    "wrong password",
			input:   service.LoginInput{Email: user.Email, Password: "wrongpassword"},
			wantErr: domain.ErrWrongPassword,
		},
		{
			name:    "unknown email",
			input:   service.LoginInput{Email: "nobody@example.com", Password: "anypassword"},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.auth.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, result.AccessToken)
		})
	}
}

func TestAuthService_MultipleSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().Build(t, f.db.DB)

	first, err := f.auth.Login(ctx, service.LoginInput{Email: user.Email, Password: rawPassword})
	require.NoError(t, err)
	second, err := f.auth.Login(ctx, service.LoginInput{Email: user.Email, Password: rawPassword})
	require.NoError(t, err)

	// A later login does not invalidate earlier sessions
	_, err = f.auth.Authenticate(ctx, first.AccessToken)
	assert.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, second.AccessToken)
	assert.NoError(t, err)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().Build(t, f.db.DB)
	result, err := f.auth.Login(ctx, service.LoginInput{Email: user.Email, Password: rawPassword})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, result.AccessToken))

	// The signature and expiry claim are still valid, but the active-session
	// record is gone, so validation must fail.
	_, err = f.auth.Authenticate(ctx, result.AccessToken)
	assert.Error(t, err)

	// Logging out twice is not an error
	assert.NoError(t, f.auth.Logout(ctx, result.AccessToken))

	// An empty token is the only revocation failure
	assert.ErrorIs(t, f.auth.Logout(ctx, ""), domain.ErrMissingToken)
}

func TestAuthService_AuthenticateRejectsSubjectMismatch(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().Build(t, f.db.DB)
	result, err := f.auth.Login(ctx, service.LoginInput{Email: user.Email, Password: rawPassword})
	require.NoError(t, err)

	// Repoint the active-session record at a different user. The signature
	// and expiry still verify, but the session no longer belongs to the
	// token's subject.
	require.NoError(t, f.redis.Tokens.Store(ctx, result.AccessToken, uuid.New(), time.Minute))

	_, err = f.auth.Authenticate(ctx, result.AccessToken)
	assert.Error(t, err)
}

func TestAuthService_UpdatePasswordRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, oldPassword := testutil.NewUserBuilder().
		WithPassword("oldpassword").
		Build(t, f.db.DB)

	newPassword := "brandnewpassword"
	_, err := f.auth.Update(ctx, user.ID, service.UpdateInput{
		OldPassword: &oldPassword,
		NewPassword: &newPassword,
	})
	require.NoError(t, err)

	// Login with the new password succeeds
	_, err = f.auth.Login(ctx, service.LoginInput{Email: user.Email, Password: newPassword})
	assert.NoError(t, err)

	// The old password no longer works
	_, err = f.auth.Login(ctx, service.LoginInput{Email: user.Email, Password: oldPassword})
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
}

func TestAuthService_Update(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name    string
		setup   func() *domain.User
		input   service.UpdateInput
		wantErr error
		check   func(t *testing.T, updated *domain.User)
	}{
		{
			name: "merge keeps omitted fields",
			setup: func() *domain.User {
				u, _ := testutil.NewUserBuilder().WithName("Original Name").Build(t, f.db.DB)
				return u
			},
			input: service.UpdateInput{Name: strPtr("Renamed")},
			check: func(t *testing.T, updated *domain.User) {
				assert.Equal(t, "Renamed", updated.Name)
			},
		},
		{
			name: "new password without old password",
			setup: func() *domain.User {
				u, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
				return u
			},
			input:   service.UpdateInput{NewPassword: strPtr("newpassword1")},
			wantErr: domain.ErrOldPasswordRequired,
		},
		{
			name: "wrong old password",
			setup: func() *domain.User {
				u, _ := testutil.NewUserBuilder().WithPassword("rightpassword").Build(t, f.db.DB)
				return u
			},
			input: service.UpdateInput{
				OldPassword: strPtr("wrongpassword"),
				NewPassword: strPtr("newpassword1"),
			},
			wantErr: domain.ErrWrongPassword,
		},
		{
			name: "email collision",
			setup: func() *domain.User {
				testutil.NewUserBuilder().WithEmail("occupied@example.com").Build(t, f.db.DB)
				u, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
				return u
			},
			input:   service.UpdateInput{Email: strPtr("occupied@example.com")},
			wantErr: domain.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.db.Truncate(t)
			user := tt.setup()

			updated, err := f.auth.Update(ctx, user.ID, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, updated)
		})
	}
}

func TestAuthService_DeleteAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().Build(t, f.db.DB)
	for i := 0; i < 3; i++ {
		testutil.NewTaskBuilder(user.ID).Build(t, f.db.DB)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.DeleteAccount(ctx, user.ID, "wrongpassword")
		assert.ErrorIs(t, err, domain.ErrWrongPassword)
	})

	t.Run("successful deletion cascades to tasks", func(t *testing.T) {
		deleted, err := f.auth.DeleteAccount(ctx, user.ID, rawPassword)
		require.NoError(t, err)
		assert.EqualValues(t, 3, deleted)

		_, _, err = f.auth.CurrentUser(ctx, user.ID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithEmail("reset@example.com").Build(t, f.db.DB)

	t.Run("forgot password for unknown email", func(t *testing.T) {
		err := f.auth.ForgotPassword(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("full reset flow", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, user.Email))

		code := f.mailer.LastOTP(user.Email)
		require.NotEmpty(t, code, "OTP must be delivered by mail")

		require.NoError(t, f.auth.ResetPassword(ctx, user.Email, code, "resetpassword1"))

		_, err := f.auth.Login(ctx, service.LoginInput{Email: user.Email, Password: "resetpassword1"})
		assert.NoError(t, err)

		// The OTP was consumed by the successful reset
		err = f.auth.ResetPassword(ctx, user.Email, code, "anotherpassword")
		assert.ErrorIs(t, err, domain.ErrInvalidOTP)
	})

	t.Run("wrong OTP", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, user.Email))

		err := f.auth.ResetPassword(ctx, user.Email, "000000000000", "whatever123")
		assert.ErrorIs(t, err, domain.ErrInvalidOTP)
	})

	t.Run("reissue supersedes earlier code", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, user.Email))
		first := f.mailer.LastOTP(user.Email)

		require.NoError(t, f.auth.ForgotPassword(ctx, user.Email))
		second := f.mailer.LastOTP(user.Email)
		require.NotEqual(t, first, second)

		err := f.auth.ResetPassword(ctx, user.Email, first, "whatever123")
		assert.ErrorIs(t, err, domain.ErrInvalidOTP)

		assert.NoError(t, f.auth.ResetPassword(ctx, user.Email, second, "whatever123"))
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	testutil.NewTaskBuilder(user.ID).WithStatus(domain.TaskStatusPending).Build(t, f.db.DB)
	testutil.NewTaskBuilder(user.ID).WithStatus(domain.TaskStatusCompleted).Build(t, f.db.DB)
	testutil.NewTaskBuilder(user.ID).WithStatus(domain.TaskStatusCompleted).Build(t, f.db.DB)

	got, counts, err := f.auth.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.EqualValues(t, 1, counts.Pending)
	assert.EqualValues(t, 2, counts.Completed)
	assert.EqualValues(t, 3, counts.Total)
}
