package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oboteam/guarantor-backend/internal/app/model"
	"github.com/oboteam/guarantor-backend/internal/app/repository"
	"github.com/oboteam/guarantor-backend/internal/db"
	"github.com/oboteam/guarantor-backend/internal/mailer"
	"github.com/oboteam/guarantor-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResetCodeRepo is an in-memory stand-in for the Redis code store
type fakeResetCodeRepo struct {
	mu    sync.Mutex
	codes map[string]fakeCodeEntry
}

type fakeCodeEntry struct {
	code      int
	expiresAt time.Time
}

func newFakeResetCodeRepo() *fakeResetCodeRepo {
	return &fakeResetCodeRepo{codes: make(map[string]fakeCodeEntry)}
}

func (f *fakeResetCodeRepo) Save(_ context.Context, email string, code int, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[email] = fakeCodeEntry{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (f *fakeResetCodeRepo) Get(_ context.Context, email string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.codes[email]
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, repository.ErrResetCodeNotFound
	}
	return entry.code, nil
}

func (f *fakeResetCodeRepo) Exists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.codes[email]
	return ok && time.Now().Before(entry.expiresAt), nil
}

func (f *fakeResetCodeRepo) Delete(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, email)
	return nil
}

// fakeMailQueue records enqueued jobs instead of sending them
type fakeMailQueue struct {
	mu   sync.Mutex
	jobs []mailer.Job
}

func (f *fakeMailQueue) Enqueue(job mailer.Job) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return true
}

func (f *fakeMailQueue) sent() []mailer.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Job(nil), f.jobs...)
}

const resetTestSecret = "test-jwt-secret"

func setupResetServiceTest(t *testing.T) (PasswordResetService, repository.UserRepository, *fakeResetCodeRepo, *fakeMailQueue) {
	testDB, err := db.SetupTestDB(t)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	codeRepo := newFakeResetCodeRepo()
	mailQueue := &fakeMailQueue{}

	resetService := NewPasswordResetService(
		userRepo,
		codeRepo,
		mailQueue,
		15*time.Minute,
		resetTestSecret,
		15*time.Minute,
	)

	return resetService, userRepo, codeRepo, mailQueue
}

func createTestUser(t *testing.T, userRepo repository.UserRepository, email string, superuser bool) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		IsActive:     true,
		IsSuperuser:  superuser,
	}
	require.NoError(t, userRepo.Create(user))
	return user
}

func TestPasswordResetService_RequestReset_UnknownEmail(t *testing.T) {
	resetService, _, codeRepo, mailQueue := setupResetServiceTest(t)

	err := resetService.RequestReset(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// No code issued, no mail scheduled
	exists, err := codeRepo.Exists(context.Background(), "missing@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, mailQueue.sent())
}

func TestPasswordResetService_RequestReset_Success(t *testing.T) {
	resetService, userRepo, codeRepo, mailQueue := setupResetServiceTest(t)
	createTestUser(t, userRepo, "a@x.com", false)

	err := resetService.RequestReset(context.Background(), "a@x.com")
	require.NoError(t, err)

	code, err := codeRepo.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, code, 100000)
	assert.LessOrEqual(t, code, 999999)

	// Exactly one delivery, addressed to the user, carrying the code
	jobs := mailQueue.sent()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a@x.com", jobs[0].To)
	assert.Contains(t, jobs[0].Body, "password reset code")
}

func TestPasswordResetService_RequestReset_OverwritesPreviousCode(t *testing.T) {
	resetService, userRepo, codeRepo, mailQueue := setupResetServiceTest(t)
	createTestUser(t, userRepo, "a@x.com", false)

	require.NoError(t, resetService.RequestReset(context.Background(), "a@x.com"))
	first, err := codeRepo.Get(context.Background(), "a@x.com")
	require.NoError(t, err)

	require.NoError(t, resetService.RequestReset(context.Background(), "a@x.com"))
	second, err := codeRepo.Get(context.Background(), "a@x.com")
	require.NoError(t, err)

	// Only the latest code verifies
	if first != second {
		_, err := resetService.VerifyCode(context.Background(), "a@x.com", first)
		assert.ErrorIs(t, err, ErrWrongCode)
	}
	token, err := resetService.VerifyCode(context.Background(), "a@x.com", second)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.Len(t, mailQueue.sent(), 2)
}

func TestPasswordResetService_VerifyCode_UnknownEmail(t *testing.T) {
	resetService, _, _, _ := setupResetServiceTest(t)

	token, err := resetService.VerifyCode(context.Background(), "missing@example.com", 123456)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, token)
}

func TestPasswordResetService_VerifyCode_NoPendingReset(t *testing.T) {
	resetService, userRepo, _, _ := setupResetServiceTest(t)
	createTestUser(t, userRepo, "a@x.com", false)

	token, err := resetService.VerifyCode(context.Background(), "a@x.com", 123456)
	assert.ErrorIs(t, err, ErrNoPendingReset)
	assert.Empty(t, token)
}

func TestPasswordResetService_VerifyCode_WrongCodeLeavesPendingCode(t *testing.T) {
	resetService, userRepo, codeRepo, _ := setupResetServiceTest(t)
	createTestUser(t, userRepo, "a@x.com", false)

	require.NoError(t, resetService.RequestReset(context.Background(), "a@x.com"))
	code, err := codeRepo.Get(context.Background(), "a@x.com")
	require.NoError(t, err)

	wrong := code + 1
	if wrong > 999999 {
		wrong = 100000
	}

	token, err := resetService.VerifyCode(context.Background(), "a@x.com", wrong)
	assert.ErrorIs(t, err, ErrWrongCode)
	assert.Empty(t, token)

	// Code still verifiable with the correct value
	token, err = resetService.VerifyCode(context.Background(), "a@x.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestPasswordResetService_VerifyCode_SingleUse(t *testing.T) {
	resetService, userRepo, codeRepo, _ := setupResetServiceTest(t)
	createTestUser(t, userRepo, "a@x.com", false)

	require.NoError(t, resetService.RequestReset(context.Background(), "a@x.com"))
	code, err := codeRepo.Get(context.Background(), "a@x.com")
	require.NoError(t, err)

	token, err := resetService.VerifyCode(context.Background(), "a@x.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// A verified code cannot be replayed
	_, err = resetService.VerifyCode(context.Background(), "a@x.com", code)
	assert.ErrorIs(t, err, ErrNoPendingReset)
}

func TestPasswordResetService_EndToEnd_RegularUser(t *testing.T) {
	resetService, userRepo, codeRepo, _ := setupResetServiceTest(t)
	createTestUser(t, userRepo, "a@x.com", false)

	require.NoError(t, resetService.RequestReset(context.Background(), "a@x.com"))
	code, err := codeRepo.Get(context.Background(), "a@x.com")
	require.NoError(t, err)

	token, err := resetService.VerifyCode(context.Background(), "a@x.com", code)
	require.NoError(t, err)

	claims, err := util.ValidateToken(token, resetTestSecret)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, util.PermissionsUser, claims.Permissions)
}

func TestPasswordResetService_EndToEnd_Superuser(t *testing.T) {
	resetService, userRepo, codeRepo, _ := setupResetServiceTest(t)
	createTestUser(t, userRepo, "admin@x.com", true)

	require.NoError(t, resetService.RequestReset(context.Background(), "admin@x.com"))
	code, err := codeRepo.Get(context.Background(), "admin@x.com")
	require.NoError(t, err)

	token, err := resetService.VerifyCode(context.Background(), "admin@x.com", code)
	require.NoError(t, err)

	claims, err := util.ValidateToken(token, resetTestSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin@x.com", claims.Subject)
	assert.Equal(t, util.PermissionsAdmin, claims.Permissions)
}
