package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oboteam/guarantor-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrResetCodeNotFound is returned when no pending code exists for an email.
// Transport failures are returned as distinct, wrapped errors.
var ErrResetCodeNotFound = errors.New("no reset code stored for this email")

const resetCodeKeyPrefix = "password-reset:"

// ResetCodeRepository holds at most one pending reset code per email.
// A second Save for the same email overwrites the first (last write wins).
type ResetCodeRepository interface {
	Save(ctx context.Context, email string, code int, ttl time.Duration) error
	Get(ctx context.Context, email string) (int, error)
	Exists(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, email string) error
}

type resetCodeRepository struct {
	client *redis.Client
}

func NewResetCodeRepository(client *redis.Client) ResetCodeRepository {
	return &resetCodeRepository{client: client}
}

func resetCodeKey(email string) string {
	return resetCodeKeyPrefix + email
}

func (r *resetCodeRepository) Save(ctx context.Context, email string, code int, ttl time.Duration) error {
	logger.Debug("Storing reset code in cache", map[string]interface{}{
		"email": email,
		"ttl":   ttl.String(),
	})

	if err := r.client.Set(ctx, resetCodeKey(email), strconv.Itoa(code), ttl).Err(); err != nil {
		logger.Error("Failed to store reset code in cache", err, map[string]interface{}{
			"email": email,
		})
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	return nil
}

func (r *resetCodeRepository) Get(ctx context.Context, email string) (int, error) {
	val, err := r.client.Get(ctx, resetCodeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrResetCodeNotFound
		}
		logger.Error("Failed to read reset code from cache", err, map[string]interface{}{
			"email": email,
		})
		return 0, fmt.Errorf("failed to read reset code: %w", err)
	}

	code, err := strconv.Atoi(val)
	if err != nil {
		logger.Error("Stored reset code is not numeric", err, map[string]interface{}{
			"email": email,
		})
		return 0, fmt.Errorf("corrupt reset code entry: %w", err)
	}

	return code, nil
}

func (r *resetCodeRepository) Exists(ctx context.Context, email string) (bool, error) {
	n, err := r.client.Exists(ctx, resetCodeKey(email)).Result()
	if err != nil {
		logger.Error("Failed to check reset code in cache", err, map[string]interface{}{
			"email": email,
		})
		return false, fmt.Errorf("failed to check reset code: %w", err)
	}
	return n > 0, nil
}

func (r *resetCodeRepository) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, resetCodeKey(email)).Err(); err != nil {
		logger.Error("Failed to delete reset code from cache", err, map[string]interface{}{
			"email": email,
		})
		return fmt.Errorf("failed to delete reset code: %w", err)
	}
	return nil
}
