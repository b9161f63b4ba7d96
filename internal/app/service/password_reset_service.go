package service

import (
	"context"
	"errors"
	"time"

	"github.com/oboteam/guarantor-backend/internal/app/repository"
	"github.com/oboteam/guarantor-backend/internal/mailer"
	"github.com/oboteam/guarantor-backend/pkg/logger"
	"github.com/oboteam/guarantor-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrNoPendingReset = errors.New("no password reset was requested for this email")
	ErrWrongCode      = errors.New("submitted code does not match")
)

// PasswordResetService sequences the reset flow: a code is generated and
// mailed on request, and a bearer token is minted once the code is verified.
type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email string, code int) (string, error)
}

type passwordResetService struct {
	userRepo     repository.UserRepository
	codeRepo     repository.ResetCodeRepository
	mailQueue    mailer.Enqueuer
	codeTTL      time.Duration
	jwtSecret    string
	accessExpiry time.Duration
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	codeRepo repository.ResetCodeRepository,
	mailQueue mailer.Enqueuer,
	codeTTL time.Duration,
	jwtSecret string,
	accessExpiry time.Duration,
) PasswordResetService {
	return &passwordResetService{
		userRepo:     userRepo,
		codeRepo:     codeRepo,
		mailQueue:    mailQueue,
		codeTTL:      codeTTL,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

// RequestReset generates a reset code for the user, stores it with a TTL and
// schedules the notification email. A repeated request overwrites the
// previous code. The HTTP response does not wait for mail delivery.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return ErrUserNotFound
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	code, err := util.GenerateResetCode()
	if err != nil {
		logger.Error("Failed to generate reset code", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	if err := s.codeRepo.Save(ctx, user.Email, code, s.codeTTL); err != nil {
		return err
	}

	subject, body := mailer.ResetCodeMessage(code)
	s.mailQueue.Enqueue(mailer.Job{
		To:      user.Email,
		Subject: subject,
		Body:    body,
	})

	logger.Info("Password reset code issued", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"ttl":     s.codeTTL.String(),
	})

	return nil
}

// VerifyCode checks a submitted code against the pending one and, on match,
// deletes the pending code and returns a bearer token for the user. A wrong
// code leaves the pending code in place.
func (s *passwordResetService) VerifyCode(ctx context.Context, email string, code int) (string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Reset verification for non-existent email", map[string]interface{}{
				"email": email,
			})
			return "", ErrUserNotFound
		}
		logger.Error("Failed to find user for reset verification", err, map[string]interface{}{
			"email": email,
		})
		return "", err
	}

	exists, err := s.codeRepo.Exists(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if !exists {
		logger.Warn("Reset verification without a pending reset", map[string]interface{}{
			"email": email,
		})
		return "", ErrNoPendingReset
	}

	savedCode, err := s.codeRepo.Get(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrResetCodeNotFound) {
			// Expired between the exists check and the read
			return "", ErrNoPendingReset
		}
		return "", err
	}

	if savedCode != code {
		logger.Warn("Reset verification with a wrong code", map[string]interface{}{
			"email": email,
		})
		return "", ErrWrongCode
	}

	token, err := util.GenerateAccessToken(user.Email, user.Permissions(), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
		return "", err
	}

	// Single use: a verified code cannot be replayed
	if err := s.codeRepo.Delete(ctx, user.Email); err != nil {
		logger.Error("Failed to invalidate verified reset code", err, map[string]interface{}{
			"email": email,
		})
		// The token is already minted and the code expires via TTL anyway
	}

	logger.Info("Password reset code verified", map[string]interface{}{
		"user_id":     user.ID,
		"email":       user.Email,
		"permissions": user.Permissions(),
	})

	return token, nil
}
