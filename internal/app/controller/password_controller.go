package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oboteam/guarantor-backend/internal/app/service"
	apperrors "github.com/oboteam/guarantor-backend/internal/errors"
	"github.com/oboteam/guarantor-backend/internal/middleware"
)

type PasswordController struct {
	resetService service.PasswordResetService
	userService  service.UserService
}

func NewPasswordController(
	resetService service.PasswordResetService,
	userService service.UserService,
) *PasswordController {
	return &PasswordController{
		resetService: resetService,
		userService:  userService,
	}
}

type RestorePasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RestorePasswordCheckRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  int    `json:"code" binding:"required"`
}

type SetNewPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// RestorePassword starts the reset flow: a code is stored for the email and
// mailed to the user in the background
// POST /api/v1/restore-password
func (ctrl *PasswordController) RestorePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RestorePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid restore password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	if err := ctrl.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "There isn't any user with this email")
			return
		}
		log.Error("Failed to start password reset", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "restore password")
		return
	}

	// Mail delivery is asynchronous, the code is on its way
	c.JSON(http.StatusAccepted, gin.H{
		"message": "Reset code sent",
	})
}

// RestorePasswordCheck verifies a submitted code and returns a bearer token
// POST /api/v1/restore-password-check
func (ctrl *PasswordController) RestorePasswordCheck(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RestorePasswordCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid restore password check request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	token, err := ctrl.resetService.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "There isn't any user with this email")
		case errors.Is(err, service.ErrNoPendingReset):
			apperrors.Conflict(c, apperrors.ResetNotRequested, "This user didn't try to restore password")
		case errors.Is(err, service.ErrWrongCode):
			apperrors.BadRequest(c, apperrors.ResetCodeInvalid, "Wrong code!")
		default:
			log.Error("Failed to verify reset code", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "restore password check")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// SetNewPassword overwrites the password of the user identified by email.
// Requires a valid bearer token; the token subject is not matched against the
// target email (observed behavior of the flow this replaces).
// POST /api/v1/set-new-password
func (ctrl *PasswordController) SetNewPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SetNewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid set new password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	user, err := ctrl.userService.SetNewPassword(req.Email, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "There isn't any user with this email")
			return
		}
		log.Error("Failed to set new password", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "set new password")
		return
	}

	c.JSON(http.StatusOK, user)
}
