// internal/services/user_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/purbeurre/internal/apperrors"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,strong_password"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"required"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, lookupError(err, "user", userID)
	}
	return &user, nil
}

// UpdateProfile changes the user's names and email. The email must stay
// unique across accounts.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if email != user.Email {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return nil, apperrors.NewValidationError().
				Add("email", "unique", "An account already uses this email address")
		}
	}

	err = db.Model(user).Updates(map[string]interface{}{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      email,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	logrus.WithField("user_id", userID).Info("Profile updated")
	return s.GetUserByID(ctx, userID)
}

// ChangePassword checks the current password before storing the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	if err := utils.Validate(req); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	switch {
	case user.CheckPassword(req.CurrentPassword) != nil:
		return apperrors.NewValidationError().
			Add("current_password", "invalid", "The current password is incorrect")
	case req.NewPassword != req.ConfirmNewPassword:
		return apperrors.NewValidationError().
			Add("confirm_new_password", "eqfield", "The password confirmation does not match")
	case req.NewPassword == req.CurrentPassword:
		return apperrors.NewValidationError().
			Add("new_password", "nefield", "The new password is the same as the current one")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logrus.WithField("user_id", userID).Info("Password changed")
	return nil
}
