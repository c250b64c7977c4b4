package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orgdir/identity-backend/v1/models"
)

// UserService resolves user profiles and user-to-user visibility
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CanViewUser reports whether the acting user may see the target user: always
// for themselves, otherwise only when the two membership sets intersect.
func (s *UserService) CanViewUser(ctx context.Context, actingUserID, targetUserID string) (bool, error) {
	if actingUserID == targetUserID {
		return true, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.OrganisationUser{}).
		Where("user_id = ?", targetUserID).
		Where("org_id IN (?)", s.db.
			Model(&models.OrganisationUser{}).
			Select("org_id").
			Where("user_id = ?", actingUserID)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check shared memberships: %w", err)
	}
	return count > 0, nil
}

// GetUserProfile returns the target user's public fields, gated by
// CanViewUser. A hidden user is reported as ErrForbidden, not hidden as 404,
// matching the public API contract.
func (s *UserService) GetUserProfile(ctx context.Context, actingUserID, targetUserID string) (*models.UserResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "user_id = ?", targetUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	visible, err := s.CanViewUser(ctx, actingUserID, targetUserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrForbidden
	}

	resp := models.PublicUser(&user)
	return &resp, nil
}
