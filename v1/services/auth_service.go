package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/orgdir/identity-backend/v1/models"
)

// bcryptCost is the adaptive hash cost applied to stored credentials
const bcryptCost = 10

// AuthService handles registration and login
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Register creates a user, their default organisation, and the membership row
// linking the two, all in one transaction. A taken email yields
// ErrDuplicateEmail whether caught by the pre-check or by the unique index
// when two registrations race.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthData, error) {
	var existing models.User
	err := s.db.WithContext(ctx).First(&existing, "email = ?", req.Email).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UserID:    uuid.New().String(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hash),
		Phone:     req.Phone,
	}
	organisation := models.Organisation{
		OrgID:       uuid.New().String(),
		Name:        fmt.Sprintf("%s's Organisation", req.FirstName),
		Description: "",
		UserID:      user.UserID,
	}
	membership := models.OrganisationUser{
		UserID: user.UserID,
		OrgID:  organisation.OrgID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if err := tx.Create(&organisation).Error; err != nil {
			return fmt.Errorf("failed to create default organisation: %w", err)
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		// A concurrent registration with the same email loses the race at
		// the unique index, not at the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.UserID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("User registered", "userId", user.UserID, "orgId", organisation.OrgID)

	return &models.AuthData{AccessToken: token, User: models.PublicUser(&user)}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both return ErrAuthenticationFailed; callers must not learn which.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthData, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", req.Email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrAuthenticationFailed
	}

	token, err := s.tokens.Issue(user.UserID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.AuthData{AccessToken: token, User: models.PublicUser(&user)}, nil
}

// FindUserByID resolves a user row by identifier. The access guard uses this
// to reject structurally valid tokens for users that no longer exist.
func (s *AuthService) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}
