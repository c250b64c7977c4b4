package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orgdir/identity-backend/v1/models"
)

// OrganisationService handles organisation and membership operations.
// Visibility follows membership rows strictly: creator attribution on the
// organisation row grants nothing by itself.
type OrganisationService struct {
	db *gorm.DB
}

// NewOrganisationService creates a new organisation service
func NewOrganisationService(db *gorm.DB) *OrganisationService {
	return &OrganisationService{db: db}
}

// GetOrganisations returns every organisation the user holds a membership
// row for, newest first. A user with no memberships gets an empty slice.
func (s *OrganisationService) GetOrganisations(ctx context.Context, userID string) ([]models.OrganisationResponse, error) {
	var organisations []models.Organisation
	err := s.db.WithContext(ctx).
		Joins("JOIN organisation_users ON organisation_users.org_id = organisations.org_id").
		Where("organisation_users.user_id = ?", userID).
		Order("organisations.created_at DESC").
		Find(&organisations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organisations: %w", err)
	}

	responses := make([]models.OrganisationResponse, 0, len(organisations))
	for _, org := range organisations {
		responses = append(responses, models.OrganisationResponse{
			OrgID:       org.OrgID,
			Name:        org.Name,
			Description: org.Description,
		})
	}
	return responses, nil
}

// GetOrganisation returns a single organisation iff the user is a member.
// Anything else, including an organisation the user merely created, is
// reported as not found rather than forbidden.
func (s *OrganisationService) GetOrganisation(ctx context.Context, userID, orgID string) (*models.OrganisationResponse, error) {
	var organisation models.Organisation
	err := s.db.WithContext(ctx).
		Joins("JOIN organisation_users ON organisation_users.org_id = organisations.org_id").
		Where("organisations.org_id = ? AND organisation_users.user_id = ?", orgID, userID).
		First(&organisation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganisationNotFound
		}
		return nil, fmt.Errorf("failed to fetch organisation: %w", err)
	}

	return &models.OrganisationResponse{
		OrgID:       organisation.OrgID,
		Name:        organisation.Name,
		Description: organisation.Description,
	}, nil
}

// CreateOrganisation creates an organisation and the creator's membership in
// one transaction, so the creator is always able to see what they created.
func (s *OrganisationService) CreateOrganisation(ctx context.Context, userID string, req *models.CreateOrganisationRequest) (*models.OrganisationResponse, error) {
	organisation := models.Organisation{
		OrgID:       uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		UserID:      userID,
	}
	membership := models.OrganisationUser{
		UserID: userID,
		OrgID:  organisation.OrgID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&organisation).Error; err != nil {
			return fmt.Errorf("failed to create organisation: %w", err)
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.OrganisationResponse{
		OrgID:       organisation.OrgID,
		Name:        organisation.Name,
		Description: organisation.Description,
	}, nil
}

// AddUserToOrganisation creates a membership row for an existing user and an
// existing organisation. Adding a user who is already a member is idempotent.
func (s *OrganisationService) AddUserToOrganisation(ctx context.Context, orgID, userID string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	var organisation models.Organisation
	if err := s.db.WithContext(ctx).First(&organisation, "org_id = ?", orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganisationNotFound
		}
		return fmt.Errorf("failed to look up organisation: %w", err)
	}

	membership := models.OrganisationUser{UserID: user.UserID, OrgID: organisation.OrgID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}
