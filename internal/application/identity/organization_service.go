package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/resto/backend/internal/domain/identity"
	"github.com/resto/backend/internal/domain/shared"
)

// OrganizationService manages the tenant boundary: registration, lookup, and
// the per-organization settings the costing side consults (target margin).
type OrganizationService struct {
	orgRepo identity.OrganizationRepository
	logger  *zap.Logger
}

// NewOrganizationService creates an OrganizationService
func NewOrganizationService(orgRepo identity.OrganizationRepository, logger *zap.Logger) *OrganizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{
		orgRepo: orgRepo,
		logger:  logger,
	}
}

// CreateOrganizationRequest represents a tenant registration
type CreateOrganizationRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Slug     string `json:"slug" binding:"required,min=1,max=64"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// UpdateOrganizationSettingsRequest updates per-organization settings.
// ClearTargetMarginThreshold disables low-margin alerting.
type UpdateOrganizationSettingsRequest struct {
	TargetMarginThreshold      *decimal.Decimal `json:"target_margin_threshold"`
	ClearTargetMarginThreshold bool             `json:"clear_target_margin_threshold"`
}

// OrganizationResponse represents an organization in API responses
type OrganizationResponse struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	Slug                  string           `json:"slug"`
	Currency              string           `json:"currency"`
	Active                bool             `json:"active"`
	TargetMarginThreshold *decimal.Decimal `json:"target_margin_threshold"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// ToOrganizationResponse maps a domain organization to its response form
func ToOrganizationResponse(org *identity.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                    org.ID,
		Name:                  org.Name,
		Slug:                  org.Slug,
		Currency:              org.Currency,
		Active:                org.Active,
		TargetMarginThreshold: org.Settings.TargetMarginThreshold,
		CreatedAt:             org.CreatedAt,
		UpdatedAt:             org.UpdatedAt,
	}
}

// CreateOrganization registers a new tenant. Slugs are unique; a taken slug
// returns ALREADY_EXISTS.
func (s *OrganizationService) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	if _, err := s.orgRepo.FindBySlug(ctx, req.Slug); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	org, err := identity.NewOrganization(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	if req.Currency != "" {
		org.Currency = req.Currency
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("slug", org.Slug))

	response := ToOrganizationResponse(org)
	return &response, nil
}

// GetOrganization returns one organization by ID
func (s *OrganizationService) GetOrganization(ctx context.Context, organizationID uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	response := ToOrganizationResponse(org)
	return &response, nil
}

// UpdateSettings applies settings changes to an organization
func (s *OrganizationService) UpdateSettings(ctx context.Context, organizationID uuid.UUID, req UpdateOrganizationSettingsRequest) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	if req.ClearTargetMarginThreshold {
		org.ClearTargetMarginThreshold()
	} else if req.TargetMarginThreshold != nil {
		if err := org.SetTargetMarginThreshold(*req.TargetMarginThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// DeactivateOrganization marks a tenant inactive
func (s *OrganizationService) DeactivateOrganization(ctx context.Context, organizationID uuid.UUID) error {
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return err
	}
	org.Deactivate()
	return s.orgRepo.Save(ctx, org)
}
