package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository defines the persistence interface for organizations
type OrganizationRepository interface {
	// FindByID finds an organization by its ID, returning shared.ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	// FindBySlug finds an organization by its slug
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	// Save creates or updates an organization
	Save(ctx context.Context, org *Organization) error
}
