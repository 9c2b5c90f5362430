package identity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

// OrganizationSettings holds per-organization configuration that the core
// consults at runtime.
type OrganizationSettings struct {
	// TargetMarginThreshold is the minimum acceptable fractional margin for a
	// menu item (e.g. 0.65). Nil disables low-margin alerting.
	TargetMarginThreshold *decimal.Decimal `gorm:"type:decimal(9,4)"`
}

// Organization is the tenant boundary. All inventory, recipe and menu data is
// scoped to exactly one organization.
type Organization struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"size:255;not null"`
	Slug     string `gorm:"size:64;not null;uniqueIndex"`
	Currency string `gorm:"size:3;not null;default:'USD'"`
	Active   bool   `gorm:"not null;default:true"`
	Settings OrganizationSettings `gorm:"embedded;embeddedPrefix:settings_"`
}

// TableName returns the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new organization
func NewOrganization(name, slug string) (*Organization, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(strings.ToLower(slug))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Organization slug cannot be empty")
	}
	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Currency:          "USD",
		Active:            true,
	}, nil
}

// SetTargetMarginThreshold sets the minimum acceptable menu-item margin.
// The threshold is a fraction in [0, 1).
func (o *Organization) SetTargetMarginThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() || threshold.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_THRESHOLD", "Margin threshold must be in [0, 1)")
	}
	o.Settings.TargetMarginThreshold = &threshold
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// ClearTargetMarginThreshold disables low-margin alerting
func (o *Organization) ClearTargetMarginThreshold() {
	o.Settings.TargetMarginThreshold = nil
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Deactivate marks the organization inactive
func (o *Organization) Deactivate() {
	o.Active = false
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
