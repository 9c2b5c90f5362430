package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/resto/backend/internal/domain/identity"
	"github.com/resto/backend/internal/domain/shared"
)

func setupOrganizationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&identity.Organization{})
	require.NoError(t, err)

	return db
}

func TestGormOrganizationRepository_Save(t *testing.T) {
	db := setupOrganizationTestDB(t)
	repo := NewGormOrganizationRepository(db)
	ctx := context.Background()

	t.Run("persists a new organization", func(t *testing.T) {
		org, err := identity.NewOrganization("Trattoria Roma", "trattoria-roma")
		require.NoError(t, err)

		err = repo.Save(ctx, org)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, org.ID, found.ID)
		assert.Equal(t, "Trattoria Roma", found.Name)
		assert.Equal(t, "trattoria-roma", found.Slug)
		assert.Equal(t, "USD", found.Currency)
		assert.True(t, found.Active)
		assert.Nil(t, found.Settings.TargetMarginThreshold)
	})

	t.Run("round-trips the margin threshold setting", func(t *testing.T) {
		org, err := identity.NewOrganization("Bistro Nord", "bistro-nord")
		require.NoError(t, err)
		require.NoError(t, org.SetTargetMarginThreshold(decimal.RequireFromString("0.65")))

		require.NoError(t, repo.Save(ctx, org))

		found, err := repo.FindByID(ctx, org.ID)
		require.NoError(t, err)
		require.NotNil(t, found.Settings.TargetMarginThreshold)
		assert.True(t, found.Settings.TargetMarginThreshold.Equal(decimal.RequireFromString("0.65")))
		assert.Equal(t, 2, found.Version)
	})

	t.Run("updates an existing organization", func(t *testing.T) {
		org, err := identity.NewOrganization("Cafe Sud", "cafe-sud")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, org))

		org.Deactivate()
		require.NoError(t, repo.Save(ctx, org))

		found, err := repo.FindByID(ctx, org.ID)
		require.NoError(t, err)
		assert.False(t, found.Active)
		assert.Equal(t, 2, found.Version)
	})
}

func TestGormOrganizationRepository_FindBySlug(t *testing.T) {
	db := setupOrganizationTestDB(t)
	repo := NewGormOrganizationRepository(db)
	ctx := context.Background()

	org, err := identity.NewOrganization("Trattoria Roma", "trattoria-roma")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, org))

	t.Run("finds by slug", func(t *testing.T) {
		found, err := repo.FindBySlug(ctx, "trattoria-roma")
		require.NoError(t, err)
		assert.Equal(t, org.ID, found.ID)
	})

	t.Run("unknown slug maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.FindBySlug(ctx, "no-such-place")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrganizationRepository_FindByID_NotFound(t *testing.T) {
	db := setupOrganizationTestDB(t)
	repo := NewGormOrganizationRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
