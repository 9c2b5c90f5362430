package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resto/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars-long",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "pos-backoffice",
	})
}

func TestJWTService_GenerateAccessToken(t *testing.T) {
	t.Run("issues a token with org-scoped claims", func(t *testing.T) {
		svc := newTestJWTService()
		orgID := uuid.New()
		userID := uuid.New()

		token, expiresAt, err := svc.GenerateAccessToken(orgID, userID, "manager")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, orgID.String(), claims.OrganizationID)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "manager", claims.Role)
		assert.Equal(t, "pos-backoffice", claims.Issuer)
	})
}

func TestJWTService_ValidateAccessToken(t *testing.T) {
	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		svc := newTestJWTService()
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-also-32-chars-long!",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "pos-backoffice",
		})

		token, _, err := other.GenerateAccessToken(uuid.New(), uuid.New(), "")
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars-long",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "pos-backoffice",
		})

		token, _, err := svc.GenerateAccessToken(uuid.New(), uuid.New(), "")
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := newTestJWTService()

		claims, err := svc.ValidateAccessToken("not.a.token")
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_UUIDAccessors(t *testing.T) {
	t.Run("parses organization and user UUIDs", func(t *testing.T) {
		svc := newTestJWTService()
		orgID := uuid.New()
		userID := uuid.New()

		token, _, err := svc.GenerateAccessToken(orgID, userID, "")
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)

		gotOrg, err := claims.GetOrganizationUUID()
		require.NoError(t, err)
		assert.Equal(t, orgID, gotOrg)

		gotUser, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, userID, gotUser)
	})
}
