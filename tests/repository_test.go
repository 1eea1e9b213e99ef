package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
	testingutil "github.com/rezashm/linkdrop/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		linkRepo := repository.NewLinkRepository(testDB.DB)

		t.Run("DuplicateShortCodeSurfacesSentinel", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "")
			require.NoError(t, err)

			clash := &models.Link{
				UserID:      user.ID,
				OriginalURL: "https://example.com/clash",
				ShortCode:   link.ShortCode,
			}
			err = linkRepo.Save(context.Background(), clash)
			require.Error(t, err)
			assert.True(t, errors.Is(err, repository.ErrDuplicateShortCode))
		})

		t.Run("ShortCodeExists", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "")
			require.NoError(t, err)

			exists, err := linkRepo.ShortCodeExists(context.Background(), link.ShortCode)
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = linkRepo.ShortCodeExists(context.Background(), "nope0000")
			require.NoError(t, err)
			assert.False(t, exists)
		})

		t.Run("ByUserAndURL", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "https://example.com/lookup")
			require.NoError(t, err)

			found, err := linkRepo.ByUserAndURL(context.Background(), user.ID, "https://example.com/lookup")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, link.ID, found.ID)

			missing, err := linkRepo.ByUserAndURL(context.Background(), user.ID, "https://example.com/other")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ByShortCodeMissReturnsNil", func(t *testing.T) {
			link, err := linkRepo.ByShortCode(context.Background(), "missing1")
			require.NoError(t, err)
			assert.Nil(t, link)
		})

		return nil
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		userRepo := repository.NewUserRepository(testDB.DB)

		t.Run("ByEmail", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			found, err := userRepo.ByEmail(context.Background(), user.Email)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, user.ID, found.ID)

			missing, err := userRepo.ByEmail(context.Background(), "ghost@example.com")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			require.Nil(t, user.LastLoginAt)

			err = userRepo.UpdateLastLogin(context.Background(), user.ID)
			require.NoError(t, err)

			refreshed, err := userRepo.ByID(context.Background(), user.ID)
			require.NoError(t, err)
			require.NotNil(t, refreshed.LastLoginAt)
		})

		return nil
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
}
