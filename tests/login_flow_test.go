package tests

import (
	"context"
	"testing"
	"time"

	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/app/services"
	businessflow "github.com/rezashm/linkdrop/business_flow"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
	testingutil "github.com/rezashm/linkdrop/testing"
	"github.com/rezashm/linkdrop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		// Initialize repositories
		userRepo := repository.NewUserRepository(testDB.DB)
		sessionRepo := repository.NewUserSessionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		// Initialize services
		tokenService, err := services.NewTokenService(
			24*time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key-for-login-tests")
		require.NoError(t, err)

		// Initialize business flow
		loginFlow := businessflow.NewLoginFlow(
			userRepo,
			sessionRepo,
			auditRepo,
			tokenService,
			testDB.DB,
		)

		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("SuccessfulLogin", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.AccessToken)
			assert.Equal(t, "Bearer", result.TokenType)
			assert.Equal(t, utils.AccessTokenTTLSeconds, result.ExpiresIn)
			assert.Equal(t, user.Email, result.User.Email)

			// The returned token must validate
			claims, err := tokenService.ValidateToken(result.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, user.Email, claims.Email)

			// A session row was persisted for the token
			session, err := sessionRepo.BySessionToken(context.Background(), result.AccessToken)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, user.ID, session.UserID)
			assert.True(t, session.IsValid())

			// Last login was recorded
			refreshed, err := userRepo.ByID(context.Background(), user.ID)
			require.NoError(t, err)
			require.NotNil(t, refreshed.LastLoginAt)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, metadata)
			require.Error(t, err)

			var bizErr *businessflow.BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "INVALID_CREDENTIALS", bizErr.Code)
		})

		t.Run("UnknownEmailLooksLikeWrongPassword", func(t *testing.T) {
			_, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    "nobody@example.com",
				Password: testingutil.TestPassword,
			}, metadata)
			require.Error(t, err)

			// Same error code as a wrong password so accounts cannot be enumerated
			var bizErr *businessflow.BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "INVALID_CREDENTIALS", bizErr.Code)
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			err = testDB.DB.Model(&models.User{}).Where("id = ?", user.ID).
				Update("is_active", false).Error
			require.NoError(t, err)

			_, err = loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("RepeatLoginExpiresOlderSessions", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			first, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)

			second, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)

			// The first session is superseded, the second stays active
			oldSession, err := sessionRepo.BySessionToken(context.Background(), first.AccessToken)
			require.NoError(t, err)
			require.NotNil(t, oldSession)
			assert.False(t, utils.IsTrue(oldSession.IsActive))

			newSession, err := sessionRepo.BySessionToken(context.Background(), second.AccessToken)
			require.NoError(t, err)
			require.NotNil(t, newSession)
			assert.True(t, utils.IsTrue(newSession.IsActive))
		})

		t.Run("FailedLoginIsAudited", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			ctx := context.WithValue(context.Background(), utils.RequestIDKey, "req-login-audit")
			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, metadata)
			require.Error(t, err)

			logs, err := auditRepo.ListByUser(context.Background(), user.ID, 0, 0)
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, models.AuditActionLoginFailed, logs[0].Action)
			assert.True(t, logs[0].IsFailed())
			require.NotNil(t, logs[0].RequestID)
			assert.Equal(t, "req-login-audit", *logs[0].RequestID)
		})

		return nil
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
}
