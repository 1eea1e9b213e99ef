package tests

import (
	"context"
	"testing"

	"github.com/rezashm/linkdrop/app/dto"
	businessflow "github.com/rezashm/linkdrop/business_flow"
	"github.com/rezashm/linkdrop/repository"
	testingutil "github.com/rezashm/linkdrop/testing"
	"github.com/rezashm/linkdrop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		// Initialize repositories
		userRepo := repository.NewUserRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		// Initialize business flow
		signupFlow := businessflow.NewSignupFlow(
			userRepo,
			auditRepo,
			bcrypt.MinCost,
			testDB.DB,
		)

		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("SuccessfulRegistration", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:    "john.doe@example.com",
				Password: "SecurePass123!",
			}

			result, err := signupFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotZero(t, result.UserID)
			assert.Equal(t, "john.doe@example.com", result.User.Email)
			assert.True(t, result.User.IsActive)

			// Verify user was created
			user, err := userRepo.ByID(context.Background(), result.UserID)
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, "john.doe@example.com", user.Email)
			assert.True(t, utils.IsTrue(user.IsActive))
			assert.NotEqual(t, "SecurePass123!", user.PasswordHash)

			// Password hash must verify against the original password
			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("SecurePass123!"))
			assert.NoError(t, err)
		})

		t.Run("EmailIsNormalized", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:    "  Jane.Smith@Example.COM  ",
				Password: "SecurePass123!",
			}

			result, err := signupFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)
			assert.Equal(t, "jane.smith@example.com", result.User.Email)
		})

		t.Run("ShortPasswordIsAccepted", func(t *testing.T) {
			// Passwords carry no strength or length policy beyond being present
			result, err := signupFlow.Register(context.Background(), &dto.RegisterRequest{
				Email:    "a@x.com",
				Password: "secret1",
			}, metadata)
			require.NoError(t, err)

			user, err := userRepo.ByID(context.Background(), result.UserID)
			require.NoError(t, err)
			require.NotNil(t, user)
			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1"))
			assert.NoError(t, err)
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			req := &dto.RegisterRequest{
				Email:    "dup@example.com",
				Password: "SecurePass123!",
			}

			_, err := signupFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)

			_, err = signupFlow.Register(context.Background(), req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))

			var bizErr *businessflow.BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "EMAIL_ALREADY_EXISTS", bizErr.Code)
		})

		t.Run("DuplicateEmailCaseInsensitive", func(t *testing.T) {
			_, err := signupFlow.Register(context.Background(), &dto.RegisterRequest{
				Email:    "case@example.com",
				Password: "SecurePass123!",
			}, metadata)
			require.NoError(t, err)

			_, err = signupFlow.Register(context.Background(), &dto.RegisterRequest{
				Email:    "CASE@example.com",
				Password: "SecurePass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		return nil
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
}
