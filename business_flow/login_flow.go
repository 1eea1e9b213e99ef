// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/app/services"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
	"github.com/rezashm/linkdrop/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginFlow handles user authentication
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginData, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a user with email and password.
// Unknown email and wrong password both surface as the same business error
// so the API cannot be used to enumerate accounts.
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginData, error) {
	email := normalizeEmail(request.Email)

	var user *models.User

	resp, err := lf.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginData, error) {
		// Find user by email
		var err error
		user, err = lf.userRepo.ByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		// Check if account is active
		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		// A fresh login supersedes sessions still marked active
		if err := lf.sessionRepo.ExpireAllUserSessions(ctx, user.ID); err != nil {
			return nil, err
		}

		// Create new session
		session, err := lf.CreateSession(ctx, user, metadata)
		if err != nil {
			return nil, err
		}

		// Record last successful login
		if err := lf.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
			return nil, err
		}

		return &dto.LoginData{
			AccessToken: session.SessionToken,
			TokenType:   "Bearer",
			ExpiresIn:   utils.AccessTokenTTLSeconds,
			User:        ToUserDTO(*user),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = lf.LogLoginAttempt(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		if IsAccountInactive(err) {
			return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", err)
		}
		if IsUserNotFound(err) || IsIncorrectPassword(err) {
			return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", err)
		}
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("User logged in successfully: %d", resp.User.ID)
	_ = lf.LogLoginAttempt(ctx, user, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// Private helper methods

func (lf *LoginFlowImpl) CreateSession(ctx context.Context, user *models.User, metadata *ClientMetadata) (*models.UserSession, error) {
	accessToken, err := lf.tokenService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		UserID:        user.ID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	err = lf.sessionRepo.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (lf *LoginFlowImpl) LogLoginAttempt(ctx context.Context, user *models.User, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil {
		userID = &user.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return lf.auditRepo.Save(ctx, audit)
}

func (lf *LoginFlowImpl) WithLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.LoginData, error)) (*dto.LoginData, error) {
	var result *dto.LoginData
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
