// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rezashm/linkdrop/app/dto"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
	"github.com/rezashm/linkdrop/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SignupFlow handles new user registration
type SignupFlow interface {
	Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterData, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo   repository.UserRepository
	auditRepo  repository.AuditLogRepository
	bcryptCost int
	db         *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	bcryptCost int,
	db *gorm.DB,
) SignupFlow {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &SignupFlowImpl{
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		bcryptCost: bcryptCost,
		db:         db,
	}
}

// Register creates a new user account with a unique email
func (sf *SignupFlowImpl) Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterData, error) {
	email := normalizeEmail(request.Email)

	var user *models.User

	resp, err := sf.WithSignupTransaction(ctx, func(ctx context.Context) (*dto.RegisterData, error) {
		// Check email uniqueness
		existing, err := sf.userRepo.ByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailAlreadyExists
		}

		// Hash the password
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), sf.bcryptCost)
		if err != nil {
			return nil, err
		}

		user = &models.User{
			Email:        email,
			PasswordHash: string(hashedPassword),
			IsActive:     utils.ToPtr(true),
		}

		if err := sf.userRepo.Save(ctx, user); err != nil {
			return nil, err
		}

		return &dto.RegisterData{
			UserID: user.ID,
			User:   ToUserDTO(*user),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Registration failed: %s", err.Error())
		_ = sf.LogRegistrationAttempt(ctx, user, models.AuditActionRegistrationFailed, errMsg, false, &errMsg, metadata)

		if IsEmailAlreadyExists(err) {
			return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "Email already exists", err)
		}
		return nil, NewBusinessError("REGISTRATION_FAILED", "Registration failed", err)
	}

	msg := fmt.Sprintf("User registered successfully: %d", resp.UserID)
	_ = sf.LogRegistrationAttempt(ctx, user, models.AuditActionUserRegistered, msg, true, nil, metadata)

	return resp, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (sf *SignupFlowImpl) LogRegistrationAttempt(ctx context.Context, user *models.User, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil && user.ID != 0 {
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

	return sf.auditRepo.Save(ctx, audit)
}

func (sf *SignupFlowImpl) WithSignupTransaction(ctx context.Context, fn func(context.Context) (*dto.RegisterData, error)) (*dto.RegisterData, error) {
	var result *dto.RegisterData
	var fnErr error

	err := repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
