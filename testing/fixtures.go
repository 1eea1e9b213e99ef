// Package testing provides test utilities and database setup for testing the link shortener
package testing

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// TestPassword is the plaintext password used for all fixture users
const TestPassword = "TestPass123!"

// CreateTestUser creates an active user with a bcrypt hash of TestPassword
func (tf *TestFixtures) CreateTestUser() (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// create random number containing exactly 9 digits
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	user := &models.User{
		Email:        fmt.Sprintf("user.%s@example.com", randomDigits),
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}

	err = tf.DB.DB.Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestLink creates a link for the given user with a random short code
func (tf *TestFixtures) CreateTestLink(userID uint, originalURL string) (*models.Link, error) {
	if originalURL == "" {
		originalURL = fmt.Sprintf("https://example.com/articles/%d", rand.Intn(1000000))
	}

	code := make([]byte, utils.ShortCodeDefaultLength)
	for i := range code {
		code[i] = utils.ShortCodeAlphabet[rand.Intn(len(utils.ShortCodeAlphabet))]
	}

	link := &models.Link{
		UserID:      userID,
		OriginalURL: originalURL,
		ShortCode:   string(code),
	}

	err := tf.DB.DB.Create(link).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test link: %w", err)
	}

	return link, nil
}

// CreateTestClickStat creates a click record for the given link
func (tf *TestFixtures) CreateTestClickStat(linkID uint) (*models.ClickStat, error) {
	stat := &models.ClickStat{
		LinkID:         linkID,
		IP:             utils.ToPtr("203.0.113.9"),
		Region:         utils.ToPtr("Germany, Berlin"),
		Browser:        utils.ToPtr("Chrome"),
		BrowserVersion: utils.ToPtr("126.0.0.0"),
		OS:             utils.ToPtr("Windows"),
		UserAgent:      utils.ToPtr("Mozilla/5.0 (Windows NT 10.0; Win64; x64)"),
	}

	err := tf.DB.DB.Create(stat).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test click stat: %w", err)
	}

	return stat, nil
}

func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for the given user
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}

	err = tf.DB.DB.Create(session).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}
