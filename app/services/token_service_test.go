// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name           string
		accessTokenTTL time.Duration
		issuer         string
		audience       string
		useRSAKeys     bool
		privateKeyPEM  string
		publicKeyPEM   string
		secretKey      string
		expectError    bool
	}{
		{
			name:           "valid symmetric key configuration",
			accessTokenTTL: 24 * time.Hour,
			issuer:         "test-issuer",
			audience:       "test-audience",
			useRSAKeys:     false,
			secretKey:      "test-secret-key-for-jwt-signing-32-chars",
			expectError:    false,
		},
		{
			name:           "missing secret key",
			accessTokenTTL: 24 * time.Hour,
			issuer:         "test-issuer",
			audience:       "test-audience",
			useRSAKeys:     false,
			secretKey:      "",
			expectError:    true,
		},
		{
			name:           "RSA mode without keys",
			accessTokenTTL: 24 * time.Hour,
			issuer:         "test-issuer",
			audience:       "test-audience",
			useRSAKeys:     true,
			expectError:    true,
		},
		{
			name:           "empty issuer and audience",
			accessTokenTTL: 24 * time.Hour,
			issuer:         "",
			audience:       "",
			useRSAKeys:     false,
			secretKey:      "test-secret-key-for-jwt-signing-32-chars",
			expectError:    false, // Should not error, just use empty strings
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				tt.accessTokenTTL,
				tt.issuer,
				tt.audience,
				tt.useRSAKeys,
				tt.privateKeyPEM,
				tt.publicKeyPEM,
				tt.secretKey,
			)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateAccessToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	tests := []struct {
		name   string
		userID uint
		email  string
	}{
		{
			name:   "valid user",
			userID: 123,
			email:  "user@example.com",
		},
		{
			name:   "zero user ID",
			userID: 0,
			email:  "zero@example.com",
		},
		{
			name:   "large user ID",
			userID: 999999999,
			email:  "large@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.GenerateAccessToken(tt.userID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			// Tokens are standard JWTs (header starts with "eyJ")
			assert.Contains(t, token, "eyJ")
		})
	}
}

func TestValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, err := service.GenerateAccessToken(123, "user@example.com")
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		expectError bool
	}{
		{
			name:        "valid access token",
			token:       accessToken,
			expectError: false,
		},
		{
			name:        "empty token",
			token:       "",
			expectError: true,
		},
		{
			name:        "invalid token format",
			token:       "invalid.token.format",
			expectError: true,
		},
		{
			name:        "malformed token",
			token:       "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, claims)
				assert.Equal(t, uint(123), claims.UserID)
				assert.Equal(t, "user@example.com", claims.Email)
				assert.NotEmpty(t, claims.TokenID)
				assert.False(t, claims.IssuedAt.IsZero())
				assert.False(t, claims.ExpiresAt.IsZero())
				assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
			}
		})
	}
}

func TestTokenExpiration(t *testing.T) {
	// Create service with very short TTL for testing expiration
	service, err := NewTokenService(1*time.Second, "test-issuer", "test-audience", false, "", "", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken(123, "user@example.com")
	require.NoError(t, err)

	// Initially, the token should be valid
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)

	// Wait for the token to expire
	time.Sleep(2 * time.Second)

	claims, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestTokenSecurity(t *testing.T) {
	// Create services with different keys
	service1, err := NewTokenService(24*time.Hour, "issuer1", "audience1", false, "", "", "test-secret-key-1-for-jwt-signing-32-chars")
	require.NoError(t, err)

	service2, err := NewTokenService(24*time.Hour, "issuer2", "audience2", false, "", "", "test-secret-key-2-for-jwt-signing-32-chars")
	require.NoError(t, err)

	token1, err := service1.GenerateAccessToken(123, "user@example.com")
	require.NoError(t, err)

	token2, err := service2.GenerateAccessToken(123, "user@example.com")
	require.NoError(t, err)

	// Tokens should be different even with the same user
	assert.NotEqual(t, token1, token2)

	// Tokens from one service should not be valid in another service
	claims, err := service1.ValidateToken(token2)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = service2.ValidateToken(token1)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	const numGoroutines = 10
	tokens := make(chan string, numGoroutines)
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(userID uint) {
			token, err := service.GenerateAccessToken(userID, "user@example.com")
			if err != nil {
				errs <- err
				return
			}
			tokens <- token
		}(uint(i + 1))
	}

	// Collect results
	generatedTokens := make(map[string]bool)
	for i := 0; i < numGoroutines; i++ {
		select {
		case token := <-tokens:
			assert.NotEmpty(t, token)
			assert.False(t, generatedTokens[token], "Duplicate token generated")
			generatedTokens[token] = true
		case err := <-errs:
			t.Errorf("Error generating token: %v", err)
		}
	}

	assert.Equal(t, numGoroutines, len(generatedTokens))
}

func BenchmarkGenerateAccessToken(b *testing.B) {
	service, err := createTestTokenService()
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := service.GenerateAccessToken(uint(i), "user@example.com")
		require.NoError(b, err)
	}
}

func BenchmarkValidateToken(b *testing.B) {
	service, err := createTestTokenService()
	require.NoError(b, err)

	token, err := service.GenerateAccessToken(123, "user@example.com")
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := service.ValidateToken(token)
		require.NoError(b, err)
	}
}
