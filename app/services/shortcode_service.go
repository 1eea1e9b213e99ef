// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/rezashm/linkdrop/utils"
)

// Short code error constants
var (
	ErrInvalidCodeLength  = errors.New("invalid short code length")
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")
)

// ExistsFunc reports whether a candidate code is already in use.
// It is supplied by the caller and typically queries persistent storage.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// ShortCodeService generates URL-path-safe random short codes
type ShortCodeService interface {
	Generate(length int) (string, error)
	GenerateUnique(ctx context.Context, exists ExistsFunc, length int) (string, error)
	DefaultLength() int
}

// ShortCodeServiceImpl implements ShortCodeService
type ShortCodeServiceImpl struct {
	alphabet      string
	defaultLength int
	maxAttempts   int
}

// NewShortCodeService creates a new short code service
func NewShortCodeService(defaultLength, maxAttempts int) ShortCodeService {
	if defaultLength < utils.ShortCodeMinLength || defaultLength > utils.ShortCodeMaxLength {
		defaultLength = utils.ShortCodeDefaultLength
	}
	if maxAttempts <= 0 {
		maxAttempts = utils.ShortCodeMaxAttempts
	}
	return &ShortCodeServiceImpl{
		alphabet:      utils.ShortCodeAlphabet,
		defaultLength: defaultLength,
		maxAttempts:   maxAttempts,
	}
}

// DefaultLength returns the configured code length
func (s *ShortCodeServiceImpl) DefaultLength() int {
	return s.defaultLength
}

// Generate produces a random code of exactly the given length.
// Bytes come from crypto/rand so codes resist enumeration; collision
// handling is the caller's responsibility.
func (s *ShortCodeServiceImpl) Generate(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidCodeLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = s.alphabet[int(b)%len(s.alphabet)]
	}
	return string(out), nil
}

// GenerateUnique generates candidates until the exists predicate clears one.
// Attempts are bounded; on exhaustion it fails with ErrCodeSpaceExhausted
// instead of looping forever. The predicate and the eventual insert are not
// atomic, so callers must still treat a storage unique violation as a signal
// to call this again.
func (s *ShortCodeServiceImpl) GenerateUnique(ctx context.Context, exists ExistsFunc, length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidCodeLength
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := s.Generate(length)
		if err != nil {
			return "", err
		}

		inUse, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code existence: %w", err)
		}
		if !inUse {
			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}
