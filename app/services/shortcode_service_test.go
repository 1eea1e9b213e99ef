// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rezashm/linkdrop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	service := NewShortCodeService(utils.ShortCodeDefaultLength, utils.ShortCodeMaxAttempts)

	t.Run("ExactLength", func(t *testing.T) {
		for _, length := range []int{1, 6, 8, 10, 32} {
			code, err := service.Generate(length)
			require.NoError(t, err)
			assert.Len(t, code, length)
		}
	})

	t.Run("AlphabetOnly", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := service.Generate(8)
			require.NoError(t, err)
			for _, c := range code {
				assert.True(t, strings.ContainsRune(utils.ShortCodeAlphabet, c),
					"code %q contains character outside alphabet", code)
			}
		}
	})

	t.Run("InvalidLength", func(t *testing.T) {
		for _, length := range []int{0, -1} {
			_, err := service.Generate(length)
			assert.ErrorIs(t, err, ErrInvalidCodeLength)
		}
	})

	t.Run("CodesVary", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := service.Generate(8)
			require.NoError(t, err)
			seen[code] = true
		}
		// 100 draws from a 62^8 space must not collide
		assert.Len(t, seen, 100)
	})
}

func TestGenerateUnique(t *testing.T) {
	service := NewShortCodeService(utils.ShortCodeDefaultLength, utils.ShortCodeMaxAttempts)

	t.Run("ReturnsUnusedCode", func(t *testing.T) {
		code, err := service.GenerateUnique(context.Background(), func(ctx context.Context, code string) (bool, error) {
			return false, nil
		}, 8)
		require.NoError(t, err)
		assert.Len(t, code, 8)
	})

	t.Run("SkipsUsedCodes", func(t *testing.T) {
		calls := 0
		code, err := service.GenerateUnique(context.Background(), func(ctx context.Context, code string) (bool, error) {
			calls++
			return calls <= 3, nil // first three candidates are taken
		}, 8)
		require.NoError(t, err)
		assert.NotEmpty(t, code)
		assert.Equal(t, 4, calls)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		calls := 0
		_, err := service.GenerateUnique(context.Background(), func(ctx context.Context, code string) (bool, error) {
			calls++
			return true, nil // every candidate is taken
		}, 8)
		assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
		assert.Equal(t, utils.ShortCodeMaxAttempts, calls)
	})

	t.Run("PropagatesExistsError", func(t *testing.T) {
		_, err := service.GenerateUnique(context.Background(), func(ctx context.Context, code string) (bool, error) {
			return false, context.DeadlineExceeded
		}, 8)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCodeSpaceExhausted)
	})

	t.Run("HonorsCancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := service.GenerateUnique(ctx, func(ctx context.Context, code string) (bool, error) {
			return false, nil
		}, 8)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDefaultLength(t *testing.T) {
	t.Run("ConfiguredLength", func(t *testing.T) {
		service := NewShortCodeService(10, utils.ShortCodeMaxAttempts)
		assert.Equal(t, 10, service.DefaultLength())
	})

	t.Run("OutOfRangeFallsBack", func(t *testing.T) {
		for _, length := range []int{0, 5, 11, 100} {
			service := NewShortCodeService(length, utils.ShortCodeMaxAttempts)
			assert.Equal(t, utils.ShortCodeDefaultLength, service.DefaultLength())
		}
	})
}
