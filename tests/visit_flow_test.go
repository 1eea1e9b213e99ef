package tests

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rezashm/linkdrop/app/services"
	businessflow "github.com/rezashm/linkdrop/business_flow"
	"github.com/rezashm/linkdrop/models"
	"github.com/rezashm/linkdrop/repository"
	testingutil "github.com/rezashm/linkdrop/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		// Initialize repositories
		linkRepo := repository.NewLinkRepository(testDB.DB)
		clickStatRepo := repository.NewClickStatRepository(testDB.DB)

		// Initialize services
		geoService := services.NewMockGeoIPService()
		geoService.Regions["203.0.113.9"] = "Germany, Berlin"

		log := slog.New(slog.NewTextHandler(io.Discard, nil))

		// Initialize business flow
		visitFlow := businessflow.NewVisitFlow(
			linkRepo,
			clickStatRepo,
			geoService,
			services.NewNoopLinkCache(),
			log,
		)

		// waitForClicks polls until the detached click logger has persisted
		// the expected number of rows
		waitForClicks := func(t *testing.T, linkID uint, want int) []*models.ClickStat {
			t.Helper()
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				stats, err := clickStatRepo.ListByLink(context.Background(), linkID)
				require.NoError(t, err)
				if len(stats) >= want {
					return stats
				}
				time.Sleep(50 * time.Millisecond)
			}
			t.Fatalf("expected %d click stats for link %d before deadline", want, linkID)
			return nil
		}

		t.Run("ResolveReturnsOriginalURL", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "https://example.com/destination")
			require.NoError(t, err)

			metadata := businessflow.NewClientMetadata("203.0.113.9", "")
			originalURL, err := visitFlow.Visit(context.Background(), link.ShortCode, metadata)
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/destination", originalURL)
		})

		t.Run("UnknownCodeNotFound", func(t *testing.T) {
			metadata := businessflow.NewClientMetadata("203.0.113.9", "")
			_, err := visitFlow.Visit(context.Background(), "zzzzzzzz", metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("EmptyCodeRejected", func(t *testing.T) {
			metadata := businessflow.NewClientMetadata("203.0.113.9", "")
			_, err := visitFlow.Visit(context.Background(), "", metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsShortCodeRequired(err))
		})

		t.Run("ClickIsRecordedWithContext", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "https://example.com/tracked")
			require.NoError(t, err)

			chromeUA := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
			metadata := businessflow.NewClientMetadata("203.0.113.9", chromeUA)

			_, err = visitFlow.Visit(context.Background(), link.ShortCode, metadata)
			require.NoError(t, err)

			stats := waitForClicks(t, link.ID, 1)
			stat := stats[0]
			require.NotNil(t, stat.IP)
			assert.Equal(t, "203.0.113.9", *stat.IP)
			require.NotNil(t, stat.Region)
			assert.Equal(t, "Germany, Berlin", *stat.Region)
			require.NotNil(t, stat.Browser)
			assert.Equal(t, "Chrome", *stat.Browser)
			require.NotNil(t, stat.OS)
			assert.Equal(t, "Windows 10", *stat.OS)
		})

		t.Run("UnparsableAgentRecordedAsUnknown", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "https://example.com/opaque")
			require.NoError(t, err)

			metadata := businessflow.NewClientMetadata("198.51.100.7", "curl/8.0")
			_, err = visitFlow.Visit(context.Background(), link.ShortCode, metadata)
			require.NoError(t, err)

			stats := waitForClicks(t, link.ID, 1)
			stat := stats[0]
			require.NotNil(t, stat.OS)
			assert.Equal(t, "Unknown", *stat.OS)
			require.NotNil(t, stat.Region)
			assert.Equal(t, "Unknown", *stat.Region)
		})

		t.Run("ForwardedForPreferredOverPeerAddress", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "https://example.com/proxied")
			require.NoError(t, err)

			metadata := businessflow.NewClientMetadata("10.0.0.1", "")
			metadata.SetForwardedFor("203.0.113.9, 10.0.0.1")

			_, err = visitFlow.Visit(context.Background(), link.ShortCode, metadata)
			require.NoError(t, err)

			stats := waitForClicks(t, link.ID, 1)
			require.NotNil(t, stats[0].IP)
			assert.Equal(t, "203.0.113.9", *stats[0].IP)
		})

		return nil
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
}
