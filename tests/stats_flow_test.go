package tests

import (
	"bytes"
	"context"
	"testing"

	businessflow "github.com/rezashm/linkdrop/business_flow"
	"github.com/rezashm/linkdrop/repository"
	testingutil "github.com/rezashm/linkdrop/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStatsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		// Initialize repositories
		linkRepo := repository.NewLinkRepository(testDB.DB)
		clickStatRepo := repository.NewClickStatRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		// Initialize business flow
		statsFlow := businessflow.NewStatsFlow(
			linkRepo,
			clickStatRepo,
			auditRepo,
		)

		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("GetStats", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "")
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				_, err := fixtures.CreateTestClickStat(link.ID)
				require.NoError(t, err)
			}

			result, err := statsFlow.GetStats(context.Background(), user.ID, link.ShortCode)
			require.NoError(t, err)
			assert.Equal(t, link.ShortCode, result.ShortCode)
			assert.Equal(t, 3, result.TotalCount)
			require.Len(t, result.Stats, 3)
			assert.Equal(t, "203.0.113.9", result.Stats[0].IP)
			assert.Equal(t, "Germany, Berlin", result.Stats[0].Region)
			assert.Equal(t, "Chrome", result.Stats[0].Browser)
			assert.Equal(t, "Windows", result.Stats[0].OS)
			assert.NotEmpty(t, result.Stats[0].ClickedAt)
		})

		t.Run("GetStatsEmptyLink", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "")
			require.NoError(t, err)

			result, err := statsFlow.GetStats(context.Background(), user.ID, link.ShortCode)
			require.NoError(t, err)
			assert.Zero(t, result.TotalCount)
			assert.Empty(t, result.Stats)
		})

		t.Run("GetStatsUnknownCode", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = statsFlow.GetStats(context.Background(), user.ID, "zzzzzzzz")
			require.Error(t, err)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("GetStatsForeignLinkDenied", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			intruder, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(owner.ID, "")
			require.NoError(t, err)

			_, err = statsFlow.GetStats(context.Background(), intruder.ID, link.ShortCode)
			require.Error(t, err)
			assert.True(t, businessflow.IsLinkAccessDenied(err))

			var bizErr *businessflow.BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "STATS_ACCESS_DENIED", bizErr.Code)
		})

		t.Run("ExportStats", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(user.ID, "")
			require.NoError(t, err)

			for i := 0; i < 2; i++ {
				_, err := fixtures.CreateTestClickStat(link.ID)
				require.NoError(t, err)
			}

			filename, content, err := statsFlow.ExportStats(context.Background(), user.ID, link.ShortCode, metadata)
			require.NoError(t, err)
			assert.Equal(t, "clicks_"+link.ShortCode+".xlsx", filename)
			require.NotEmpty(t, content)

			// Re-open the workbook and check the exported rows
			xl, err := excelize.OpenReader(bytes.NewReader(content))
			require.NoError(t, err)
			defer xl.Close()

			rows, err := xl.GetRows(link.ShortCode)
			require.NoError(t, err)
			require.Len(t, rows, 3) // header plus two clicks
			assert.Equal(t, []string{"id", "ip", "region", "browser", "browser_version", "os", "clicked_at"}, rows[0])
			assert.Equal(t, "203.0.113.9", rows[1][1])
			assert.Equal(t, "Chrome", rows[1][3])
		})

		t.Run("ExportStatsForeignLinkDenied", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			intruder, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			link, err := fixtures.CreateTestLink(owner.ID, "")
			require.NoError(t, err)

			_, _, err = statsFlow.ExportStats(context.Background(), intruder.ID, link.ShortCode, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsLinkAccessDenied(err))
		})

		return nil
	})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
}
