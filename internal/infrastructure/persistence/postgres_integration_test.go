//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/creatorhub/backend/internal/domain/creator"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/domain/report"
	"github.com/creatorhub/backend/internal/infrastructure/migration"
)

// newPostgresDB starts a disposable postgres container and applies migrations/
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("creatorhub_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	_, file, _, _ := runtime.Caller(0)
	m, err := migration.New(sqlDB, filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_LedgerUpsertAndReports(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	ledger := NewGormLedgerRepository(db)
	rec := earnings.Record{
		CreatorID:  "nicki",
		Platform:   earnings.PlatformLTK,
		Period:     earnings.MonthPeriod(2025, time.March),
		Revenue:    decimal.RequireFromString("120.50"),
		Commission: decimal.RequireFromString("12.05"),
		Clicks:     40,
		Orders:     3,
		Status:     earnings.StatusOpen,
		RawPayload: `{"range":"30"}`,
		SyncedAt:   time.Now().UTC(),
	}
	n, err := ledger.Upsert(ctx, []earnings.Record{rec}, earnings.ConflictUpdate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rec.Revenue = decimal.RequireFromString("130.00")
	_, err = ledger.Upsert(ctx, []earnings.Record{rec}, earnings.ConflictUpdate)
	require.NoError(t, err)

	n, err = ledger.Upsert(ctx, []earnings.Record{rec}, earnings.ConflictIgnore)
	require.NoError(t, err)
	assert.Zero(t, n)

	summary, err := NewGormEarningsReportRepository(db).Summary(ctx, "nicki", time.Now().UTC().AddDate(0, 0, -report.DefaultDays))
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "130.00", summary[0].TotalRevenue.StringFixed(2))
}

func TestPostgres_MediaUpsertAndSocialReports(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormCreatorRepository(db)

	require.NoError(t, repo.EnsureExists(ctx, creator.Creator{ID: "nicki", Username: "nicki", IsOwned: true}))
	day := earnings.Date(time.Now())
	likes := 10
	require.NoError(t, repo.InsertSnapshotIgnore(ctx, creator.Snapshot{CreatorID: "nicki", CapturedAt: day, FollowersCount: &likes}))
	require.NoError(t, repo.UpsertMedia(ctx, creator.MediaSourceOwned, []creator.MediaSnapshot{
		{CreatorID: "nicki", MediaIGID: "m1", CapturedAt: day, LikeCount: &likes, LinkURL: "https://mavely.app.link/e/x"},
	}))

	social := NewGormSocialReportRepository(db)
	summary, err := social.CreatorsSummary(ctx, nil)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	require.NotNil(t, summary[0].CapturedAt)

	posts, err := social.AttributedPosts(ctx, "nicki")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].LinkRevenue.IsZero())
}
