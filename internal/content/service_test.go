package content

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Destination{}, &TourService{}, &Event{}, &BlogPost{}))
	return db
}

func TestService_Destinations(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db))

	t.Run("列表按名称排序", func(t *testing.T) {
		items, err := svc.ListDestinations(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Argentina", items[0].Name)
	})

	t.Run("按slug查询", func(t *testing.T) {
		item, err := svc.GetDestination(ctx, "panama")
		require.NoError(t, err)
		assert.Equal(t, "Panama", item.Name)

		var details []string
		require.NoError(t, json.Unmarshal(item.Details, &details))
		assert.NotEmpty(t, details)
	})

	t.Run("不存在的slug返回未找到", func(t *testing.T) {
		_, err := svc.GetDestination(ctx, "atlantis")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("重复seed不重复写入", func(t *testing.T) {
		require.NoError(t, Seed(ctx, db))
		items, err := svc.ListDestinations(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})
}

func TestService_Posts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.Create(&[]BlogPost{
		{Slug: "older", Title: "Older", PublishedAt: now.Add(-48 * time.Hour)},
		{Slug: "newer", Title: "Newer", PublishedAt: now},
		{Slug: "draft", Title: "Draft", Draft: true, PublishedAt: now},
	}).Error)

	t.Run("列表按发布时间降序且排除草稿", func(t *testing.T) {
		posts, err := svc.ListPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "newer", posts[0].Slug)
	})

	t.Run("草稿不能按slug访问", func(t *testing.T) {
		_, err := svc.GetPost(ctx, "draft")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_BuildSitemap(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db))
	require.NoError(t, db.Create(&BlogPost{Slug: "hello", Title: "Hello", PublishedAt: time.Now()}).Error)

	out, err := svc.BuildSitemap(ctx, "https://example.com/")
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "<?xml")
	assert.Contains(t, s, "<loc>https://example.com/</loc>")
	assert.Contains(t, s, "<loc>https://example.com/destinations/panama</loc>")
	assert.Contains(t, s, "<loc>https://example.com/mice</loc>")
	assert.Contains(t, s, "<loc>https://example.com/blog/hello</loc>")
}

func TestService_BuildFeed(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	tags, _ := json.Marshal([]string{"travel"})
	require.NoError(t, db.Create(&BlogPost{
		Slug: "hello", Title: "Hello", Excerpt: "First post",
		Tags: tags, PublishedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}).Error)

	out, err := svc.BuildFeed(ctx, "https://example.com", "Alexander & Troy Tours")
	require.NoError(t, err)

	var feed map[string]any
	require.NoError(t, json.Unmarshal(out, &feed))
	assert.Equal(t, "https://jsonfeed.org/version/1.1", feed["version"])
	assert.Equal(t, "Alexander & Troy Tours", feed["title"])

	items := feed["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "https://example.com/blog/hello", first["url"])
	assert.Contains(t, first["date_published"], "2026-01-02")
}
