package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutoPostAPI/models"
)

func TestCountPostsByStatus(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, COUNT(*) FROM posts GROUP BY status`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("published", 8).
			AddRow("draft", 3))

	counts, err := d.CountPostsByStatus()
	require.NoError(t, err)
	assert.Equal(t, 8, counts[models.StatusPublished])
	assert.Equal(t, 3, counts[models.StatusDraft])
	assert.Zero(t, counts[models.StatusArchived])
}

func TestCountPostsByCategory(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT category, COUNT(*) FROM posts GROUP BY category`)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("vehicles", 4).
			AddRow("electronics", 2))

	counts, err := d.CountPostsByCategory()
	require.NoError(t, err)
	assert.Equal(t, 4, counts[models.CategoryVehicles])
	assert.Equal(t, 2, counts[models.CategoryElectronics])
}

func TestPostsPerDay(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectQuery(`SELECT to_char`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2026-08-29", 2).
			AddRow("2026-08-30", 5))

	counts, err := d.PostsPerDay(7)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2026-08-29": 2, "2026-08-30": 5}, counts)
}

func TestGetPostStats(t *testing.T) {
	d, mock := newMockDatabase(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"count", "fb_count", "images", "avg_price", "recent",
		}).AddRow(12, 7, 20, 42.5, 4))

	stats, err := d.GetPostStats()
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalPosts)
	assert.Equal(t, 7, stats.FacebookPosted)
	assert.Equal(t, 20, stats.TotalImages)
	assert.Equal(t, 42.5, stats.AveragePrice)
	assert.Equal(t, 4, stats.RecentPosts7Days)
}

func TestGetRecentPosts(t *testing.T) {
	d, mock := newMockDatabase(t)
	want := samplePost()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT `+postColumns+` FROM posts ORDER BY updated_at DESC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(postRows(want))

	posts, err := d.GetRecentPosts(10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, want.ID, posts[0].ID)
}
