package database

import (
	"time"

	"AutoPostAPI/models"
)

func (d *Database) CountPostsByStatus() (map[models.PostStatus]int, error) {
	rows, err := d.DB.Query(`SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.PostStatus]int)
	for rows.Next() {
		var status models.PostStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (d *Database) CountPostsByCategory() (map[models.Category]int, error) {
	rows, err := d.DB.Query(`SELECT category, COUNT(*) FROM posts GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var category models.Category
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// PostsPerDay counts posts created per calendar day over the last N
// days, keyed by YYYY-MM-DD. Days without posts are absent; callers
// fill the gaps.
func (d *Database) PostsPerDay(days int) (map[string]int, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	query := `SELECT to_char(created_at, 'YYYY-MM-DD'), COUNT(*)
			  FROM posts WHERE created_at >= $1
			  GROUP BY 1`

	rows, err := d.DB.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[day] = count
	}
	return counts, rows.Err()
}

func (d *Database) GetPostStats() (*models.PostStats, error) {
	query := `SELECT COUNT(*),
			  COUNT(facebook_post_id),
			  COALESCE(SUM(jsonb_array_length(images)), 0),
			  COALESCE(AVG(price) FILTER (WHERE price > 0), 0),
			  COUNT(*) FILTER (WHERE created_at > $1)
			  FROM posts`

	sevenDaysAgo := time.Now().UTC().AddDate(0, 0, -7)

	stats := &models.PostStats{}
	err := d.DB.QueryRow(query, sevenDaysAgo).Scan(&stats.TotalPosts,
		&stats.FacebookPosted, &stats.TotalImages, &stats.AveragePrice,
		&stats.RecentPosts7Days)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
