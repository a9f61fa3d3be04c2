package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"AutoPostAPI/models"
)

var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, title, description, price, category, location, status, images, scheduled_at, facebook_post_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	var images []byte
	var scheduledAt sql.NullTime
	var facebookPostID sql.NullString

	err := row.Scan(&post.ID, &post.Title, &post.Description, &post.Price,
		&post.Category, &post.Location, &post.Status, &images,
		&scheduledAt, &facebookPostID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &post.Images); err != nil {
		return nil, fmt.Errorf("decoding images for post %s: %w", post.ID, err)
	}
	if post.Images == nil {
		post.Images = []models.Image{}
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		post.ScheduledAt = &t
	}
	if facebookPostID.Valid {
		id := facebookPostID.String
		post.FacebookPostID = &id
	}

	return post, nil
}

func (d *Database) CreatePost(post *models.Post) error {
	if post.Images == nil {
		post.Images = []models.Image{}
	}
	images, err := json.Marshal(post.Images)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (id, title, description, price, category, location, status, images, scheduled_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = d.DB.Exec(query, post.ID, post.Title, post.Description, post.Price,
		post.Category, post.Location, post.Status, images, post.ScheduledAt,
		post.CreatedAt, post.UpdatedAt)
	return err
}

func (d *Database) GetPost(id string) (*models.Post, error) {
	row := d.DB.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// buildFilter turns a PostFilter into a WHERE clause and its arguments.
func buildFilter(filter *models.PostFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}
	add := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Location != "" {
		add("location ILIKE $%d", "%"+filter.Location+"%")
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (d *Database) GetPosts(filter *models.PostFilter, page models.Pagination) ([]*models.Post, error) {
	where, args := buildFilter(filter)
	args = append(args, page.Limit, page.Skip)

	query := fmt.Sprintf(`SELECT %s FROM posts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)-1, len(args))

	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (d *Database) CountPosts(filter *models.PostFilter) (int, error) {
	where, args := buildFilter(filter)

	var count int
	err := d.DB.QueryRow(`SELECT COUNT(*) FROM posts`+where, args...).Scan(&count)
	return count, err
}

// UpdatePost applies a partial update and returns the updated row.
func (d *Database) UpdatePost(id string, update *models.PostUpdate) (*models.Post, error) {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.Price != nil {
		set("price", *update.Price)
	}
	if update.Category != nil {
		set("category", *update.Category)
	}
	if update.Location != nil {
		set("location", *update.Location)
	}
	if update.Status != nil {
		set("status", *update.Status)
	}
	if update.ScheduledAt != nil {
		set("scheduled_at", *update.ScheduledAt)
	} else if update.ClearScheduledAt {
		sets = append(sets, "scheduled_at = NULL")
	}
	if update.FacebookPostID != nil {
		set("facebook_post_id", *update.FacebookPostID)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns)

	row := d.DB.QueryRow(query, args...)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (d *Database) DeletePost(id string) error {
	result, err := d.DB.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// GetDueScheduledPosts returns posts that are scheduled and whose fire
// time has passed. The reconciliation sweep feeds on this.
func (d *Database) GetDueScheduledPosts(now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND scheduled_at <= $2`

	rows, err := d.DB.Query(query, models.StatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// SetPostImages replaces the post's image list.
func (d *Database) SetPostImages(id string, images []models.Image) (*models.Post, error) {
	if images == nil {
		images = []models.Image{}
	}
	encoded, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}

	query := `UPDATE posts SET images = $1, updated_at = $2 WHERE id = $3 RETURNING ` + postColumns

	row := d.DB.QueryRow(query, encoded, time.Now().UTC(), id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// GetRecentPosts returns the most recently touched posts, newest first.
func (d *Database) GetRecentPosts(limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY updated_at DESC LIMIT $1`

	rows, err := d.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]*models.Post, error) {
	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
