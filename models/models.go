package models

import (
	"fmt"
	"strings"
	"time"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusScheduled PostStatus = "scheduled"
	StatusArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusArchived:
		return true
	}
	return false
}

type Category string

const (
	CategoryVehicles                Category = "vehicles"
	CategoryPropertyRentals         Category = "property-rentals"
	CategoryApparel                 Category = "apparel"
	CategoryElectronics             Category = "electronics"
	CategoryEntertainment           Category = "entertainment"
	CategoryFamily                  Category = "family"
	CategoryGardenOutdoor           Category = "garden-outdoor"
	CategoryHobbies                 Category = "hobbies"
	CategoryHomeGoods               Category = "home-goods"
	CategoryHomeImprovementSupplies Category = "home-improvement-supplies"
	CategoryHomeSales               Category = "home-sales"
	CategoryMusicalInstruments      Category = "musical-instruments"
	CategoryOfficeSupplies          Category = "office-supplies"
	CategoryPetSupplies             Category = "pet-supplies"
	CategorySportingGoods           Category = "sporting-goods"
	CategoryToysGames               Category = "toys-games"
	CategoryOther                   Category = "other"
)

var Categories = []Category{
	CategoryVehicles, CategoryPropertyRentals, CategoryApparel,
	CategoryElectronics, CategoryEntertainment, CategoryFamily,
	CategoryGardenOutdoor, CategoryHobbies, CategoryHomeGoods,
	CategoryHomeImprovementSupplies, CategoryHomeSales,
	CategoryMusicalInstruments, CategoryOfficeSupplies,
	CategoryPetSupplies, CategorySportingGoods, CategoryToysGames,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Image struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Post struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	Category       Category   `json:"category"`
	Location       string     `json:"location"`
	Status         PostStatus `json:"status"`
	Images         []Image    `json:"images"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	FacebookPostID *string    `json:"facebook_post_id,omitempty"`
}

// ValidationError marks a request-payload error so the HTTP layer can
// answer 422 instead of a generic failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type PostCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Category    Category   `json:"category"`
	Location    string     `json:"location"`
	Status      PostStatus `json:"status,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// Validate trims free-text fields and checks the creation payload. A
// scheduled post must carry a strictly-future scheduled_at.
func (p *PostCreate) Validate(now time.Time) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Location = strings.TrimSpace(p.Location)

	if p.Title == "" || len(p.Title) > 200 {
		return &ValidationError{Field: "title", Message: "must be between 1 and 200 characters"}
	}
	if p.Description == "" || len(p.Description) > 2000 {
		return &ValidationError{Field: "description", Message: "must be between 1 and 2000 characters"}
	}
	if p.Price < 0 {
		return &ValidationError{Field: "price", Message: "must be non-negative"}
	}
	if !p.Category.Valid() {
		return &ValidationError{Field: "category", Message: "unknown category"}
	}
	if p.Location == "" || len(p.Location) > 100 {
		return &ValidationError{Field: "location", Message: "must be between 1 and 100 characters"}
	}
	if p.Status != "" && !p.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status"}
	}
	if p.Status == StatusScheduled {
		if p.ScheduledAt == nil {
			return &ValidationError{Field: "scheduled_at", Message: "must be set when status is 'scheduled'"}
		}
		if !p.ScheduledAt.After(now) {
			return &ValidationError{Field: "scheduled_at", Message: "must be in the future"}
		}
	}
	return nil
}

// PostUpdate carries a partial update; nil fields are left untouched.
type PostUpdate struct {
	Title          *string     `json:"title,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Price          *float64    `json:"price,omitempty"`
	Category       *Category   `json:"category,omitempty"`
	Location       *string     `json:"location,omitempty"`
	Status         *PostStatus `json:"status,omitempty"`
	ScheduledAt    *time.Time  `json:"scheduled_at,omitempty"`
	FacebookPostID *string     `json:"facebook_post_id,omitempty"`

	// ClearScheduledAt forces scheduled_at to NULL, used when a
	// scheduled post is cancelled back to draft.
	ClearScheduledAt bool `json:"-"`
}

func (u *PostUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.Location == nil && u.Status == nil &&
		u.ScheduledAt == nil && u.FacebookPostID == nil && !u.ClearScheduledAt
}

func (u *PostUpdate) Validate() error {
	if u.Title != nil {
		*u.Title = strings.TrimSpace(*u.Title)
		if *u.Title == "" || len(*u.Title) > 200 {
			return &ValidationError{Field: "title", Message: "must be between 1 and 200 characters"}
		}
	}
	if u.Description != nil {
		*u.Description = strings.TrimSpace(*u.Description)
		if *u.Description == "" || len(*u.Description) > 2000 {
			return &ValidationError{Field: "description", Message: "must be between 1 and 2000 characters"}
		}
	}
	if u.Price != nil && *u.Price < 0 {
		return &ValidationError{Field: "price", Message: "must be non-negative"}
	}
	if u.Category != nil && !u.Category.Valid() {
		return &ValidationError{Field: "category", Message: "unknown category"}
	}
	if u.Location != nil {
		*u.Location = strings.TrimSpace(*u.Location)
		if *u.Location == "" || len(*u.Location) > 100 {
			return &ValidationError{Field: "location", Message: "must be between 1 and 100 characters"}
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status"}
	}
	return nil
}

type PostFilter struct {
	Category Category
	Status   PostStatus
	Location string
	MinPrice *float64
	MaxPrice *float64
}

func (f *PostFilter) Validate() error {
	if f.Category != "" && !f.Category.Valid() {
		return &ValidationError{Field: "category", Message: "unknown category"}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status"}
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return &ValidationError{Field: "min_price", Message: "must be non-negative"}
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return &ValidationError{Field: "max_price", Message: "must be non-negative"}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MaxPrice < *f.MinPrice {
		return &ValidationError{Field: "max_price", Message: "must be greater than or equal to min_price"}
	}
	return nil
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type Pagination struct {
	Skip  int
	Limit int
}

// Normalize clamps pagination to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

type PostList struct {
	Posts      []*Post `json:"posts"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
}

type ScheduleRequest struct {
	ScheduledAt         time.Time `json:"scheduled_at"`
	FacebookAccessToken string    `json:"facebook_access_token,omitempty"`
}

// ScheduledJob is the read-only view of a pending publication job.
type ScheduledJob struct {
	PostID      string    `json:"post_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	JobID       string    `json:"job_id"`
}

// PublishResult is the uniform outcome of one external publish attempt.
type PublishResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PostID  string `json:"post_id,omitempty"`
}

type PostStats struct {
	TotalPosts       int     `json:"total_posts"`
	FacebookPosted   int     `json:"facebook_posted"`
	TotalImages      int     `json:"total_images"`
	AveragePrice     float64 `json:"average_price"`
	RecentPosts7Days int     `json:"recent_posts_7_days"`
}

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
