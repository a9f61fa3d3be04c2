package services

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"AutoPostAPI/models"
	"AutoPostAPI/utils"
)

var (
	ErrImageNotFound  = errors.New("image not found")
	ErrScheduleFailed = errors.New("failed to register publication job")
)

// PostRepository is everything the post workflow needs from the store.
type PostRepository interface {
	PostStore
	CreatePost(post *models.Post) error
	GetPosts(filter *models.PostFilter, page models.Pagination) ([]*models.Post, error)
	CountPosts(filter *models.PostFilter) (int, error)
	DeletePost(id string) error
	SetPostImages(id string, images []models.Image) (*models.Post, error)
}

// PostScheduler is the scheduling core's public surface as consumed by
// the post workflow.
type PostScheduler interface {
	SchedulePostPublication(postID string, fireAt time.Time, accessToken string) bool
	CancelScheduledPost(postID string) bool
	GetScheduledJobs() []models.ScheduledJob
}

// PostService orchestrates the post lifecycle: CRUD, the
// schedule/cancel workflow, and image management.
type PostService struct {
	repo      PostRepository
	scheduler PostScheduler
	storage   *StorageService
	now       func() time.Time
}

func NewPostService(repo PostRepository, scheduler PostScheduler, storage *StorageService) *PostService {
	return &PostService{
		repo:      repo,
		scheduler: scheduler,
		storage:   storage,
		now:       time.Now,
	}
}

func (s *PostService) CreatePost(req *models.PostCreate) (*models.Post, error) {
	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusPublished
	}

	now := s.now().UTC()
	post := &models.Post{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Location:    req.Location,
		Status:      status,
		Images:      []models.Image{},
		CreatedAt:   now,
		UpdatedAt:   now,
		ScheduledAt: req.ScheduledAt,
	}

	if err := s.repo.CreatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(id string) (*models.Post, error) {
	return s.repo.GetPost(id)
}

func (s *PostService) GetPosts(filter *models.PostFilter, page models.Pagination) (*models.PostList, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}
	page = page.Normalize()

	posts, err := s.repo.GetPosts(filter, page)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountPosts(filter)
	if err != nil {
		return nil, err
	}

	return &models.PostList{
		Posts:      posts,
		Total:      total,
		Page:       page.Skip/page.Limit + 1,
		PerPage:    page.Limit,
		TotalPages: (total + page.Limit - 1) / page.Limit,
	}, nil
}

func (s *PostService) UpdatePost(id string, update *models.PostUpdate) (*models.Post, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if update.Empty() {
		return s.repo.GetPost(id)
	}
	return s.repo.UpdatePost(id, update)
}

// DeletePost removes a post, its pending publication job, and its
// stored image files.
func (s *PostService) DeletePost(id string) error {
	post, err := s.repo.GetPost(id)
	if err != nil {
		return err
	}

	s.scheduler.CancelScheduledPost(id)

	for _, image := range post.Images {
		if err := s.storage.DeleteImage(image.Filename); err != nil {
			utils.Warnf("Failed to delete image file %s: %v", image.Filename, err)
		}
	}

	return s.repo.DeletePost(id)
}

// SchedulePost moves a post into the Scheduled state and registers its
// publication job. The fire time must be strictly in the future.
func (s *PostService) SchedulePost(id string, scheduledAt time.Time, accessToken string) (*models.Post, error) {
	if !scheduledAt.After(s.now()) {
		return nil, &models.ValidationError{Field: "scheduled_at", Message: "must be in the future"}
	}

	status := models.StatusScheduled
	post, err := s.repo.UpdatePost(id, &models.PostUpdate{
		Status:      &status,
		ScheduledAt: &scheduledAt,
	})
	if err != nil {
		return nil, err
	}

	if !s.scheduler.SchedulePostPublication(id, scheduledAt, accessToken) {
		return nil, ErrScheduleFailed
	}
	return post, nil
}

// CancelSchedule retires any pending job and resets the post to Draft
// with scheduled_at cleared. Cancelling a post with no live job still
// resets the status.
func (s *PostService) CancelSchedule(id string) (*models.Post, error) {
	s.scheduler.CancelScheduledPost(id)

	status := models.StatusDraft
	return s.repo.UpdatePost(id, &models.PostUpdate{
		Status:           &status,
		ClearScheduledAt: true,
	})
}

func (s *PostService) GetScheduledJobs() []models.ScheduledJob {
	return s.scheduler.GetScheduledJobs()
}

// AddImages stores uploaded files and attaches them to the post, up to
// the per-post cap. On any failure, files saved so far are removed.
func (s *PostService) AddImages(id string, files []*multipart.FileHeader) (*models.Post, error) {
	post, err := s.repo.GetPost(id)
	if err != nil {
		return nil, err
	}

	if len(post.Images)+len(files) > s.storage.MaxImages() {
		return nil, &models.ValidationError{
			Field:   "files",
			Message: "maximum 5 images allowed per post",
		}
	}

	saved := make([]models.Image, 0, len(files))
	cleanup := func() {
		for _, img := range saved {
			s.storage.DeleteImage(img.Filename)
		}
	}

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			cleanup()
			return nil, err
		}
		image, err := s.storage.SaveImage(file, header)
		file.Close()
		if err != nil {
			cleanup()
			return nil, err
		}
		saved = append(saved, *image)
	}

	updated, err := s.repo.SetPostImages(id, append(post.Images, saved...))
	if err != nil {
		cleanup()
		return nil, err
	}
	return updated, nil
}

// RemoveImage detaches an image from the post and best-effort deletes
// the underlying file.
func (s *PostService) RemoveImage(id, filename string) (*models.Post, error) {
	post, err := s.repo.GetPost(id)
	if err != nil {
		return nil, err
	}

	images := make([]models.Image, 0, len(post.Images))
	found := false
	for _, image := range post.Images {
		if image.Filename == filename {
			found = true
			continue
		}
		images = append(images, image)
	}
	if !found {
		return nil, ErrImageNotFound
	}

	updated, err := s.repo.SetPostImages(id, images)
	if err != nil {
		return nil, err
	}

	if err := s.storage.DeleteImage(filename); err != nil {
		utils.Warnf("Failed to delete image file %s: %v", filename, err)
	}
	return updated, nil
}
