package handlers

import (
	"errors"
	"net/http"

	"AutoPostAPI/database"
	"AutoPostAPI/models"
	"AutoPostAPI/services"
	"AutoPostAPI/utils"
)

// AnalyticsStore provides the aggregate queries backing the dashboard
// and analytics endpoints.
type AnalyticsStore interface {
	CountPostsByStatus() (map[models.PostStatus]int, error)
	CountPostsByCategory() (map[models.Category]int, error)
	PostsPerDay(days int) (map[string]int, error)
	GetPostStats() (*models.PostStats, error)
	GetRecentPosts(limit int) ([]*models.Post, error)
}

type Handler struct {
	posts     *services.PostService
	analytics AnalyticsStore
}

func NewHandler(posts *services.PostService, analytics AnalyticsStore) *Handler {
	return &Handler{
		posts:     posts,
		analytics: analytics,
	}
}

// respondServiceError maps service-layer errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, database.ErrPostNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrImageNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Image not found")
	case errors.As(err, &validationErr):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, validationErr.Error())
	case errors.Is(err, services.ErrScheduleFailed):
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to schedule post")
	default:
		utils.Errorf("Unhandled service error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
