package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"AutoPostAPI/models"
	"AutoPostAPI/utils"
)

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.PostCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	post, err := h.posts.CreatePost(&req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := &models.PostFilter{
		Category: models.Category(query.Get("category")),
		Status:   models.PostStatus(query.Get("status")),
		Location: query.Get("location"),
	}
	if v := query.Get("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid min_price")
			return
		}
		filter.MinPrice = &price
	}
	if v := query.Get("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid max_price")
			return
		}
		filter.MaxPrice = &price
	}

	page := models.Pagination{}
	if v := query.Get("skip"); v != "" {
		page.Skip, _ = strconv.Atoi(v)
	}
	if v := query.Get("limit"); v != "" {
		page.Limit, _ = strconv.Atoi(v)
	}

	list, err := h.posts.GetPosts(filter, page)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	post, err := h.posts.GetPost(postID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	var update models.PostUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	post, err := h.posts.UpdatePost(postID, &update)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	if err := h.posts.DeletePost(postID); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Post deleted successfully",
	})
}

func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	// Multipart parsing buffers up to 32 MB in memory, larger parts
	// spill to disk; per-file size limits are enforced by the storage
	// service.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "At least one file is required")
		return
	}

	post, err := h.posts.AddImages(postID, files)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	post, err := h.posts.RemoveImage(vars["id"], vars["filename"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, post)
}

func (h *Handler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	var req models.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ScheduledAt.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "scheduled_at is required")
		return
	}

	post, err := h.posts.SchedulePost(postID, req.ScheduledAt, req.FacebookAccessToken)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Post scheduled for " + req.ScheduledAt.String(),
		Data: map[string]interface{}{
			"post_id":      post.ID,
			"scheduled_at": req.ScheduledAt,
		},
	})
}

func (h *Handler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	if _, err := h.posts.CancelSchedule(postID); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Scheduled post cancelled successfully",
	})
}

func (h *Handler) GetScheduledJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.posts.GetScheduledJobs()
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}
