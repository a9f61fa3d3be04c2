package handlers

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"AutoPostAPI/models"
	"AutoPostAPI/utils"
)

func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.GetPostStats()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	byStatus, err := h.analytics.CountPostsByStatus()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	published := byStatus[models.StatusPublished]

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total_posts":           stats.TotalPosts,
		"published_posts":       published,
		"scheduled_posts":       byStatus[models.StatusScheduled],
		"draft_posts":           byStatus[models.StatusDraft],
		"archived_posts":        byStatus[models.StatusArchived],
		"success_rate":          successRate(stats.FacebookPosted, published),
		"total_images":          stats.TotalImages,
		"recent_posts_7_days":   stats.RecentPosts7Days,
		"facebook_posted_count": stats.FacebookPosted,
		"average_price":         math.Round(stats.AveragePrice*100) / 100,
	})
}

func (h *Handler) GetRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	posts, err := h.analytics.GetRecentPosts(limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	now := time.Now().UTC()
	activities := make([]map[string]interface{}, 0, len(posts))
	for _, post := range posts {
		action, label := activityForStatus(post.Status)
		activities = append(activities, map[string]interface{}{
			"id":         post.ID,
			"action":     action,
			"post_title": post.Title,
			"time":       timeAgo(post.UpdatedAt, now),
			"status":     label,
			"created_at": post.CreatedAt,
			"updated_at": post.UpdatedAt,
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, activities)
}

func (h *Handler) GetCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analytics.CountPostsByCategory()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	distribution := make([]map[string]interface{}, 0, len(counts))
	for category, count := range counts {
		distribution = append(distribution, map[string]interface{}{
			"category": category,
			"count":    count,
		})
	}
	// Largest categories first; ties sort by name for stable output.
	sort.Slice(distribution, func(i, j int) bool {
		ci, cj := distribution[i]["count"].(int), distribution[j]["count"].(int)
		if ci != cj {
			return ci > cj
		}
		return distribution[i]["category"].(models.Category) < distribution[j]["category"].(models.Category)
	})

	utils.RespondWithJSON(w, http.StatusOK, distribution)
}

func (h *Handler) GetStatusDistribution(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analytics.CountPostsByStatus()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	statuses := []models.PostStatus{
		models.StatusPublished, models.StatusScheduled,
		models.StatusDraft, models.StatusArchived,
	}
	distribution := make([]map[string]interface{}, 0, len(statuses))
	for _, status := range statuses {
		distribution = append(distribution, map[string]interface{}{
			"status": status,
			"count":  counts[status],
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, distribution)
}

func (h *Handler) GetPostingTrend(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, h.postsTrend(days))
}

func (h *Handler) GetAnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.GetPostStats()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	byStatus, err := h.analytics.CountPostsByStatus()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	published := byStatus[models.StatusPublished]
	pendingFacebook := published - stats.FacebookPosted
	if pendingFacebook < 0 {
		pendingFacebook = 0
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total_posts":      stats.TotalPosts,
		"published":        published,
		"scheduled":        byStatus[models.StatusScheduled],
		"drafts":           byStatus[models.StatusDraft],
		"archived":         byStatus[models.StatusArchived],
		"facebook_posted":  stats.FacebookPosted,
		"pending_facebook": pendingFacebook,
		"success_rate":     successRate(stats.FacebookPosted, published),
		"total_images":     stats.TotalImages,
		"average_price":    math.Round(stats.AveragePrice*100) / 100,
	})
}

func (h *Handler) postsTrend(days int) []map[string]interface{} {
	counts, err := h.analytics.PostsPerDay(days)
	if err != nil {
		utils.Errorf("Error fetching posting trend: %v", err)
		counts = map[string]int{}
	}

	today := time.Now().UTC()
	trend := make([]map[string]interface{}, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		trend = append(trend, map[string]interface{}{
			"date":  day,
			"count": counts[day],
		})
	}
	return trend
}

// successRate is the share of published posts that made it to
// Facebook, as a percentage rounded to one decimal.
func successRate(facebookPosted, published int) float64 {
	if published == 0 {
		return 0
	}
	return math.Round(float64(facebookPosted)/float64(published)*1000) / 10
}

func activityForStatus(status models.PostStatus) (string, string) {
	switch status {
	case models.StatusPublished:
		return "Post published", "success"
	case models.StatusScheduled:
		return "Post scheduled", "pending"
	case models.StatusDraft:
		return "Draft saved", "draft"
	case models.StatusArchived:
		return "Post archived", "archived"
	}
	return "Unknown action", "unknown"
}

func timeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff >= 24*time.Hour:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	case diff >= time.Hour:
		hours := int(diff.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case diff >= time.Minute:
		minutes := int(diff.Minutes())
		return fmt.Sprintf("%d minute%s ago", minutes, plural(minutes))
	}
	return "Just now"
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
