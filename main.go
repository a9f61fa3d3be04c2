package main

import (
	"net/http"

	"AutoPostAPI/config"
	"AutoPostAPI/database"
	"AutoPostAPI/handlers"
	"AutoPostAPI/middleware"
	"AutoPostAPI/publishers"
	"AutoPostAPI/services"
	"AutoPostAPI/utils"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	utils.SetLogLevel(cfg.LogLevel)

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		utils.Fatalf("Failed to connect to database: %v", err)
	}

	storage, err := services.NewStorageService(cfg.UploadDir, cfg.MaxUploadSize, cfg.MaxImagesPerPost)
	if err != nil {
		utils.Fatalf("Failed to initialize storage: %v", err)
	}

	facebook := publishers.NewFacebookPublisher(nil, cfg.FacebookAPIVersion)

	scheduler := services.NewScheduler(db, facebook, cfg.FacebookAccessToken, cfg.SweepInterval)
	scheduler.Start()
	defer scheduler.Stop()

	posts := services.NewPostService(db, scheduler, storage)
	handler := handlers.NewHandler(posts, db)

	r := setupRoutes(handler, cfg)

	utils.Infof("Server starting on port %s...", cfg.Port)
	utils.Infof("Upload directory: %s", cfg.UploadDir)
	printEndpoints()

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		utils.Fatalf("%v", err)
	}
}

func setupRoutes(h *handlers.Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins
	r.Use(middleware.CORS(corsConfig))

	limiter := middleware.NewRateLimiter(float64(cfg.RateLimitPerMinute)/60.0, float64(cfg.RateLimitPerMinute))
	r.Use(limiter.Limit())

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Static file serving for uploaded images
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.BodyLimit(cfg.MaxUploadSize * int64(cfg.MaxImagesPerPost)))

	// Fixed paths must register before the {id} routes or mux matches
	// "scheduled" as a post id.
	api.HandleFunc("/posts/scheduled/jobs", h.GetScheduledJobs).Methods("GET")

	api.HandleFunc("/posts", h.CreatePost).Methods("POST")
	api.HandleFunc("/posts", h.GetPosts).Methods("GET")
	api.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	api.HandleFunc("/posts/{id}", h.UpdatePost).Methods("PUT")
	api.HandleFunc("/posts/{id}", h.DeletePost).Methods("DELETE")

	api.HandleFunc("/posts/{id}/images", middleware.BodyLimitHandler(
		cfg.MaxUploadSize*int64(cfg.MaxImagesPerPost), h.UploadImages)).Methods("POST")
	api.HandleFunc("/posts/{id}/images/{filename}", h.RemoveImage).Methods("DELETE")

	api.HandleFunc("/posts/{id}/schedule", h.SchedulePost).Methods("POST")
	api.HandleFunc("/posts/{id}/schedule", h.CancelSchedule).Methods("DELETE")

	api.HandleFunc("/dashboard/stats", h.GetDashboardStats).Methods("GET")
	api.HandleFunc("/dashboard/recent-activity", h.GetRecentActivity).Methods("GET")
	api.HandleFunc("/dashboard/category-distribution", h.GetCategoryDistribution).Methods("GET")
	api.HandleFunc("/dashboard/status-distribution", h.GetStatusDistribution).Methods("GET")
	api.HandleFunc("/dashboard/posting-trend", h.GetPostingTrend).Methods("GET")
	api.HandleFunc("/analytics/overview", h.GetAnalyticsOverview).Methods("GET")

	return r
}

func printEndpoints() {
	utils.Infof("Endpoints available:")
	utils.Infof("  POST   /api/v1/posts                           - Create post")
	utils.Infof("  GET    /api/v1/posts                           - List posts (filter + paginate)")
	utils.Infof("  GET    /api/v1/posts/{id}                      - Get post")
	utils.Infof("  PUT    /api/v1/posts/{id}                      - Update post")
	utils.Infof("  DELETE /api/v1/posts/{id}                      - Delete post")
	utils.Infof("  POST   /api/v1/posts/{id}/images               - Upload images")
	utils.Infof("  DELETE /api/v1/posts/{id}/images/{filename}    - Remove image")
	utils.Infof("  POST   /api/v1/posts/{id}/schedule             - Schedule publication")
	utils.Infof("  DELETE /api/v1/posts/{id}/schedule             - Cancel schedule")
	utils.Infof("  GET    /api/v1/posts/scheduled/jobs            - List scheduled jobs")
	utils.Infof("  GET    /api/v1/dashboard/stats                 - Dashboard stats")
	utils.Infof("  GET    /api/v1/dashboard/recent-activity       - Recent activity")
	utils.Infof("  GET    /api/v1/dashboard/category-distribution - Category distribution")
	utils.Infof("  GET    /api/v1/dashboard/status-distribution   - Status distribution")
	utils.Infof("  GET    /api/v1/dashboard/posting-trend         - Posting trend")
	utils.Infof("  GET    /api/v1/analytics/overview              - Analytics overview")
	utils.Infof("  GET    /health                                 - Health check")
	utils.Infof("  GET    /uploads/*                              - Serve uploaded files")
}
