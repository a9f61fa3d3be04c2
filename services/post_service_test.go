package services

import (
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutoPostAPI/models"
)

type fakeRepo struct {
	*fakeStore
	created   []*models.Post
	deleted   []string
	listPosts []*models.Post
	total     int
	setImages map[string][]models.Image
}

func newFakeRepo(posts ...*models.Post) *fakeRepo {
	return &fakeRepo{
		fakeStore: newFakeStore(posts...),
		setImages: make(map[string][]models.Image),
	}
}

func (r *fakeRepo) CreatePost(post *models.Post) error {
	r.created = append(r.created, post)
	r.posts[post.ID] = post
	return nil
}

func (r *fakeRepo) GetPosts(filter *models.PostFilter, page models.Pagination) ([]*models.Post, error) {
	return r.listPosts, nil
}

func (r *fakeRepo) CountPosts(filter *models.PostFilter) (int, error) {
	return r.total, nil
}

func (r *fakeRepo) DeletePost(id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.posts, id)
	return nil
}

func (r *fakeRepo) SetPostImages(id string, images []models.Image) (*models.Post, error) {
	r.setImages[id] = images
	post := r.posts[id]
	post.Images = images
	copied := *post
	return &copied, nil
}

type fakeSched struct {
	scheduled  []models.ScheduledJob
	cancelled  []string
	refuseNext bool
}

func (s *fakeSched) SchedulePostPublication(postID string, fireAt time.Time, accessToken string) bool {
	if s.refuseNext {
		return false
	}
	s.scheduled = append(s.scheduled, models.ScheduledJob{
		PostID:      postID,
		ScheduledAt: fireAt,
		JobID:       "publish_post_" + postID,
	})
	return true
}

func (s *fakeSched) CancelScheduledPost(postID string) bool {
	s.cancelled = append(s.cancelled, postID)
	return true
}

func (s *fakeSched) GetScheduledJobs() []models.ScheduledJob {
	return s.scheduled
}

func newTestPostService(t *testing.T, repo *fakeRepo, sched *fakeSched) *PostService {
	t.Helper()
	storage, err := NewStorageService(t.TempDir(), 0, 0)
	require.NoError(t, err)
	return NewPostService(repo, sched, storage)
}

func validCreate() *models.PostCreate {
	return &models.PostCreate{
		Title:       "Office chair",
		Description: "Ergonomic, black",
		Price:       80,
		Category:    models.CategoryOfficeSupplies,
		Location:    "Denver",
	}
}

func TestCreatePostDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestPostService(t, repo, &fakeSched{})

	post, err := svc.CreatePost(validCreate())
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, models.StatusPublished, post.Status)
	assert.NotNil(t, post.Images)
	assert.Empty(t, post.Images)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	require.Len(t, repo.created, 1)
}

func TestCreatePostValidation(t *testing.T) {
	svc := newTestPostService(t, newFakeRepo(), &fakeSched{})

	req := validCreate()
	req.Title = "   "
	_, err := svc.CreatePost(req)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
}

func TestCreateScheduledPostRequiresFutureTime(t *testing.T) {
	svc := newTestPostService(t, newFakeRepo(), &fakeSched{})

	req := validCreate()
	req.Status = models.StatusScheduled
	_, err := svc.CreatePost(req)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scheduled_at", verr.Field)

	past := time.Now().Add(-time.Hour)
	req.ScheduledAt = &past
	_, err = svc.CreatePost(req)
	require.ErrorAs(t, err, &verr)
}

func TestSchedulePostRegistersJob(t *testing.T) {
	post := testPost("p1")
	repo := newFakeRepo(post)
	sched := &fakeSched{}
	svc := newTestPostService(t, repo, sched)

	fireAt := time.Now().Add(time.Hour)
	updated, err := svc.SchedulePost("p1", fireAt, "tok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, updated.Status)

	require.Len(t, sched.scheduled, 1)
	assert.Equal(t, "p1", sched.scheduled[0].PostID)
	assert.Equal(t, fireAt, sched.scheduled[0].ScheduledAt)

	updates := repo.updatesFor("p1")
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].ScheduledAt)
	assert.Equal(t, fireAt, *updates[0].ScheduledAt)
}

func TestSchedulePostRejectsPastTime(t *testing.T) {
	sched := &fakeSched{}
	svc := newTestPostService(t, newFakeRepo(testPost("p1")), sched)

	_, err := svc.SchedulePost("p1", time.Now().Add(-time.Minute), "")

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scheduled_at", verr.Field)
	assert.Empty(t, sched.scheduled)
}

func TestSchedulePostSchedulerRefusal(t *testing.T) {
	sched := &fakeSched{refuseNext: true}
	svc := newTestPostService(t, newFakeRepo(testPost("p1")), sched)

	_, err := svc.SchedulePost("p1", time.Now().Add(time.Hour), "")
	assert.ErrorIs(t, err, ErrScheduleFailed)
}

func TestCancelScheduleResetsToDraft(t *testing.T) {
	repo := newFakeRepo(testPost("p1"))
	sched := &fakeSched{}
	svc := newTestPostService(t, repo, sched)

	post, err := svc.CancelSchedule("p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Equal(t, []string{"p1"}, sched.cancelled)

	updates := repo.updatesFor("p1")
	require.Len(t, updates, 1)
	assert.True(t, updates[0].ClearScheduledAt)
	assert.Nil(t, updates[0].ScheduledAt)
}

func TestDeletePostCancelsJob(t *testing.T) {
	repo := newFakeRepo(testPost("p1"))
	sched := &fakeSched{}
	svc := newTestPostService(t, repo, sched)

	require.NoError(t, svc.DeletePost("p1"))
	assert.Equal(t, []string{"p1"}, sched.cancelled)
	assert.Equal(t, []string{"p1"}, repo.deleted)
}

func TestGetPostsPaginationEnvelope(t *testing.T) {
	repo := newFakeRepo()
	repo.listPosts = []*models.Post{testPost("a"), testPost("b")}
	repo.total = 25
	svc := newTestPostService(t, repo, &fakeSched{})

	list, err := svc.GetPosts(nil, models.Pagination{Skip: 10, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 25, list.Total)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 10, list.PerPage)
	assert.Equal(t, 3, list.TotalPages)
	assert.Len(t, list.Posts, 2)
}

func TestGetPostsDefaultPagination(t *testing.T) {
	repo := newFakeRepo()
	repo.total = 5
	svc := newTestPostService(t, repo, &fakeSched{})

	list, err := svc.GetPosts(nil, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, models.DefaultPageLimit, list.PerPage)
	assert.Equal(t, 1, list.TotalPages)
}

func TestGetPostsInvalidFilter(t *testing.T) {
	svc := newTestPostService(t, newFakeRepo(), &fakeSched{})

	min, max := 100.0, 50.0
	_, err := svc.GetPosts(&models.PostFilter{MinPrice: &min, MaxPrice: &max}, models.Pagination{})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_price", verr.Field)
}

func TestUpdatePostEmptyReturnsCurrent(t *testing.T) {
	repo := newFakeRepo(testPost("p1"))
	svc := newTestPostService(t, repo, &fakeSched{})

	post, err := svc.UpdatePost("p1", &models.PostUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Empty(t, repo.updatesFor("p1"))
}

func TestRemoveImageNotFound(t *testing.T) {
	svc := newTestPostService(t, newFakeRepo(testPost("p1")), &fakeSched{})

	_, err := svc.RemoveImage("p1", "missing.png")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestRemoveImageDetaches(t *testing.T) {
	post := testPost("p1")
	post.Images = []models.Image{
		{Filename: "a.png", URL: "/uploads/a.png"},
		{Filename: "b.png", URL: "/uploads/b.png"},
	}
	repo := newFakeRepo(post)
	svc := newTestPostService(t, repo, &fakeSched{})

	updated, err := svc.RemoveImage("p1", "a.png")
	require.NoError(t, err)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, "b.png", updated.Images[0].Filename)
}

func TestAddImagesRespectsCap(t *testing.T) {
	post := testPost("p1")
	post.Images = make([]models.Image, 4)
	svc := newTestPostService(t, newFakeRepo(post), &fakeSched{})

	files := []*multipart.FileHeader{{Filename: "a.png"}, {Filename: "b.png"}}
	_, err := svc.AddImages("p1", files)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "files", verr.Field)
}
