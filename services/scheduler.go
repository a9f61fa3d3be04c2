package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"AutoPostAPI/models"
	"AutoPostAPI/publishers"
	"AutoPostAPI/utils"
)

// PostStore is the slice of the post repository the scheduler depends on.
type PostStore interface {
	GetPost(id string) (*models.Post, error)
	GetDueScheduledPosts(now time.Time) ([]*models.Post, error)
	UpdatePost(id string, update *models.PostUpdate) (*models.Post, error)
}

const jobIDPrefix = "publish_post_"

type scheduledJob struct {
	postID string
	fireAt time.Time
	token  string
	timer  *time.Timer
	gen    uint64
}

// Scheduler owns the in-memory table of pending publication jobs, one
// per post. Each job fires on its own timer; an independent cron-driven
// sweep republishes due posts whose job was lost (e.g. after a
// restart). Both paths funnel through dispatch, and the job table is
// the sole de-duplication guard between them.
//
// Jobs live only in memory: a restart drops them all and leaves the
// sweep to heal the backlog.
type Scheduler struct {
	store        PostStore
	publisher    publishers.SocialPublisher
	defaultToken string
	sweepEvery   time.Duration
	now          func() time.Time

	mu      sync.Mutex
	jobs    map[string]*scheduledJob
	lastGen uint64
	started bool
	cron    *cron.Cron
}

func NewScheduler(store PostStore, publisher publishers.SocialPublisher, defaultToken string, sweepEvery time.Duration) *Scheduler {
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	return &Scheduler{
		store:        store,
		publisher:    publisher,
		defaultToken: defaultToken,
		sweepEvery:   sweepEvery,
		now:          time.Now,
		jobs:         make(map[string]*scheduledJob),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}

	s.cron = cron.New()
	s.cron.AddFunc(fmt.Sprintf("@every %s", s.sweepEvery), s.processScheduledPosts)
	s.cron.Start()
	s.started = true
	utils.Infof("Scheduler started (sweep every %s)", s.sweepEvery)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	for id, job := range s.jobs {
		job.timer.Stop()
		delete(s.jobs, id)
	}
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	c.Stop()
	utils.Infof("Scheduler stopped")
}

// SchedulePostPublication registers (or replaces) the publication job
// for a post. A second call for the same post cancels the first job
// before the new one is registered, so at most one timer is ever live
// per post. A fire time in the past fires immediately. Returns false
// when the scheduler is not running.
func (s *Scheduler) SchedulePostPublication(postID string, fireAt time.Time, accessToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		utils.Errorf("Failed to schedule post %s: scheduler not started", postID)
		return false
	}

	if old, ok := s.jobs[postID]; ok {
		old.timer.Stop()
		delete(s.jobs, postID)
	}

	s.lastGen++
	job := &scheduledJob{
		postID: postID,
		fireAt: fireAt,
		token:  accessToken,
		gen:    s.lastGen,
	}
	gen := job.gen
	// AfterFunc treats a negative duration as zero, so past fire times
	// run right away.
	job.timer = time.AfterFunc(fireAt.Sub(s.now()), func() { s.fire(postID, gen) })
	s.jobs[postID] = job

	utils.Infof("Scheduled post %s for publication at %s", postID, fireAt.Format(time.RFC3339))
	return true
}

// CancelScheduledPost removes the live job for a post, if any. It is
// idempotent: cancelling an unknown or already-cancelled post returns
// false. A job whose dispatch already started cannot be stopped.
func (s *Scheduler) CancelScheduledPost(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[postID]
	if !ok {
		return false
	}

	job.timer.Stop()
	delete(s.jobs, postID)
	utils.Infof("Cancelled scheduled post %s", postID)
	return true
}

// GetScheduledJobs returns a snapshot of pending jobs. It holds the
// lock only while copying, so firing jobs are never blocked.
func (s *Scheduler) GetScheduledJobs() []models.ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]models.ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, models.ScheduledJob{
			PostID:      job.postID,
			ScheduledAt: job.fireAt,
			JobID:       jobIDPrefix + job.postID,
		})
	}
	return jobs
}

// fire is the timer callback. The generation check discards callbacks
// from timers that were cancelled or replaced after they had already
// started firing, so a stale timer can never publish.
func (s *Scheduler) fire(postID string, gen uint64) {
	s.mu.Lock()
	job, ok := s.jobs[postID]
	if !ok || job.gen != gen {
		s.mu.Unlock()
		return
	}
	token := job.token
	s.mu.Unlock()

	s.dispatch(postID, token, gen)
}

// dispatch runs the full publish sequence for one post. It is the
// single entry point for both timer fires and the reconciliation sweep
// and never propagates an error: one bad job must not take down the
// timer subsystem or the sweep.
//
// The post always leaves the Scheduled state once dispatch has run,
// whether or not the external publish succeeded; a failed attempt just
// means no facebook_post_id.
func (s *Scheduler) dispatch(postID, accessToken string, gen uint64) {
	defer s.removeJob(postID, gen)

	utils.Infof("Publishing scheduled post %s", postID)

	post, err := s.store.GetPost(postID)
	if err != nil {
		// Post deleted between scheduling and firing: terminal, no retry.
		utils.Errorf("Post %s not found for publication: %v", postID, err)
		return
	}

	message := RenderMessage(post)

	token := accessToken
	if token == "" {
		token = s.defaultToken
	}

	var facebookPostID *string
	if token == "" {
		utils.Warnf("No Facebook access token available for post %s", postID)
	} else {
		result := s.publisher.Publish(message, token)
		if result.Success {
			id := result.PostID
			facebookPostID = &id
			utils.Infof("Posted to Facebook successfully: %s", result.PostID)
		} else {
			utils.Warnf("Facebook posting failed for post %s: %s", postID, result.Message)
		}
	}

	status := models.StatusPublished
	update := &models.PostUpdate{Status: &status, FacebookPostID: facebookPostID}
	if _, err := s.store.UpdatePost(postID, update); err != nil {
		// The job is still removed below; if the post stays Scheduled
		// and due, the next sweep picks it up again.
		utils.Errorf("Failed to mark post %s as published: %v", postID, err)
		return
	}

	utils.Infof("Successfully published post %s", postID)
}

// removeJob retires the table entry for a finished dispatch. The
// generation must match so that a job scheduled while a dispatch was
// in flight survives. Sweep dispatches pass gen 0 and remove nothing:
// they only run when no job exists.
func (s *Scheduler) removeJob(postID string, gen uint64) {
	if gen == 0 {
		return
	}
	s.mu.Lock()
	if job, ok := s.jobs[postID]; ok && job.gen == gen {
		job.timer.Stop()
		delete(s.jobs, postID)
	}
	s.mu.Unlock()
}

func (s *Scheduler) hasJob(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[postID]
	return ok
}

// processScheduledPosts is the reconciliation sweep: any post that is
// scheduled and due but has no live timer job (lost to a restart or a
// dropped timer) gets dispatched directly.
func (s *Scheduler) processScheduledPosts() {
	posts, err := s.store.GetDueScheduledPosts(s.now())
	if err != nil {
		utils.Errorf("Error fetching scheduled posts: %v", err)
		return
	}

	for _, post := range posts {
		if s.hasJob(post.ID) {
			// A timer is already on the hook for this post.
			continue
		}
		s.dispatch(post.ID, "", 0)
	}
}
