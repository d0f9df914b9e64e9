package schedule

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/hibiken/asynq"

	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/logger"
	"dermo-chatbot-platform/internal/queue"
	"dermo-chatbot-platform/services"
)

// idleSweepInterval is how often we look for quiet sessions to export.
const idleSweepInterval = time.Minute

// Scheduler manages the recurring background jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	ctx       context.Context
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}

// ScheduleInterval schedules a job to run at regular intervals
func (s *Scheduler) ScheduleInterval(
	tag string,
	duration time.Duration,
	job func() error,
) error {
	_, err := s.scheduler.Every(duration).Tag(tag).Do(job)
	return err
}

// RemoveJob removes a scheduled job by tag
func (s *Scheduler) RemoveJob(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}

// GetJobs returns all scheduled jobs
func (s *Scheduler) GetJobs() []*gocron.Job {
	return s.scheduler.Jobs()
}

// RegisterJobs wires the two recurring jobs: a periodic stock refresh and a
// sweep that enqueues a transcript export for every session that has gone
// quiet. Both only enqueue; the worker process does the actual work.
func (s *Scheduler) RegisterJobs(cfg *config.Config, client *asynq.Client, sessions *services.SessionService) error {
	stockEvery := time.Duration(cfg.StockInterval) * time.Second
	err := s.ScheduleInterval("stock-refresh", stockEvery, func() error {
		task, err := queue.NewStockRefreshTask()
		if err != nil {
			return err
		}
		if _, err := client.Enqueue(task); err != nil {
			logger.Error("failed to enqueue stock refresh", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.ScheduleInterval("idle-session-sweep", idleSweepInterval, func() error {
		ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
		defer cancel()

		idle, err := sessions.IdleSessions(ctx)
		if err != nil {
			logger.Error("idle session sweep failed", "error", err)
			return err
		}
		for _, session := range idle {
			task, err := queue.NewChatExportTask(session.SessionID)
			if err != nil {
				return err
			}
			if _, err := client.Enqueue(task); err != nil {
				logger.Error("failed to enqueue chat export", "session_id", session.SessionID, "error", err)
				continue
			}
			logger.Info("queued chat export", "session_id", session.SessionID)
		}
		return nil
	})
}
