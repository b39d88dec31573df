package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/seo-media/app/feed"
	"github.com/lysyi3m/seo-media/app/metrics"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	queueSize   = 300
	taskTimeout = 5 * time.Minute
	maxBackoff  = 30 * time.Second
)

type Options struct {
	WorkerCount int
	Interval    time.Duration
}

type Scheduler struct {
	configCache *feed.ConfigCache
	deps        *Dependencies
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, deps *Dependencies, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache: configCache,
		deps:        deps,
		interval:    opts.Interval,
		workerCount: max(1, opts.WorkerCount),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.enqueueStartupTasks()

		if s.interval <= 0 {
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		metrics.TaskQueueDepth.Set(float64(len(s.taskQueue)))
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueImport schedules an import of the named source, even when it is disabled.
func (s *Scheduler) EnqueueImport(sourceName string) error {
	source, err := s.configCache.GetConfig(sourceName)
	if err != nil {
		return err
	}

	task := NewImportSourceTask(source, s.deps)
	task.Force = true
	return s.EnqueueTask(task)
}

func (s *Scheduler) enqueueStartupTasks() {
	sources := s.configCache.GetConfigs()
	if len(sources) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(sources))

	for _, source := range sources {
		if err := s.EnqueueTask(NewSyncSourceConfigTask(source, s.deps)); err != nil {
			slog.Warn("Failed to enqueue SyncSourceConfigTask", "source", source.Name, "error", err)
			continue
		}

		if !source.Settings.Enabled {
			slog.Debug("Source disabled, skipping ImportSourceTask", "source", source.Name)
			continue
		}

		if err := s.EnqueueTask(NewImportSourceTask(source, s.deps)); err != nil {
			slog.Warn("Failed to enqueue ImportSourceTask", "source", source.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	sources := s.configCache.GetEnabledConfigs()
	if len(sources) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	for _, source := range sources {
		record, err := s.deps.SourceRepo.GetSource(s.ctx, source.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", source.Name, "error", err)
			continue
		}

		now := s.deps.now()
		if record != nil && record.NextFetchAt != nil && record.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", source.Name, "next_fetch_at", record.NextFetchAt)
		} else if err := s.EnqueueTask(NewImportSourceTask(source, s.deps)); err != nil {
			slog.Warn("Failed to enqueue ImportSourceTask", "source", source.Name, "error", err)
		}

		if source.Settings.ExtractContent && source.Type == feed.SourceTypeFeed {
			if err := s.EnqueueTask(NewExtractContentTask(source, s.deps)); err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "source", source.Name, "error", err)
			}
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			metrics.TaskQueueDepth.Set(float64(len(s.taskQueue)))
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		metrics.TasksTotal.WithLabelValues(string(task.GetType()), "success").Inc()
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		metrics.TasksTotal.WithLabelValues(string(task.GetType()), "failed").Inc()
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	metrics.TasksTotal.WithLabelValues(string(task.GetType()), "retry").Inc()
	task.IncrementRetryCount()
	retryDelay := min(time.Duration(1<<uint(task.GetRetryCount()-1))*time.Second, maxBackoff)

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
