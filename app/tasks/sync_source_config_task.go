package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/seo-media/app/feed"
)

// SyncSourceConfigTask records a source definition in the database so it can be listed before its first import.
type SyncSourceConfigTask struct {
	Task
	Source *feed.Source
	deps   *Dependencies
}

func NewSyncSourceConfigTask(source *feed.Source, deps *Dependencies) *SyncSourceConfigTask {
	return &SyncSourceConfigTask{
		Task:   NewTask(TaskTypeSyncSourceConfig, source.Name),
		Source: source,
		deps:   deps,
	}
}

func (t *SyncSourceConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := t.deps.SourceRepo.UpsertSource(ctx, t.Source.Name, string(t.Source.Type), t.Source.Location()); err != nil {
		return fmt.Errorf("failed to sync source config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration())

	return nil
}
