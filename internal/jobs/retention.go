package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	retentionJobName = "ActivityRetention"
	// каждую ночь в 03:15 UTC
	retentionSchedule = "15 3 * * *"
)

type ActivityPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionWorker удаляет записи журнала старше заданного числа дней.
type RetentionWorker struct {
	store ActivityPruner
	days  int
	cron  *cron.Cron
	now   func() time.Time
}

func NewRetentionWorker(store ActivityPruner, days int) *RetentionWorker {
	return &RetentionWorker{
		store: store,
		days:  days,
		cron:  cron.New(cron.WithLocation(time.UTC)),
		now:   time.Now,
	}
}

// Start запускает расписание. При days == 0 очистка выключена.
func (w *RetentionWorker) Start() error {
	if w.days <= 0 {
		log.Info().Str("job", retentionJobName).Msg("activity retention disabled")
		return nil
	}
	_, err := w.cron.AddFunc(retentionSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := w.RunOnce(ctx); err != nil {
			log.Error().Err(err).Str("job", retentionJobName).Msg("activity retention failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", retentionJobName, err)
	}
	w.cron.Start()
	return nil
}

// Stop останавливает расписание и ждёт текущий запуск.
func (w *RetentionWorker) Stop() {
	<-w.cron.Stop().Done()
}

func (w *RetentionWorker) Cutoff() time.Time {
	return w.now().UTC().AddDate(0, 0, -w.days)
}

// RunOnce удаляет устаревшие записи сразу, без расписания.
func (w *RetentionWorker) RunOnce(ctx context.Context) (int64, error) {
	if w.days <= 0 {
		return 0, nil
	}
	cutoff := w.Cutoff()
	n, err := w.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune activity log: %w", err)
	}
	log.Info().
		Str("job", retentionJobName).
		Int64("deleted", n).
		Time("cutoff", cutoff).
		Msg("activity log pruned")
	return n, nil
}
