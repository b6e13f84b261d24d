package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dotsetgreg/helpline/pkg/logger"
)

// Sweeper drops expired audit events on a cron schedule.
type Sweeper struct {
	store     *Store
	schedule  string
	retention time.Duration
	gron      *gronx.Gronx
}

func NewSweeper(store *Store, schedule string, retention time.Duration) (*Sweeper, error) {
	gron := gronx.New()
	if !gron.IsValid(schedule) {
		return nil, fmt.Errorf("invalid audit sweep schedule %q", schedule)
	}
	if retention <= 0 {
		return nil, fmt.Errorf("audit retention must be positive, got %s", retention)
	}
	return &Sweeper{
		store:     store,
		schedule:  schedule,
		retention: retention,
		gron:      gron,
	}, nil
}

// Run blocks until ctx is cancelled, checking the schedule once a minute.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := sw.gron.IsDue(sw.schedule, time.Now())
			if err != nil || !due {
				continue
			}
			removed, err := sw.store.Sweep(ctx, sw.retention)
			if err != nil {
				logger.ErrorCF("audit", "Retention sweep failed", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			if removed > 0 {
				logger.InfoCF("audit", "Retention sweep completed", map[string]interface{}{
					"removed": removed,
				})
			}
		}
	}
}
