// Package jobs runs the nightly housekeeping tasks.
package jobs

import (
	"fmt"
	"time"

	"autoservice-backend/database"
	"autoservice-backend/models"
	"autoservice-backend/tickets"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Cleaner struct {
	DB             *gorm.DB
	Tickets        *tickets.Store
	IdempotencyTTL time.Duration
	Log            *zap.Logger
	Now            func() time.Time
}

// PurgeIdempotencyKeys deletes keys older than IdempotencyTTL.
func (c Cleaner) PurgeIdempotencyKeys() (int64, error) {
	if c.IdempotencyTTL <= 0 {
		return 0, nil
	}
	cutoff := c.now().Add(-c.IdempotencyTTL)
	res := c.DB.Where("created_at < ?", cutoff).Delete(&models.IdempotencyKey{})
	return res.RowsAffected, res.Error
}

// RemoveOrphanTickets deletes ticket directories whose order no longer exists.
func (c Cleaner) RemoveOrphanTickets() (int, error) {
	if c.Tickets == nil {
		return 0, nil
	}
	ids, err := database.OrderIDs(c.DB)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	dirs, err := c.Tickets.TicketIDs()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range dirs {
		if known[id] {
			continue
		}
		if err := c.Tickets.DeleteAll(id); err != nil {
			return removed, fmt.Errorf("remove tickets of %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}

// Run executes every task once and logs the outcome.
func (c Cleaner) Run() {
	log := c.logger()
	if n, err := c.PurgeIdempotencyKeys(); err != nil {
		log.Error("purge idempotency keys", zap.Error(err))
	} else if n > 0 {
		log.Info("purged idempotency keys", zap.Int64("count", n))
	}
	if n, err := c.RemoveOrphanTickets(); err != nil {
		log.Error("remove orphan tickets", zap.Error(err))
	} else if n > 0 {
		log.Info("removed orphan ticket dirs", zap.Int("count", n))
	}
}

// Start schedules Run every day at "HH:MM" in loc and starts the scheduler.
func Start(c Cleaner, at string, loc *time.Location) (*gocron.Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := gocron.NewScheduler(loc)
	if _, err := s.Every(1).Day().At(at).Do(c.Run); err != nil {
		return nil, fmt.Errorf("schedule cleanup at %q: %w", at, err)
	}
	s.StartAsync()
	return s, nil
}

func (c Cleaner) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Cleaner) logger() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop()
}
