package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskly/backend/internal/events"
	"taskly/backend/internal/models"
)

// Sweeper periodically marks overdue Scheduled tasks as Missed and publishes
// an event per affected task so caches and listeners can react.
type Sweeper struct {
	db           *gorm.DB
	bus          *events.Bus
	pollInterval time.Duration
	logger       *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSweeper(db *gorm.DB, bus *events.Bus, pollInterval time.Duration, logger *zap.SugaredLogger) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		db:           db,
		bus:          bus,
		pollInterval: pollInterval,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.loop()
}

func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(time.Now()); err != nil && s.logger != nil {
				s.logger.Errorw("sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce flips every Scheduled task whose scheduledAt has passed to
// Missed. It returns the affected tasks.
func (s *Sweeper) SweepOnce(now time.Time) ([]models.Task, error) {
	var overdue []models.Task
	err := s.db.Where("status = ? AND scheduled_at < ?", models.TaskStatusScheduled, now).Find(&overdue).Error
	if err != nil {
		return nil, err
	}
	if len(overdue) == 0 {
		return nil, nil
	}

	ids := make([]interface{}, len(overdue))
	for i, task := range overdue {
		ids[i] = task.ID
	}

	// Status is re-checked in the WHERE so a task completed between the read
	// and the write is left alone.
	err = s.db.Model(&models.Task{}).
		Where("id IN ? AND status = ?", ids, models.TaskStatusScheduled).
		Update("status", models.TaskStatusMissed).Error
	if err != nil {
		return nil, err
	}

	for i := range overdue {
		overdue[i].Status = models.TaskStatusMissed
		if s.bus != nil {
			s.bus.Publish(events.TaskEvent{
				Type:   events.TaskMissed,
				TaskID: overdue[i].ID,
				UserID: overdue[i].UserID,
			})
		}
	}

	if s.logger != nil {
		s.logger.Infow("marked overdue tasks missed", "count", len(overdue))
	}
	return overdue, nil
}
