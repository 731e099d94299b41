package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

type Scheduler interface {
	RegisterTasks(driftInterval time.Duration) error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	log            *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		log:            log,
	}
}

// RegisterTasks wires the recurring market drift pass at the configured
// interval. Notifications are never pruned here: once created they stay
// until the user marks them read, and stay listed after that too.
func (s *scheduler) RegisterTasks(driftInterval time.Duration) error {
	driftTask, err := NewDriftCheckTask("schedule")
	if err != nil {
		return err
	}

	spec := fmt.Sprintf("@every %s", driftInterval)
	if _, err := s.asynqScheduler.Register(spec, driftTask, asynq.Queue(QueueDefault)); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered recurring tasks",
			slog.String("drift_interval", driftInterval.String()))
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
