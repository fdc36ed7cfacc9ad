package scheduler

import (
	"context"
	"fmt"

	"koppara_backend/platform/config"
	"koppara_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// NotificationDispatcher resolves and records the audience of a
// notification.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notificationID uuid.UUID) (int, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher NotificationDispatcher
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, dispatcher NotificationDispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		dispatcher: dispatcher,
		log:        log,
	}

	mux.HandleFunc(TaskNotificationDispatch, w.handleNotificationDispatch)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationDispatchPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	id, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	recipients, err := w.dispatcher.Dispatch(ctx, id)
	if err != nil {
		return err
	}
	w.log.Debug("notification dispatch task done", "notificationId", id, "recipients", recipients)
	return nil
}
