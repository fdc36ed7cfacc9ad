// Package scheduler moves notification fan-out and periodic lineage checks
// off the request path. The API enqueues asynq tasks through Client and the
// scheduler binary consumes them with Worker.
package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"koppara_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	dispatchMaxRetry = 5
	dispatchTimeout  = time.Minute
	defaultQueue     = "default"
)

// Client enqueues tasks. A nil *Client reports itself as unconfigured.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, errors.New("scheduler: REDIS_URL is not set")
	}
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse redis url: %w", err)
	}
	return &Client{client: asynq.NewClient(opt), queue: queueName(cfg)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleNotificationDispatch enqueues the fan-out of a stored
// notification. The notification ID doubles as the task ID, so enqueueing
// the same notification twice leaves one task.
func (c *Client) ScheduleNotificationDispatch(ctx context.Context, notificationID uuid.UUID) error {
	if c == nil || c.client == nil {
		return errors.New("scheduler: client not configured")
	}

	task, err := NewNotificationDispatchTask(NotificationDispatchPayload{NotificationID: notificationID.String()})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID("notification:"+notificationID.String()),
		asynq.MaxRetry(dispatchMaxRetry),
		asynq.Timeout(dispatchTimeout),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return defaultQueue
}

// redisClientOpt reuses go-redis URL parsing so redis:// and rediss:// URLs
// behave the same for the API and the worker.
func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	tlsConfig := opt.TLSConfig
	switch {
	case tlsConfig != nil && tlsInsecure:
		tlsConfig = tlsConfig.Clone()
		tlsConfig.InsecureSkipVerify = true
	case tlsConfig == nil && tlsInsecure:
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
