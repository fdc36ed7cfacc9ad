package scheduler

import (
	"context"
	"errors"
	"testing"

	"koppara_backend/internal/lineage/domain"
	"koppara_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestScheduleNotificationDispatchLandsInRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "notifications"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() { _ = client.Close() }()

	id := uuid.New()
	for range 2 {
		if err := client.ScheduleNotificationDispatch(context.Background(), id); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	pending, err := mr.List("asynq:{notifications}:pending")
	if err != nil {
		t.Fatalf("read pending list: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending task, got %d", len(pending))
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatalf("expected error without redis url")
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.internal:6380/2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("expected insecure TLS config")
	}
}

type fakeDispatcher struct {
	got []uuid.UUID
	err error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, id uuid.UUID) (int, error) {
	f.got = append(f.got, id)
	return 3, f.err
}

func TestHandleNotificationDispatch(t *testing.T) {
	d := &fakeDispatcher{}
	w := &Worker{dispatcher: d, log: logger.New("test")}

	id := uuid.New()
	task, err := NewNotificationDispatchTask(NotificationDispatchPayload{NotificationID: id.String()})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.got) != 1 || d.got[0] != id {
		t.Fatalf("expected dispatch of %s, got %v", id, d.got)
	}

	bad := asynq.NewTask(TaskNotificationDispatch, []byte(`{"notificationId":"nope"}`))
	if err := w.handleNotificationDispatch(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry for malformed id, got %v", err)
	}

	d.err = errors.New("db down")
	if err := w.handleNotificationDispatch(context.Background(), task); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("storage errors must be retried, got %v", err)
	}
}

type fakeVerifier struct {
	report domain.IntegrityReport
	err    error
}

func (f fakeVerifier) VerifyIntegrity(context.Context) (domain.IntegrityReport, error) {
	return f.report, f.err
}

func TestIntegrityCheck(t *testing.T) {
	log := logger.New("test")
	id := uuid.New()

	if !NewIntegrityCheck(fakeVerifier{report: domain.IntegrityReport{Checked: 3, Roots: 1}}, log, 0).check(context.Background()) {
		t.Fatalf("expected healthy graph to pass")
	}
	if NewIntegrityCheck(fakeVerifier{report: domain.IntegrityReport{Checked: 1, SelfLoops: []uuid.UUID{id}}}, log, 0).check(context.Background()) {
		t.Fatalf("expected self loop to fail")
	}
	if NewIntegrityCheck(fakeVerifier{err: errors.New("down")}, log, 0).check(context.Background()) {
		t.Fatalf("expected verifier error to fail")
	}
}
