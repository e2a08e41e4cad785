package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/retailpos-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubConsumer struct {
	runs int
	err  error
}

func (s *stubConsumer) Run(context.Context) error {
	s.runs++
	return s.err
}

func newTestService(t *testing.T, redisErr error, c *stubConsumer) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "notifications-worker-test", Output: io.Discard}),
		DB:       stubPinger{},
		Redis:    stubPinger{err: redisErr},
		PubSub:   stubPinger{},
		Consumer: c,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRunStopsOnUnreadyDependency(t *testing.T) {
	c := &stubConsumer{}
	svc := newTestService(t, errors.New("redis down"), c)
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected readiness error")
	}
	if c.runs != 0 {
		t.Fatalf("consumer must not start, ran %d", c.runs)
	}
}

func TestRunSurfacesConsumerFailure(t *testing.T) {
	c := &stubConsumer{err: errors.New("subscription deleted")}
	svc := newTestService(t, nil, c)
	if err := svc.Run(context.Background()); err == nil || err.Error() != "subscription deleted" {
		t.Fatalf("expected consumer error, got %v", err)
	}
}

func TestRunCanceledIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &stubConsumer{err: context.Canceled}
	svc := newTestService(t, nil, c)
	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestNewServiceRequiresConsumer(t *testing.T) {
	_, err := NewService(ServiceParams{
		Logger: logger.New(logger.Options{Output: io.Discard}),
		DB:     stubPinger{},
		Redis:  stubPinger{},
		PubSub: stubPinger{},
	})
	if err == nil {
		t.Fatal("expected error without consumer")
	}
}
