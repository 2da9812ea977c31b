package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coffeeshop/cartsync/internal/config"
	"github.com/coffeeshop/cartsync/internal/models"
	"github.com/coffeeshop/cartsync/internal/provider"
)

type countingFetcher struct {
	calls int32
	err   error
}

func (f *countingFetcher) FetchCart(ctx context.Context) (models.CartSnapshot, error) {
	atomic.AddInt32(&f.calls, 1)
	return models.CartSnapshot{}, f.err
}

func TestSyncServiceFetchesOnStart(t *testing.T) {
	fetcher := &countingFetcher{}
	svc := NewSyncService(fetcher, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&fetcher.calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt32(&fetcher.calls) != 1 {
		t.Fatalf("expected one initial fetch, got %d", atomic.LoadInt32(&fetcher.calls))
	}

	select {
	case err := <-done:
		t.Fatalf("start should block until cancel, returned %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("start should exit cleanly, got %v", err)
	}
}

func TestSyncServicePeriodicRefresh(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("backend down")}
	svc := NewSyncService(fetcher, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	for atomic.LoadInt32(&fetcher.calls) < 3 {
		if ctx.Err() != nil {
			t.Fatalf("expected repeated fetches, got %d", atomic.LoadInt32(&fetcher.calls))
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("start should exit cleanly, got %v", err)
	}
}

type stubService struct {
	name    string
	startFn func(ctx context.Context) error
	stopped int32
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error { return s.startFn(ctx) }

func (s *stubService) Stop(ctx context.Context) error {
	atomic.AddInt32(&s.stopped, 1)
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &stubService{name: "failing", startFn: func(ctx context.Context) error {
		return errors.New("listen failed")
	}}
	blocking := &stubService{name: "blocking", startFn: func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "listen failed" {
		t.Fatalf("expected start failure, got %v", err)
	}
	if atomic.LoadInt32(&failing.stopped) != 1 || atomic.LoadInt32(&blocking.stopped) != 1 {
		t.Fatalf("all services should be stopped")
	}
}

func TestBuildRunnerValidation(t *testing.T) {
	if _, err := BuildRunner(nil, nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
	cfg := &config.Config{}
	if _, err := BuildRunner(cfg, &provider.Container{Config: cfg}, "worker"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}
