// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/aeopulse/internal/models"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*RetentionService)(nil)
	_ suture.Service = (*RefreshService)(nil)
)

// mockHTTPServer is a test double for HTTPServer.
type mockHTTPServer struct {
	listenErr   error
	block       bool
	shutdownErr error
	listens     atomic.Int32
	shutdowns   atomic.Int32
	started     chan struct{}
	stopCh      chan struct{}
	stopOnce    sync.Once
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		started: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listens.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	if m.block {
		<-m.stopCh
		return http.ErrServerClosed
	}
	return nil
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.stopOnce.Do(func() { close(m.stopCh) })
	return m.shutdownErr
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	t.Parallel()

	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newMockHTTPServer(), timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if got := NewHTTPServerService(newMockHTTPServer(), time.Second).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		t.Parallel()
		server := newMockHTTPServer()
		server.block = true
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		select {
		case <-server.started:
		case <-time.After(time.Second):
			t.Fatal("server did not start")
		}
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if server.shutdowns.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", server.shutdowns.Load())
		}
	})

	t.Run("startup failure is returned", func(t *testing.T) {
		t.Parallel()
		bindErr := errors.New("bind: address already in use")
		server := newMockHTTPServer()
		server.listenErr = bindErr

		err := NewHTTPServerService(server, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve() = %v, want %v", err, bindErr)
		}
	})

	t.Run("shutdown failure is returned", func(t *testing.T) {
		t.Parallel()
		shutdownErr := errors.New("shutdown timeout")
		server := newMockHTTPServer()
		server.block = true
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		<-server.started
		cancel()

		if err := <-errCh; !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() = %v, want %v", err, shutdownErr)
		}
	})
}

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakePurger) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, t)
	return f.deleted, f.err
}

func (f *fakePurger) Backend() string { return "memory" }

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestRetentionService_Purge(t *testing.T) {
	t.Parallel()

	store := &fakePurger{deleted: 3}
	svc := NewRetentionService(store, RetentionConfig{RetentionDays: 30}, zerolog.Nop())
	now := time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.Purge(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Purge() = %d, %v", n, err)
	}
	if want := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC); !store.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoffs[0], want)
	}
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("default interval = %v", svc.config.Interval)
	}

	store.err = errors.New("db down")
	if _, err := svc.Purge(context.Background()); err == nil {
		t.Error("Purge() should wrap the store error")
	}
}

func TestRetentionService_ServeRunsOnStartAndTick(t *testing.T) {
	t.Parallel()

	store := &fakePurger{err: errors.New("transient")}
	svc := NewRetentionService(store, RetentionConfig{RetentionDays: 7, Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for store.calls() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("purge did not repeat")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

type fakeRefresher struct {
	mu     sync.Mutex
	ranges []string
}

func (f *fakeRefresher) Refresh(_ context.Context, rangeName string) (*models.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, rangeName)
	if rangeName == "bad" {
		return nil, errors.New("unknown range")
	}
	return &models.Stats{Range: rangeName, Degraded: []string{}}, nil
}

func TestRefreshService_RefreshAll(t *testing.T) {
	t.Parallel()

	dash := &fakeRefresher{}
	svc := NewRefreshService(dash, []string{"7d", "bad", "28d"}, 0, zerolog.Nop())
	if svc.interval != 5*time.Minute {
		t.Errorf("default interval = %v", svc.interval)
	}
	if got := svc.RefreshAll(context.Background()); got != 2 {
		t.Errorf("RefreshAll() = %d, want 2", got)
	}
	if len(dash.ranges) != 3 {
		t.Errorf("refreshed %v, want all three attempted", dash.ranges)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := svc.RefreshAll(ctx); got != 0 {
		t.Errorf("RefreshAll(canceled) = %d, want 0", got)
	}
}
