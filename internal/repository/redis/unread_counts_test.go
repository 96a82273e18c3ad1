package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestUnreadCountRepository_SetAndGet(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUnreadCountRepository(client, "unread", 5*time.Minute)

	ctx := context.Background()

	if err := repo.Set(ctx, "user-1", 3); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	count, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestUnreadCountRepository_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUnreadCountRepository(client, "unread", 5*time.Minute)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnreadCountRepository_IncrementOnlyWhenWarm(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUnreadCountRepository(client, "unread", 5*time.Minute)

	ctx := context.Background()

	// Cold cache: increment is a no-op so the next read repopulates.
	if err := repo.Increment(ctx, "user-1"); err != nil {
		t.Fatalf("Increment (cold) returned error: %v", err)
	}
	if _, err := repo.Get(ctx, "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected cold cache to stay a miss, got %v", err)
	}

	if err := repo.Set(ctx, "user-1", 1); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := repo.Increment(ctx, "user-1"); err != nil {
		t.Fatalf("Increment returned error: %v", err)
	}

	count, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}

func TestUnreadCountRepository_DecrementFloorsAtZero(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUnreadCountRepository(client, "unread", 5*time.Minute)

	ctx := context.Background()

	if err := repo.Set(ctx, "user-1", 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := repo.Decrement(ctx, "user-1"); err != nil {
		t.Fatalf("Decrement returned error: %v", err)
	}

	count, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected floor at 0, got %d", count)
	}
}

func TestUnreadCountRepository_Invalidate(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUnreadCountRepository(client, "unread", 5*time.Minute)

	ctx := context.Background()

	if err := repo.Set(ctx, "user-1", 7); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := repo.Invalidate(ctx, "user-1"); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}

	if _, err := repo.Get(ctx, "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after invalidate, got %v", err)
	}
}

func TestRateLimitRepository_Window(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{
		KeyPrefix: "rl",
		Window:    time.Minute,
	})

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.RecordAttempt(ctx, "ip-1"); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := repo.CountAttempts(ctx, "ip-1")
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 attempts, got %d", count)
	}

	// Attempts older than the window fall out.
	server.FastForward(3 * time.Minute)

	count, err = repo.CountAttempts(ctx, "ip-1")
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected window to expire attempts, got %d", count)
	}
}

func TestRateLimitRepository_Reset(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rl", Window: time.Minute})

	ctx := context.Background()

	if err := repo.RecordAttempt(ctx, "user-1"); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := repo.Reset(ctx, "user-1"); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 attempts after reset, got %d", count)
	}
}
