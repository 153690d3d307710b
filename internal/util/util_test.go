package util

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	got, err := Retry(context.Background(), 5, 0, func(context.Context) (int, error) {
		attempts++
		if attempts < targetAttempts {
			return 0, errors.New("transient error")
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("Retry value = %d, want 42", got)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	_, err := Retry(context.Background(), maxAttempts, 0, func(context.Context) (string, error) {
		attempts++
		return "", errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetryZeroAttempts(t *testing.T) {
	attempts := 0
	_, _ = Retry(context.Background(), 0, 0, func(context.Context) (int, error) {
		attempts++
		return 0, errors.New("fail")
	})
	if attempts != 1 {
		t.Errorf("Retry called fn %d times, want 1", attempts)
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, 3, time.Hour, func(context.Context) (int, error) {
		return 0, errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
}

func TestThrottleSpacing(t *testing.T) {
	interval := 20 * time.Millisecond
	th := NewThrottle(interval)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := th.Wait(context.Background()); err != nil {
				t.Errorf("Wait returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed < 3*interval {
		t.Errorf("3 throttled calls took %v, want at least %v", elapsed, 3*interval)
	}
}

func TestThrottleDelaysFirstCall(t *testing.T) {
	interval := 15 * time.Millisecond
	th := NewThrottle(interval)

	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < interval {
		t.Errorf("first call waited %v, want at least %v", elapsed, interval)
	}
}

func TestThrottleDisabled(t *testing.T) {
	th := NewThrottle(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("disabled throttle waited %v", elapsed)
	}
}

func TestThrottleCancelled(t *testing.T) {
	th := NewThrottle(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := th.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait error = %v, want context.Canceled", err)
	}
}

func TestLookbackWindow(t *testing.T) {
	now := time.Date(2025, 5, 14, 15, 30, 0, 0, time.UTC)
	w := LookbackWindow(now, 30)
	if w.FromString() != "2025-04-14" {
		t.Errorf("From = %s, want 2025-04-14", w.FromString())
	}
	if w.ToString() != "2025-05-14" {
		t.Errorf("To = %s, want 2025-05-14", w.ToString())
	}

	w = LookbackWindow(now, -3)
	if w.FromString() != w.ToString() {
		t.Errorf("negative lookback: From = %s, To = %s, want equal", w.FromString(), w.ToString())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"warning": slog.LevelWarn,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json logger output = %q, want JSON object", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "info", "text").Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("text logger output = %q, want key=value pairs", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "warn", "text").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info message logged at warn level: %q", buf.String())
	}
}
