package common_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guarzo/splitwise-mcp/common"
)

func TestNewSplitwiseHttpClient(t *testing.T) {
	base := &http.Client{}
	client := common.NewSplitwiseHttpClient("MyUserAgent", base, 0)
	if client == nil {
		t.Fatal("expected non-nil HttpClient")
	}
	if base.Timeout != common.DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", common.DefaultTimeout, base.Timeout)
	}
}

func TestHttpClient_Do(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "TestUserAgent" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "wrong user-agent")
			return
		}
		fmt.Fprint(w, "hello world")
	}))
	defer ts.Close()

	hc := common.NewSplitwiseHttpClient("TestUserAgent", &http.Client{}, time.Second)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "hello world" {
		t.Errorf("unexpected response: %d %s", resp.StatusCode, string(body))
	}
}

func TestHttpClient_RetryWithExponentialBackoff(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		if called < 3 {
			// simulate a 503
			return nil, common.ErrorForStatus(http.StatusServiceUnavailable, []byte("temporary issue"))
		}
		return "success", nil
	}

	hc := common.NewSplitwiseHttpClient("UA", &http.Client{}, 0)
	var slept []time.Duration
	hc.SetRandAndSleepForTest(func(d time.Duration) { slept = append(slept, d) }, 42)

	res, err := hc.RetryWithExponentialBackoff(context.Background(), operation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.(string) != "success" {
		t.Errorf("expected 'success', got %v", res)
	}
	if called != 3 {
		t.Errorf("expected 3 calls, got %d", called)
	}
	if len(slept) != 2 {
		t.Errorf("expected 2 sleeps, got %d", len(slept))
	}
}

func TestHttpClient_RetryHonoursRetryAfter(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		if called == 1 {
			return nil, common.ErrorForStatus(http.StatusTooManyRequests, []byte(`{"error":"slow down","retry_after":7}`))
		}
		return "ok", nil
	}

	hc := common.NewSplitwiseHttpClient("UA", &http.Client{}, 0)
	var slept []time.Duration
	hc.SetRandAndSleepForTest(func(d time.Duration) { slept = append(slept, d) }, 1)

	if _, err := hc.RetryWithExponentialBackoff(context.Background(), operation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slept) != 1 || slept[0] != 7*time.Second {
		t.Errorf("expected a single 7s sleep, got %v", slept)
	}
}

func TestHttpClient_RetryStopsOnClientError(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		return nil, common.ErrorForStatus(http.StatusNotFound, []byte(`{"error":"no such expense"}`))
	}

	hc := common.NewSplitwiseHttpClient("UA", &http.Client{}, 0)
	hc.SetRandAndSleepForTest(func(time.Duration) {}, 1)

	_, err := hc.RetryWithExponentialBackoff(context.Background(), operation)
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != common.KindNotFound {
		t.Fatalf("expected not_found APIError, got %v", err)
	}
	if called != 1 {
		t.Errorf("expected 1 call, got %d", called)
	}
}

func TestHttpClient_RetryAfterIsCapped(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		if called == 1 {
			return nil, common.ErrorForStatus(http.StatusTooManyRequests, []byte(`{"error":"slow down","retry_after":3600}`))
		}
		return "ok", nil
	}

	hc := common.NewSplitwiseHttpClient("UA", &http.Client{}, 0)
	var slept []time.Duration
	hc.SetRandAndSleepForTest(func(d time.Duration) { slept = append(slept, d) }, 1)

	if _, err := hc.RetryWithExponentialBackoff(context.Background(), operation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slept) != 1 || slept[0] != 16*time.Second {
		t.Errorf("expected the wait to be capped at 16s, got %v", slept)
	}
}

func TestHttpClient_RetryStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := 0
	operation := func() (interface{}, error) {
		called++
		cancel()
		return nil, common.ErrorForStatus(http.StatusServiceUnavailable, []byte("down"))
	}

	// real wait: a 1-2s backoff must end as soon as ctx is done
	hc := common.NewSplitwiseHttpClient("UA", &http.Client{}, 0)
	start := time.Now()
	_, err := hc.RetryWithExponentialBackoff(ctx, operation)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called != 1 {
		t.Errorf("expected 1 call, got %d", called)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("wait ignored cancellation, took %v", elapsed)
	}
}

func TestHttpClient_ConcurrentRetries(t *testing.T) {
	hc := common.NewSplitwiseHttpClient("UA", &http.Client{}, 0)
	hc.SetRandAndSleepForTest(func(time.Duration) {}, 7)

	var calls atomic.Int64
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			attempt := 0
			_, err := hc.RetryWithExponentialBackoff(context.Background(), func() (interface{}, error) {
				calls.Add(1)
				attempt++
				if attempt < 3 {
					return nil, common.ErrorForStatus(http.StatusServiceUnavailable, []byte("busy"))
				}
				return "ok", nil
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n != 24 {
		t.Errorf("expected 24 attempts, got %d", n)
	}
}
