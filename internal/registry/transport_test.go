// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	retryBaseDelay = 1 * time.Millisecond
}

// countingPacer counts Wait calls without actually pacing.
type countingPacer struct {
	waits int32
}

func (p *countingPacer) Wait(ctx context.Context) error {
	atomic.AddInt32(&p.waits, 1)
	return ctx.Err()
}

func newTestTransport(ts *httptest.Server, pacer *countingPacer, maxRetries int) *Transport {
	return &Transport{
		Client:     ts.Client(),
		Limiter:    pacer,
		MaxRetries: maxRetries,
		UserAgent:  "trial-engine/test",
	}
}

func TestFetch_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "trial-engine/test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"studies":[]}`))
	}))
	defer ts.Close()

	pacer := &countingPacer{}
	body, err := newTestTransport(ts, pacer, 3).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, `{"studies":[]}`, string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&pacer.waits))
}

func TestFetch_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer ts.Close()

	pacer := &countingPacer{}
	body, err := newTestTransport(ts, pacer, 3).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	// Every attempt, retries included, goes through the pacer.
	assert.Equal(t, int32(3), atomic.LoadInt32(&pacer.waits))
}

func TestFetch_RateLimitedIsTransient(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer ts.Close()

	body, err := newTestTransport(ts, &countingPacer{}, 3).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_ClientErrorIsTerminal(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestTransport(ts, &countingPacer{}, 3).Fetch(context.Background(), ts.URL)
	require.Error(t, err)

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, 1, retrievalErr.Attempts)
	assert.Equal(t, http.StatusNotFound, retrievalErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	pacer := &countingPacer{}
	_, err := newTestTransport(ts, pacer, 3).Fetch(context.Background(), ts.URL)
	require.Error(t, err)

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, 4, retrievalErr.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, retrievalErr.Status)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(4), atomic.LoadInt32(&pacer.waits))
}

func TestFetch_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestTransport(ts, &countingPacer{}, 3).Fetch(ctx, ts.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetch_DefaultRetryBudget(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	// MaxRetries 0 falls back to the default of 3 retries, 4 attempts.
	_, err := newTestTransport(ts, &countingPacer{}, 0).Fetch(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}
