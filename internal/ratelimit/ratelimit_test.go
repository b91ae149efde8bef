package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixed builds a limiter with a controllable clock and no cleanup goroutine.
func fixed(max int, window time.Duration, now *time.Time) *Limiter {
	return &Limiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      func() time.Time { return *now },
	}
}

func TestAllowWithinLimit(t *testing.T) {
	now := time.Now()
	l := fixed(3, time.Minute, &now)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "attempt %d", i)
	}
	assert.False(t, l.Allow("1.2.3.4"))

	// Another client is unaffected.
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestWindowSlides(t *testing.T) {
	now := time.Now()
	l := fixed(2, time.Minute, &now)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("a"))
}

func TestCleanupDropsIdleClients(t *testing.T) {
	now := time.Now()
	l := fixed(2, time.Minute, &now)

	l.Allow("a")
	l.Allow("b")
	now = now.Add(2 * time.Minute)
	l.Allow("b")

	l.cleanup()

	l.mu.Lock()
	_, hasA := l.attempts["a"]
	_, hasB := l.attempts["b"]
	l.mu.Unlock()
	assert.False(t, hasA)
	assert.True(t, hasB)
}

func TestStopEndsCleanupLoop(t *testing.T) {
	l := New(1, time.Minute)
	l.Stop()
	l.Stop()

	select {
	case <-l.done:
	default:
		t.Fatal("done channel should be closed after Stop")
	}

	// The limiter still serves requests after Stop.
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestMiddlewareRespondsTooManyRequests(t *testing.T) {
	now := time.Now()
	l := fixed(1, time.Minute, &now)

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.1:4000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Same host on a different source port is still the same client.
	req2 := httptest.NewRequest("POST", "/login", nil)
	req2.RemoteAddr = "10.0.0.1:4001"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
