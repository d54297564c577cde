package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tournaments", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/tournaments", nil)
	req = req.WithContext(WithUserID(req.Context(), uuid.New()))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("user:a"))
	assert.True(t, rl.Allow("user:a"))
	assert.False(t, rl.Allow("user:a"))
	// Separate callers have separate budgets
	assert.True(t, rl.Allow("user:b"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("user:a"))

	// Idle callers are forgotten
	now = now.Add(time.Hour)
	rl.Allow("user:c")
	rl.mu.Lock()
	assert.Len(t, rl.visitors, 1)
	rl.mu.Unlock()
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := rl.Middleware(okHandler())
	userID := uuid.New()

	send := func(ctx context.Context, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/tournaments/x/matches/w1-1/score", nil).WithContext(ctx)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	signedIn := WithUserID(context.Background(), userID)
	assert.Equal(t, http.StatusNoContent, send(signedIn, "10.0.0.1:1000"))
	// The same user from another address shares the budget
	assert.Equal(t, http.StatusTooManyRequests, send(signedIn, "10.0.0.2:1000"))
	assert.Equal(t, http.StatusNoContent, send(context.Background(), "10.0.0.2:1000"))
}
