package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheProvider) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockCacheProvider) SetIfAbsent(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func searchRequest(ip, ua string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/listings/search", nil)
	req.RemoteAddr = ip + ":52100"
	req.Header.Set("User-Agent", ua)
	return req
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	cache := new(MockCacheProvider)
	cache.On("Increment", mock.Anything, mock.Anything, time.Minute).Return(int64(3), nil)
	cache.On("TTL", mock.Anything, mock.Anything).Return(40*time.Second, nil)

	rl := NewRateLimiter(cache, "search", 50, time.Minute, "Search rate limit exceeded", nil)
	rec := httptest.NewRecorder()
	rl.Middleware(okHandler).ServeHTTP(rec, searchRequest("10.0.0.1", "android"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "50", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "47", rec.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "40", rec.Header().Get("RateLimit-Reset"))
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	cache := new(MockCacheProvider)
	cache.On("Increment", mock.Anything, mock.Anything, time.Minute).Return(int64(51), nil)
	cache.On("TTL", mock.Anything, mock.Anything).Return(12500*time.Millisecond, nil)

	rl := NewRateLimiter(cache, "search", 50, time.Minute, "Search rate limit exceeded", nil)
	fixed := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	rec := httptest.NewRecorder()
	rl.Middleware(okHandler).ServeHTTP(rec, searchRequest("10.0.0.1", "android"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "13", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	var body rateLimitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Search rate limit exceeded", body.Error)
	assert.Equal(t, 13, body.RetryAfter)
	assert.Equal(t, fixed, body.Timestamp)
}

func TestRateLimiter_FailsOpenWhenCacheUnavailable(t *testing.T) {
	cache := new(MockCacheProvider)
	cache.On("Increment", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("dial tcp: connection refused"))

	rl := NewRateLimiter(cache, "search", 50, time.Minute, "limited", nil)
	rec := httptest.NewRecorder()
	rl.Middleware(okHandler).ServeHTTP(rec, searchRequest("10.0.0.1", "android"))

	assert.Equal(t, http.StatusOK, rec.Code)
	cache.AssertNotCalled(t, "TTL", mock.Anything, mock.Anything)
}

func TestRateLimiter_NilCacheDisablesLimiting(t *testing.T) {
	rl := NewRateLimiter(nil, "search", 50, time.Minute, "limited", nil)
	rec := httptest.NewRecorder()
	rl.Middleware(okHandler).ServeHTTP(rec, searchRequest("10.0.0.1", "android"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_KeysByClientAndUserAgent(t *testing.T) {
	rl := NewRateLimiter(nil, "search", 50, time.Minute, "limited", nil)

	a := rl.key(searchRequest("10.0.0.1", "android"))
	b := rl.key(searchRequest("10.0.0.1", "ios"))
	c := rl.key(searchRequest("10.0.0.2", "android"))

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, rl.key(searchRequest("10.0.0.1", "android")))
	assert.Contains(t, a, "ratelimit:search:")
}

func TestClientIP(t *testing.T) {
	req := searchRequest("10.0.0.1", "ua")
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	assert.Equal(t, "172.16.0.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
