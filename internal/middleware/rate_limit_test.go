package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingly-server/internal/cache"
)

func rateLimitedRouter(store cache.Cache, max int64, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimit(store, "login", max, window), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func TestRateLimitAllowsUpToMax(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()
	router := rateLimitedRouter(store, 3, time.Minute)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimitRejectsOverMax(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()
	router := rateLimitedRouter(store, 2, time.Minute)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body struct {
		Message    string `json:"message"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.Message)
	assert.GreaterOrEqual(t, body.RetryAfter, 1)
	assert.LessOrEqual(t, body.RetryAfter, 60)

	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitWindowLapses(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()
	router := rateLimitedRouter(store, 1, 30*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	time.Sleep(50 * time.Millisecond)

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitRoutesAreIndependent(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/a", RateLimit(store, "a", 1, time.Minute), handler)
	r.POST("/b", RateLimit(store, "b", 1, time.Minute), handler)

	for _, path := range []string{"/a", "/b"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
