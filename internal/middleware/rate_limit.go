package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"pingly-server/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimit guards a route with a fixed-window limit per client IP: at most
// max requests per window. Counters live beside the session cache, so the
// redis driver shares them across instances while the memory driver counts
// in process.
func RateLimit(sessionCache cache.Cache, route string, max int64, window time.Duration) gin.HandlerFunc {
	instance := limiter.New(counterStore(sessionCache, route), limiter.Rate{
		Period: window,
		Limit:  max,
	})

	return func(c *gin.Context) {
		limiterContext, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			// limiter trouble must not take the route down
			log.Printf("rate limiter unavailable for %s: %v", route, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limiterContext.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(limiterContext.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(limiterContext.Reset, 10))

		if limiterContext.Reached {
			retryAfter := limiterContext.Reset - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":    "too many requests, please try again later",
				"retryAfter": retryAfter,
			})
			return
		}

		c.Next()
	}
}

func counterStore(sessionCache cache.Cache, route string) limiter.Store {
	if r, ok := sessionCache.(*cache.Redis); ok {
		store, err := sredis.NewStoreWithOptions(r.Client(), limiter.StoreOptions{Prefix: "rate:" + route})
		if err == nil {
			return store
		}
		log.Printf("rate limiter for %s falls back to in-process counters: %v", route, err)
	}
	return memory.NewStore()
}
