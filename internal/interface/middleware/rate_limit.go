package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-finance-tracker/pkg/response"
)

// KeyFunc derives the counter key for a request.
type KeyFunc func(c *gin.Context) string

// SkipFunc returns true when a request should not be counted.
type SkipFunc func(c *gin.Context) bool

// KeyByRoute counts per route template and caller address, so register and
// login attempts are throttled independently.
func KeyByRoute() KeyFunc {
	return func(c *gin.Context) string {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		return "rl:route:" + route + ":ip:" + ClientIP(c)
	}
}

// KeyByUser counts per authenticated user and falls back to the caller
// address when the gate has not run.
func KeyByUser() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:anon:ip:" + ClientIP(c)
	}
}

// INCR and PEXPIRE in one round trip; the window starts on the first hit.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimit is a fixed-window limiter backed by Redis. With a nil client it is
// a no-op, and Redis failures let the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, key KeyFunc, skip SkipFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (skip != nil && skip(c)) {
			c.Next()
			return
		}

		res, err := hitScript.Run(c.Request.Context(), rdb, []string{key(c)}, window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, pttl := int(res[0]), time.Duration(res[1])*time.Millisecond
		reset := int(pttl.Round(time.Second).Seconds())
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > limit {
			if reset > 0 {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
			response.Error[any](c, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
