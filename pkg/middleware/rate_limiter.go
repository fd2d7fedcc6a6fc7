package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

var rateLimitDenied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "basapp_rate_limit_denied_total",
	Help: "Requests denied by the rate limiter.",
}, []string{"route"})

// RateLimiter limits by client IP using an in-memory store. The rate
// uses limiter's formatted syntax, e.g. "100-M", "10-S".
func RateLimiter(rate string) gin.HandlerFunc {
	formatted, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		// misconfigured rate disables limiting rather than taking the API down
		return func(c *gin.Context) { c.Next() }
	}
	instance := limiter.New(memory.NewStore(), formatted)

	return func(c *gin.Context) {
		lctx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		if lctx.Reached {
			rateLimitDenied.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
