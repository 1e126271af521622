package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	apperrors "task-market.com/task-market/internal/errors"
)

const idleLimiterTTL = 10 * time.Minute

// RateLimiter allows perMinute requests per client with bursts of up to burst.
// Clients are keyed by the authenticated actor when known, else by IP.
func RateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
		every     = rate.Every(time.Minute / time.Duration(perMinute))
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			key := c.RealIP()
			if actor, ok := ActorFrom(c); ok {
				key = "actor:" + actor.ID
			}

			mu.Lock()
			if now.Sub(lastSweep) > idleLimiterTTL {
				for k, cl := range clients {
					if now.Sub(cl.lastSeen) > idleLimiterTTL {
						delete(clients, k)
					}
				}
				lastSweep = now
			}
			cl, ok := clients[key]
			if !ok {
				cl = &client{limiter: rate.NewLimiter(every, burst)}
				clients[key] = cl
			}
			cl.lastSeen = now
			allowed := cl.limiter.AllowN(now, 1)
			mu.Unlock()

			if !allowed {
				log.Warn().Str("client", key).Str("path", c.Path()).Msg("rate limit exceeded")
				return reject(apperrors.ErrRateLimited)
			}

			return next(c)
		}
	}
}
