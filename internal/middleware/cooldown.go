package middleware

import (
	"context"
	"sync"
	"time"

	"server-warden/internal/command"
	"server-warden/pkg/cmd"

	"golang.org/x/time/rate"
)

// maxTrackedUsers bounds the limiter map; it is reset when exceeded.
const maxTrackedUsers = 10000

// WithCooldown allows each user one run of the command per interval.
// Invocations inside the window are dropped silently.
func WithCooldown(interval time.Duration) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		if interval <= 0 {
			return c
		}
		var (
			mu       sync.Mutex
			limiters = make(map[string]*rate.Limiter)
		)
		allow := func(userID string) bool {
			mu.Lock()
			defer mu.Unlock()
			l, ok := limiters[userID]
			if !ok {
				if len(limiters) >= maxTrackedUsers {
					limiters = make(map[string]*rate.Limiter)
				}
				l = rate.NewLimiter(rate.Every(interval), 1)
				limiters[userID] = l
			}
			return l.Allow()
		}

		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.MessageContext)
			if !ok || v.Developer {
				return c.Run(ctx, inv)
			}
			if !allow(v.AuthorID()) {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}
