package utils

import (
	"context"

	"github.com/go-chi/valve"
)

// StopContext returns a context derived from the valve's context that is
// cancelled once the valve starts shutting down. Long running work started
// under it stops early instead of holding up Shutdown.
func StopContext(v *valve.Valve) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(v.Context())
	go func() {
		select {
		case <-v.Stop():
		case <-ctx.Done():
		}
		cancel()
	}()
	return ctx, cancel
}
