package browser

import (
	"context"
	"time"
)

// WithNavTimeout bounds one navigation step with its own deadline. The
// page context carries none, so a page load that never fires would
// otherwise block its worker indefinitely. A non-positive timeout
// disables the guard.
func WithNavTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(navCtx)
}
