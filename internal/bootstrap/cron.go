package bootstrap

import (
	"context"

	"currency-converter/internal/cron"
)

// RunCronJobs blocks until ctx is done. The cache warmer only runs when
// popularity is tracked in Redis.
func RunCronJobs(ctx context.Context, app *App) {
	if app.redis == nil {
		<-ctx.Done()
		return
	}
	warmer := cron.NewCacheWarmer(app.Popular, app.RateCache, app.Config.WarmInterval, popularSize)
	warmer.Start(ctx)
}
