// Command cacheable serves a demo API backed by cached models and inspects
// cache entries of a shared store.
//
//	cacheable serve --db-driver sqlite --dsn file:demo.db
//	cacheable get posts --config cacheable.yaml
//	cacheable forget posts
//
// get and forget only see entries written by other processes when the
// configured driver is shared, i.e. redis.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
