package poller

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"riskview/internal/logger"
)

var log = logger.For("poller")

// Run calls fn immediately and then once per interval until ctx is done.
// Calls never overlap; a slow fn delays the next tick.
func Run(ctx context.Context, interval time.Duration, fn func(context.Context) error) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Warnf("poll failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Group runs independent pollers that stop together.
type Group struct {
	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGroup creates a group bound to parent.
func NewGroup(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	g, gctx := errgroup.WithContext(ctx)
	return &Group{g: g, ctx: gctx, cancel: cancel}
}

// Go starts a poller.
func (g *Group) Go(name string, interval time.Duration, fn func(context.Context) error) {
	g.g.Go(func() error {
		log.Debugf("%s poller started (interval=%s)", name, interval)
		Run(g.ctx, interval, fn)
		log.Debugf("%s poller stopped", name)
		return nil
	})
}

// Stop cancels every poller and waits for them to return.
func (g *Group) Stop() error {
	g.cancel()
	return g.g.Wait()
}
