package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/tribureau/pkg/metrics"
)

type counter interface {
	CountUsers(ctx context.Context) (int64, error)
	CountReadings(ctx context.Context) (int64, error)
	CountResults(ctx context.Context) (int64, error)
}

// gaugeUpdater periodically publishes record counts.
type gaugeUpdater struct {
	stopCh chan struct{}
	once   sync.Once
	done   chan struct{}
}

func startGaugeUpdater(interval time.Duration, c counter) *gaugeUpdater {
	g := &gaugeUpdater{stopCh: make(chan struct{}), done: make(chan struct{})}
	if interval <= 0 {
		close(g.done)
		return g
	}
	go func() {
		defer close(g.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-g.stopCh:
				return
			case <-ticker.C:
				publishCounts(c)
			}
		}
	}()
	return g
}

func (g *gaugeUpdater) stop() {
	g.once.Do(func() { close(g.stopCh) })
	<-g.done
}

func publishCounts(c counter) {
	ctx := context.Background()
	if n, err := c.CountUsers(ctx); err == nil {
		metrics.UpdateTotalUsers(int(n))
		metrics.UpdateStoredRecords("users", n)
	}
	if n, err := c.CountReadings(ctx); err == nil {
		metrics.UpdateStoredRecords("readings", n)
	}
	if n, err := c.CountResults(ctx); err == nil {
		metrics.UpdateStoredRecords("results", n)
	}
}
