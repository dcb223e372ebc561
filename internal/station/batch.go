package station

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Station pairs a cleaned flow record with its catchment metadata.
type Station struct {
	Series  *Series
	AreaKm2 float64
	Freeze  *FreezePeriod
}

// Batch separates many stations concurrently. One station's failure is
// logged and recorded, never fatal to the rest of the batch.
type Batch struct {
	logger    *zap.SugaredLogger
	separator *Separator
	workers   int
}

// NewBatch creates a Batch running at most workers stations at once.
// workers <= 0 means one worker per station.
func NewBatch(logger *zap.SugaredLogger, sep *Separator, workers int) *Batch {
	return &Batch{logger: logger, separator: sep, workers: workers}
}

// Run processes every station and returns results keyed by station name.
// Stations that fail outright are absent from the map; their errors are in
// the second return value, also keyed by name.
func (b *Batch) Run(ctx context.Context, stations []*Station) (map[string]*Result, map[string]error) {
	results := make(map[string]*Result, len(stations))
	failures := make(map[string]error)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	if b.workers > 0 {
		g.SetLimit(b.workers)
	}
	for _, st := range stations {
		st := st
		g.Go(func() error {
			res, err := b.runOne(ctx, st)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				b.logger.Errorf("station %s failed: %v", st.Series.Name, err)
				failures[st.Series.Name] = err
				return nil
			}
			results[st.Series.Name] = res
			return nil
		})
	}
	g.Wait()
	return results, failures
}

func (b *Batch) runOne(ctx context.Context, st *Station) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ice []bool
	if st.Freeze != nil {
		ice = st.Freeze.Mask(st.Series.Dates)
	}
	return b.separator.Run(ctx, st.Series.Flow, st.AreaKm2, ice)
}
