package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"propmatch/internal/domain"
)

// BatchStats summarises a RecalculateAll run.
type BatchStats struct {
	Anchors  int
	Created  int
	Missing  int
	Failures int
}

// RecalculateAll recalculates every property in ids with at most workers
// recalculations in flight. Missing properties are counted and skipped;
// other failures are joined into the returned error. Created includes
// matches written by recalculations that later failed.
func RecalculateAll(ctx context.Context, recalc func(context.Context, string) (int, error), ids []string, workers int) (BatchStats, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		stats = BatchStats{Anchors: len(ids)}
		errs  []error
	)

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return stats, errors.Join(append(errs, err)...)
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := recalc(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, domain.ErrNotFound):
				stats.Missing++
				log.Warn().Str("property_id", id).Msg("recalc skipped: not found")
			case err != nil:
				// pairs written before the failure still count
				stats.Created += n
				stats.Failures++
				errs = append(errs, err)
				log.Warn().Str("property_id", id).Err(err).Msg("recalc failed")
			default:
				stats.Created += n
				log.Debug().Str("property_id", id).Int("created", n).Msg("recalc ok")
			}
		}(id)
	}

	wg.Wait()
	return stats, errors.Join(errs...)
}
