package processor

import (
	"context"
	"sync"

	"github.com/woozymasta/voronoimap/internal/config"

	"github.com/rs/zerolog/log"
)

type job struct {
	Index int
	Area  config.Area
}

// Result is the outcome of one area in a batch.
type Result struct {
	Name    string
	Summary *Summary
	Err     error
	Skipped bool
}

// ProcessAreas runs areas on up to concurrency workers.
// Results keep the order of areas; a failing area does not stop the others.
func (p *Processor) ProcessAreas(ctx context.Context, areas []config.Area, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(areas) {
		concurrency = len(areas)
	}

	jobs := make(chan job, len(areas))
	results := make([]Result, len(areas))

	go func() {
		for i, a := range areas {
			jobs <- job{Index: i, Area: a}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := Result{Name: j.Area.Name}

				if err := ctx.Err(); err != nil {
					res.Err = err
				} else {
					res.Summary, res.Err = p.ProcessArea(ctx, j.Area)
					res.Skipped = res.Err == nil && res.Summary == nil
				}

				if res.Err != nil {
					log.Error().Err(res.Err).Str("area", j.Area.Name).Msg("Failed to process area")
				}
				results[j.Index] = res
			}
		}()
	}
	wg.Wait()

	return results
}
