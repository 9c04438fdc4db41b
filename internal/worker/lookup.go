package worker

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
)

// LookupFunc fetches the state of a single message.
type LookupFunc[R any] func(ctx context.Context, id models.MessageID) (R, error)

// Result is the outcome of one lookup.
type Result[R any] struct {
	ID      models.MessageID
	Receipt R
	Err     error
}

// Pool runs status lookups with bounded concurrency. The bound is shared by
// every Run call on the same Pool.
type Pool struct {
	semaphore *semaphore.Weighted
	logger    zerolog.Logger
}

// NewPool constructs a Pool allowing at most concurrency lookups in flight.
func NewPool(concurrency int, logger zerolog.Logger) (*Pool, error) {
	if concurrency < 1 {
		return nil, errors.New("worker: concurrency must be >= 1")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &Pool{
		semaphore: semaphore.NewWeighted(int64(concurrency)),
		logger:    logger.With().Str("component", "lookup_pool").Logger(),
	}, nil
}

// Run looks up every id and returns the results in input order. Lookups that
// could not start because ctx ended carry ctx's error.
func Run[R any](ctx context.Context, p *Pool, ids []models.MessageID, lookup LookupFunc[R]) []Result[R] {
	results := make([]Result[R], len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		results[i].ID = id
		if err := p.semaphore.Acquire(ctx, 1); err != nil {
			p.logger.Warn().
				Int64("message_id", int64(id)).
				Err(err).
				Msg("worker: failed to acquire concurrency semaphore")
			for j := i; j < len(ids); j++ {
				results[j] = Result[R]{ID: ids[j], Err: err}
			}
			break
		}

		wg.Add(1)
		go func(i int, id models.MessageID) {
			defer wg.Done()
			defer p.semaphore.Release(1)

			receipt, err := lookup(ctx, id)
			results[i] = Result[R]{ID: id, Receipt: receipt, Err: err}
			if err != nil {
				p.logger.Debug().
					Int64("message_id", int64(id)).
					Str("error_class", common.Classify(err)).
					Msg("worker: lookup failed")
			}
		}(i, id)
	}

	wg.Wait()
	return results
}
