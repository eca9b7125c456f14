package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher writes activity lines through a fixed set of workers using
// consistent hashing on the actor id, so one actor's lines keep their order.
// It implements ports.ActivityLogger.
type Dispatcher struct {
	workers []chan domain.Activity
	repo    ports.ActivityRepository
	log     zerolog.Logger
	now     func() time.Time

	dropped atomic.Uint64
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Activity, numWorkers),
		repo:    repo,
		log:     log,
		now:     time.Now,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Activity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// writes the lines already queued on its shard and stops.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogActivity queues a line for the actor's worker. It never blocks: when
// the worker's buffer is full the line is dropped and counted.
func (d *Dispatcher) LogActivity(scope domain.ActivityScope, actorID string, kind domain.ActivityKind, detail string) {
	a := domain.Activity{
		Scope:     scope,
		ActorID:   actorID,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: d.now().UTC(),
	}
	select {
	case d.workers[d.shardIndex(actorID)] <- a:
	default:
		d.dropped.Add(1)
		d.log.Warn().Str("actor_id", actorID).Str("kind", string(kind)).Msg("activity queue full, line dropped")
	}
}

// Dropped returns how many lines were discarded because a shard was full.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Depth returns the number of queued lines across all shards.
func (d *Dispatcher) Depth() int {
	n := 0
	for _, ch := range d.workers {
		n += len(ch)
	}
	return n
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *Dispatcher) shardIndex(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Activity) {
	defer d.wg.Done()
	// Inserts outlive ctx so lines queued before shutdown are still written.
	base := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			d.drain(base, id, ch)
			return
		case a := <-ch:
			d.insert(base, id, a)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.Activity) {
	for {
		select {
		case a := <-ch:
			d.insert(ctx, id, a)
		default:
			return
		}
	}
}

func (d *Dispatcher) insert(ctx context.Context, id int, a domain.Activity) {
	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()
	if err := d.repo.Insert(ctx, &a); err != nil {
		d.log.Error().Err(err).
			Str("actor_id", a.ActorID).
			Str("kind", string(a.Kind)).
			Int("worker_id", id).
			Msg("activity insert failed")
	}
}
