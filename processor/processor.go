// Package processor verifies transfers concurrently, either as batches or
// as a stream of transfers submitted to background workers. Accepted
// transfers of a batch or a running session never share a nullifier.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/log"
	"github.com/vocdoni/shielded-notes/pipeline"
)

var (
	// ErrSpentNullifier is returned for transfers spending a note whose
	// nullifier is already in the spent set.
	ErrSpentNullifier = errors.New("nullifier already spent")
	// ErrConflict is returned for transfers spending a note already spent by
	// an accepted transfer of the same batch or session.
	ErrConflict = errors.New("nullifier spent by another transfer")
	// ErrNotRunning is returned by Submit when the background workers are
	// not started.
	ErrNotRunning = errors.New("processor not running")
)

// SpentSet reports whether a nullifier has already been published. It is
// owned by the ledger and only read by the processor.
type SpentSet interface {
	IsSpent(nullifier field.Element) (bool, error)
}

// Result is the outcome of a single transfer verification.
type Result struct {
	Index    int
	Transfer *pipeline.TransferResult
	Err      error
	Took     time.Duration
}

// Processor runs the transfer pipeline on a bounded number of goroutines.
type Processor struct {
	pipeline *pipeline.Pipeline
	spent    SpentSet
	workers  int

	// background mode
	mu       sync.Mutex
	submitMu sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	queue    chan job
	results  chan Result
	next     int
	claims   *claims
	// results verified but not delivered when the workers were stopped
	stranded []Result
}

type job struct {
	index   int
	witness *pipeline.TransferWitness
}

// Option configures a Processor.
type Option func(*Processor)

// WithSpentSet makes the processor reject transfers spending a nullifier of
// s.
func WithSpentSet(s SpentSet) Option {
	return func(p *Processor) {
		p.spent = s
	}
}

// WithWorkers overrides the number of workers of the pipeline params.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New returns a processor running pl.
func New(pl *pipeline.Pipeline, opts ...Option) *Processor {
	p := &Processor{
		pipeline: pl,
		workers:  pl.Params().Workers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// VerifyTransfers verifies the witnesses concurrently and returns one result
// per witness, in the same order. A failing witness does not stop the
// others. When ctx is cancelled no new witness is scheduled, the pending ones
// get the context error, which is also returned.
func (p *Processor) VerifyTransfers(ctx context.Context, witnesses []*pipeline.TransferWitness) ([]Result, error) {
	startTime := time.Now()
	results := make([]Result, len(witnesses))
	g := new(errgroup.Group)
	g.SetLimit(p.workers)

	var ctxErr error
	for i, w := range witnesses {
		if ctxErr = ctx.Err(); ctxErr != nil {
			for j := i; j < len(witnesses); j++ {
				results[j] = Result{Index: j, Err: ctxErr}
			}
			break
		}
		g.Go(func() error {
			results[i] = p.verify(i, w)
			return nil
		})
	}
	// verify never returns an error to the group
	_ = g.Wait()

	c := newClaims()
	for i := range results {
		c.resolve(&results[i])
	}
	log.Debugw("transfer batch verified",
		"transfers", len(witnesses),
		"accepted", accepted(results),
		"took", time.Since(startTime).String())
	return results, ctxErr
}

// verify runs the pipeline and checks the nullifiers against the spent set.
func (p *Processor) verify(index int, w *pipeline.TransferWitness) Result {
	startTime := time.Now()
	res, err := p.pipeline.Transfer(w)
	if err == nil && p.spent != nil {
		err = p.checkSpent(res)
	}
	r := Result{Index: index, Took: time.Since(startTime)}
	if err != nil {
		log.Warnw("marking transfer as invalid", "index", index, "error", err.Error())
		r.Err = err
		return r
	}
	r.Transfer = res
	return r
}

func (p *Processor) checkSpent(res *pipeline.TransferResult) error {
	for i, nf := range res.Nullifiers {
		spent, err := p.spent.IsSpent(nf)
		if err != nil {
			return fmt.Errorf("input %d: cannot check nullifier: %w", i, err)
		}
		if spent {
			return fmt.Errorf("input %d: %w", i, ErrSpentNullifier)
		}
	}
	return nil
}

func accepted(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// claims tracks the nullifiers of the accepted transfers.
type claims struct {
	mu     sync.Mutex
	owners map[field.Element]int
}

func newClaims() *claims {
	return &claims{owners: make(map[field.Element]int)}
}

// resolve rejects r if one of its nullifiers is already claimed, otherwise
// it claims all of them for r.
func (c *claims) resolve(r *Result) {
	if r.Err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, nf := range r.Transfer.Nullifiers {
		if owner, ok := c.owners[nf]; ok {
			r.Err = fmt.Errorf("input %d: %w: claimed by transfer %d", i, ErrConflict, owner)
			r.Transfer = nil
			return
		}
	}
	for _, nf := range r.Transfer.Nullifiers {
		c.owners[nf] = r.Index
	}
}
