package processor

import (
	"context"

	"github.com/vocdoni/shielded-notes/log"
	"github.com/vocdoni/shielded-notes/pipeline"
)

// Start launches the background workers. Transfers are sent with Submit and
// their results are delivered on Results, in completion order.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.queue = make(chan job, p.workers)
	p.results = make(chan Result, p.workers)
	p.claims = newClaims()
	p.stranded = nil
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(p.ctx, p.queue, p.results, p.claims)
	}
	log.Infow("transfer processor started", "workers", p.workers)
	return nil
}

// Stop cancels the workers and waits for them to exit. Every transfer
// accepted by Submit still gets a result: the ones verified before Stop carry
// their outcome, the ones still queued fail with context.Canceled. The
// remaining results are delivered in the background and the results channel
// is closed after the last one.
func (p *Processor) Stop() error {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return nil
	}
	p.cancel()
	p.cancel = nil
	queue, results := p.queue, p.results
	p.mu.Unlock()

	// wait for the in flight Submit calls, later ones see the processor
	// stopped
	p.submitMu.Lock()
	p.submitMu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	pending := p.stranded
	p.stranded = nil
	p.mu.Unlock()
drain:
	for {
		select {
		case j := <-queue:
			pending = append(pending, Result{Index: j.index, Err: context.Canceled})
		default:
			break drain
		}
	}

	go func() {
		for _, r := range pending {
			results <- r
		}
		close(results)
	}()
	log.Infow("transfer processor stopped", "pending", len(pending))
	return nil
}

// Submit queues w for verification and returns the index its result will
// carry. It blocks while the queue is full.
func (p *Processor) Submit(w *pipeline.TransferWitness) (int, error) {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return 0, ErrNotRunning
	}
	ctx, queue := p.ctx, p.queue
	index := p.next
	p.next++
	p.mu.Unlock()

	select {
	case queue <- job{index: index, witness: w}:
		return index, nil
	case <-ctx.Done():
		return 0, ErrNotRunning
	}
}

// Results returns the channel where the background results are delivered.
// It is nil before Start.
func (p *Processor) Results() <-chan Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

func (p *Processor) worker(ctx context.Context, queue <-chan job, results chan<- Result, c *claims) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-queue:
			r := p.verify(j.index, j.witness)
			c.resolve(&r)
			select {
			case results <- r:
			case <-ctx.Done():
				p.mu.Lock()
				p.stranded = append(p.stranded, r)
				p.mu.Unlock()
				return
			}
		}
	}
}
