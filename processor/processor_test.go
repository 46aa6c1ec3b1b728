package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/shielded-notes/balance"
	"github.com/vocdoni/shielded-notes/config"
	"github.com/vocdoni/shielded-notes/crypto/field"
	"github.com/vocdoni/shielded-notes/crypto/keys"
	"github.com/vocdoni/shielded-notes/merkle"
	"github.com/vocdoni/shielded-notes/note"
	"github.com/vocdoni/shielded-notes/pipeline"
)

type testLedger struct {
	c         *qt.C
	p         *pipeline.Pipeline
	tree      *merkle.Tree
	owner     keys.KeyPair
	authority keys.KeyPair
	notes     []*pipeline.MintResult
}

// newTestLedger mints n notes of 100 tokens each.
func newTestLedger(c *qt.C, n int) *testLedger {
	params := config.Default()
	params.Workers = 3
	p, err := pipeline.New(params)
	c.Assert(err, qt.IsNil)
	tree, err := merkle.NewTree(params.TreeDepth)
	c.Assert(err, qt.IsNil)
	owner, err := p.Keys().Generate()
	c.Assert(err, qt.IsNil)
	authority, err := p.Keys().Generate()
	c.Assert(err, qt.IsNil)

	l := &testLedger{c: c, p: p, tree: tree, owner: owner, authority: authority}
	for i := 0; i < n; i++ {
		m, err := p.Mint(&pipeline.MintWitness{Amount: field.FromUint64(100), Owner: &owner})
		c.Assert(err, qt.IsNil)
		_, err = tree.Add(m.Commitment)
		c.Assert(err, qt.IsNil)
		l.notes = append(l.notes, m)
	}
	return l
}

// spend returns a witness spending note i for outAmount tokens.
func (l *testLedger) spend(i int, outAmount uint64) *pipeline.TransferWitness {
	proof, err := l.tree.GenProof(uint64(i))
	l.c.Assert(err, qt.IsNil)
	m := l.notes[i]
	nonce, err := field.Random()
	l.c.Assert(err, qt.IsNil)
	return &pipeline.TransferWitness{
		Inputs: []pipeline.TransferInput{{
			Note:     m.Note,
			Owner:    m.Owner,
			Siblings: proof.Siblings,
			PathBits: proof.PathBits,
		}},
		Outputs: []pipeline.TransferOutput{{
			Note:       note.New(l.authority.PublicKey, nonce, m.Note.TokenType(), field.FromUint64(outAmount)),
			Recipient:  l.authority.PublicKey,
			AuditNonce: nonce,
		}},
		MerkleRoot: l.tree.Root(),
		Authority:  l.authority.PublicKey,
	}
}

type mapSpentSet struct {
	mu    sync.Mutex
	spent map[field.Element]bool
	err   error
}

func (s *mapSpentSet) IsSpent(nf field.Element) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spent[nf], s.err
}

func TestVerifyTransfers(t *testing.T) {
	c := qt.New(t)
	l := newTestLedger(c, 4)

	witnesses := []*pipeline.TransferWitness{
		l.spend(0, 100),
		l.spend(1, 200), // unbalanced
		l.spend(2, 100),
		l.spend(0, 100), // conflicts with the first one
		l.spend(3, 100),
	}
	proc := New(l.p)
	results, err := proc.VerifyTransfers(context.Background(), witnesses)
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.HasLen, len(witnesses))
	for i, r := range results {
		c.Assert(r.Index, qt.Equals, i)
	}
	c.Assert(results[0].Err, qt.IsNil)
	c.Assert(results[0].Transfer.Nullifiers[0], qt.DeepEquals, l.notes[0].Nullifier)
	c.Assert(results[1].Err, qt.ErrorIs, balance.ErrUnbalancedAmounts)
	c.Assert(results[1].Transfer, qt.IsNil)
	c.Assert(results[2].Err, qt.IsNil)
	c.Assert(results[3].Err, qt.ErrorIs, ErrConflict)
	c.Assert(results[3].Transfer, qt.IsNil)
	c.Assert(results[4].Err, qt.IsNil)
}

func TestVerifyTransfersSpentSet(t *testing.T) {
	c := qt.New(t)
	l := newTestLedger(c, 2)
	spent := &mapSpentSet{spent: map[field.Element]bool{l.notes[1].Nullifier: true}}

	proc := New(l.p, WithSpentSet(spent), WithWorkers(1))
	results, err := proc.VerifyTransfers(context.Background(),
		[]*pipeline.TransferWitness{l.spend(0, 100), l.spend(1, 100)})
	c.Assert(err, qt.IsNil)
	c.Assert(results[0].Err, qt.IsNil)
	c.Assert(results[1].Err, qt.ErrorIs, ErrSpentNullifier)

	errLedger := errors.New("ledger unavailable")
	spent.err = errLedger
	results, err = proc.VerifyTransfers(context.Background(), []*pipeline.TransferWitness{l.spend(0, 100)})
	c.Assert(err, qt.IsNil)
	c.Assert(results[0].Err, qt.ErrorIs, errLedger)
}

func TestVerifyTransfersCancelled(t *testing.T) {
	c := qt.New(t)
	l := newTestLedger(c, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(l.p).VerifyTransfers(ctx, []*pipeline.TransferWitness{l.spend(0, 100), l.spend(1, 100)})
	c.Assert(err, qt.ErrorIs, context.Canceled)
	c.Assert(results, qt.HasLen, 2)
	for _, r := range results {
		c.Assert(r.Err, qt.ErrorIs, context.Canceled)
	}
}

func TestBackgroundWorkers(t *testing.T) {
	c := qt.New(t)
	l := newTestLedger(c, 3)
	proc := New(l.p)

	_, err := proc.Submit(l.spend(0, 100))
	c.Assert(err, qt.ErrorIs, ErrNotRunning)

	c.Assert(proc.Start(context.Background()), qt.IsNil)
	witnesses := []*pipeline.TransferWitness{l.spend(0, 100), l.spend(1, 100), l.spend(2, 1)}
	go func() {
		for _, w := range witnesses {
			if _, err := proc.Submit(w); err != nil {
				return
			}
		}
	}()

	got := make(map[int]Result)
	timeout := time.After(time.Minute)
	for len(got) < len(witnesses) {
		select {
		case r := <-proc.Results():
			got[r.Index] = r
		case <-timeout:
			c.Fatal("timeout waiting for results")
		}
	}
	c.Assert(got[0].Err, qt.IsNil)
	c.Assert(got[1].Err, qt.IsNil)
	c.Assert(got[2].Err, qt.ErrorIs, balance.ErrUnbalancedAmounts)

	// the session remembers the spent notes
	_, err = proc.Submit(l.spend(1, 100))
	c.Assert(err, qt.IsNil)
	r := <-proc.Results()
	c.Assert(r.Index, qt.Equals, 3)
	c.Assert(r.Err, qt.ErrorIs, ErrConflict)

	c.Assert(proc.Stop(), qt.IsNil)
	_, err = proc.Submit(l.spend(0, 100))
	c.Assert(err, qt.ErrorIs, ErrNotRunning)
	_, ok := <-proc.Results()
	c.Assert(ok, qt.IsFalse)
}

func TestStopDeliversPendingResults(t *testing.T) {
	c := qt.New(t)
	l := newTestLedger(c, 3)
	proc := New(l.p, WithWorkers(1))
	c.Assert(proc.Start(context.Background()), qt.IsNil)

	submitted := make(map[int]bool)
	// nobody reads the results, so the single worker cannot finish them all
	for i := 0; i < 3; i++ {
		index, err := proc.Submit(l.spend(i, 100))
		c.Assert(err, qt.IsNil)
		submitted[index] = true
	}
	results := proc.Results()
	c.Assert(proc.Stop(), qt.IsNil)

	got := make(map[int]Result)
	timeout := time.After(time.Minute)
	for done := false; !done; {
		select {
		case r, ok := <-results:
			if !ok {
				done = true
				break
			}
			c.Assert(got[r.Index], qt.Equals, Result{}, qt.Commentf("duplicated result %d", r.Index))
			got[r.Index] = r
		case <-timeout:
			c.Fatal("timeout waiting for results")
		}
	}
	c.Assert(got, qt.HasLen, len(submitted))
	for index := range submitted {
		r, ok := got[index]
		c.Assert(ok, qt.IsTrue, qt.Commentf("missing result %d", index))
		if r.Err != nil {
			c.Assert(r.Err, qt.ErrorIs, context.Canceled)
		}
	}
}
