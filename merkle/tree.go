package merkle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vocdoni/shielded-notes/crypto/field"
)

var (
	ErrTreeFull        = errors.New("merkle tree is full")
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)

// Tree is an append only, in memory, fixed depth Poseidon tree. Empty
// leaves are zero. It is used to build witnesses, the canonical accumulator
// lives outside of this module.
type Tree struct {
	depth  int
	zeros  []field.Element   // zeros[i] is the root of an empty subtree of height i
	levels [][]field.Element // levels[0] are the leaves, levels[depth] the root
	lock   sync.RWMutex
}

// NewTree creates an empty tree of the given depth.
func NewTree(depth int) (*Tree, error) {
	if depth < 1 || depth > 64 {
		return nil, fmt.Errorf("invalid tree depth %d", depth)
	}
	zeros := make([]field.Element, depth+1)
	for i := 1; i <= depth; i++ {
		z, err := Hash(zeros[i-1], zeros[i-1])
		if err != nil {
			return nil, err
		}
		zeros[i] = z
	}
	return &Tree{
		depth:  depth,
		zeros:  zeros,
		levels: make([][]field.Element, depth+1),
	}, nil
}

// Depth returns the depth of the tree.
func (t *Tree) Depth() int {
	return t.depth
}

// Size returns the number of leaves added.
func (t *Tree) Size() uint64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return uint64(len(t.levels[0]))
}

// Root returns the current root.
func (t *Tree) Root() field.Element {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.node(t.depth, 0)
}

// Add appends a leaf and returns its index.
func (t *Tree) Add(leaf field.Element) (uint64, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	index := uint64(len(t.levels[0]))
	if t.depth < 64 && index >= uint64(1)<<uint(t.depth) {
		return 0, ErrTreeFull
	}
	t.set(0, index, leaf)
	cur, pos := leaf, index
	for lvl := 0; lvl < t.depth; lvl++ {
		var err error
		if pos%2 == 0 {
			cur, err = Hash(cur, t.node(lvl, pos+1))
		} else {
			cur, err = Hash(t.node(lvl, pos-1), cur)
		}
		if err != nil {
			return 0, err
		}
		pos /= 2
		t.set(lvl+1, pos, cur)
	}
	return index, nil
}

// GenProof returns the membership proof of the leaf at index.
func (t *Tree) GenProof(index uint64) (*Proof, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if index >= uint64(len(t.levels[0])) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	proof := &Proof{
		Leaf:     t.levels[0][index],
		Siblings: make([]field.Element, t.depth),
		PathBits: PathBitsFromIndex(index, t.depth),
	}
	pos := index
	for lvl := 0; lvl < t.depth; lvl++ {
		proof.Siblings[lvl] = t.node(lvl, pos^1)
		pos /= 2
	}
	return proof, nil
}

func (t *Tree) node(lvl int, pos uint64) field.Element {
	if pos < uint64(len(t.levels[lvl])) {
		return t.levels[lvl][pos]
	}
	return t.zeros[lvl]
}

// set stores a node, nodes are always written at the end of their level or
// over an existing one.
func (t *Tree) set(lvl int, pos uint64, v field.Element) {
	if pos < uint64(len(t.levels[lvl])) {
		t.levels[lvl][pos] = v
		return
	}
	t.levels[lvl] = append(t.levels[lvl], v)
}
